package utils

import (
	"net/http"

	"strokesegapi/pkg/apperrors"
	"strokesegapi/pkg/logger"

	"github.com/gin-gonic/gin"
)

// JSONResponse sends a JSON response with the specified HTTP status code.
func JSONResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// ErrorResponse logs and sends a standardized error response, mapping the
// error classification to an HTTP status code.
func ErrorResponse(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.Invalid:
		status = http.StatusBadRequest
	case apperrors.NotFound:
		status = http.StatusNotFound
	case apperrors.Conflict:
		status = http.StatusConflict
	case apperrors.Unavailable:
		status = http.StatusServiceUnavailable
	}

	if status >= 500 {
		logger.Errorf("API Error: %v", err)
	} else {
		logger.Warnf("API Error: %v", err)
	}
	c.JSON(status, gin.H{
		"error": apperrors.MessageOf(err),
	})
}

// BindingErrorResponse sends a 400 for malformed or invalid request bodies.
func BindingErrorResponse(c *gin.Context, err error) {
	logger.Warnf("Request binding error: %v", err)
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
	})
}
