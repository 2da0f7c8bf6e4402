package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"strokesegapi/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

// TestErrorResponse_KindMapping tests classification-to-status mapping.
func TestErrorResponse_KindMapping(t *testing.T) {
	cases := []struct {
		kind apperrors.Kind
		want int
	}{
		{apperrors.Invalid, http.StatusBadRequest},
		{apperrors.NotFound, http.StatusNotFound},
		{apperrors.Conflict, http.StatusConflict},
		{apperrors.Unavailable, http.StatusServiceUnavailable},
		{apperrors.Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		c, rec := testContext()
		ErrorResponse(c, apperrors.New(tc.kind, "boom"))
		assert.Equal(t, tc.want, rec.Code, "kind %s", tc.kind)
		assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	}
}

// TestErrorResponse_PlainError tests that unclassified errors map to 500.
func TestErrorResponse_PlainError(t *testing.T) {
	c, rec := testContext()
	ErrorResponse(c, assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// TestJSONResponse tests plain payload passthrough.
func TestJSONResponse(t *testing.T) {
	c, rec := testContext()
	JSONResponse(c, http.StatusAccepted, gin.H{"message": "Training started."})
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"message":"Training started."}`, rec.Body.String())
}
