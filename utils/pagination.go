package utils

import (
	"strconv"

	"strokesegapi/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ParsePagination reads the limit and offset query parameters. Absent
// parameters fall back to the given defaults; malformed values are rejected.
// Range validation (negative values) belongs to the service layer.
func ParsePagination(c *gin.Context, defaultLimit int) (int, int, error) {
	limit := defaultLimit
	offset := 0

	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.New(apperrors.Invalid, "limit must be an integer")
		}
		limit = parsed
	}
	if raw := c.Query("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, apperrors.New(apperrors.Invalid, "offset must be an integer")
		}
		offset = parsed
	}
	return limit, offset, nil
}
