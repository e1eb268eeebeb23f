package helper_util

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

var ErrInvalidPagination = errors.New("invalid pagination parameters")

func GetPageParams(c *gin.Context) (page int, size int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		return 0, 0, ErrInvalidPagination
	}
	size, err = strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size < 1 || size > 100 {
		return 0, 0, ErrInvalidPagination
	}
	return page, size, nil
}

// GetTimeParam parses an optional RFC3339 query parameter.
func GetTimeParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
