// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tracebit-io/tracebit/logging"
	"github.com/tracebit-io/tracebit/model"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logging.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, model.Fail(message))
}

// MaskKey reduces an API key to its first and last four characters for
// log output.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
