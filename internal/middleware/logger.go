package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medicare/pharmacy-api/pkg/logger"
)

// RequestLogger emits one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(RequestIDKey),
		}
		if caller := GetCaller(c); caller != nil {
			fields["user_id"] = caller.ID.String()
		}

		entry := log.WithFields(fields)
		if len(c.Errors) > 0 {
			entry.Error(c.Errors.Last().Err, "request failed")
		} else {
			entry.Info("request completed")
		}
	}
}
