package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDKey is the gin context key for the request id.
	RequestIDKey = "request_id"
	// RequestIDHeader is echoed back to the client.
	RequestIDHeader = "X-Request-ID"
)

// RequestID assigns each request a unique id, honoring one supplied by the
// client for cross-system correlation.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
