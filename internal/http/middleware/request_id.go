// README: Request ID middleware; tags each request and its log lines.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxKeyRequestID = "request_id"
)

type requestIDKey struct{}

// RequestID reuses the caller's X-Request-ID or generates one, and stores it
// on both the gin context and the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), requestIDKey{}, id))
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the request ID stored by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(ctxKeyRequestID)
}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
