// Package middleware holds the gin middleware shared by every druglike
// route: request IDs, request logging, metrics, CORS and panic recovery.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/druglike/pkg/types/common"
)

// HeaderRequestID is read from the request and echoed on the response.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = string(common.ContextKeyRequestID)

// RequestID assigns every request an ID.  A valid UUID supplied by the
// caller is kept; anything else is replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := common.RequestID(c.GetHeader(HeaderRequestID))
		if id.Validate() != nil {
			id = common.NewRequestID()
		}
		c.Set(requestIDKey, string(id))
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), common.ContextKeyRequestID, string(id)))
		c.Header(HeaderRequestID, string(id))
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestIDFromContext reads the ID from a plain context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(common.ContextKeyRequestID).(string)
	return id
}
