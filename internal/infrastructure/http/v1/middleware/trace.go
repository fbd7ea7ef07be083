package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gestock/internal/core/appctx"
)

const HeaderRequestID = "X-Request-ID"

// Trace propagates or generates a request ID and stores it in context so
// every log line of the request carries it.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{RequestID: requestID})
		c.Request = c.Request.WithContext(ctx)

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
