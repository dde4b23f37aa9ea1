package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/PortalOS/backend/internal/shared/id"
)

// RequestIDHeader carries the request identifier on responses.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a ULID-based identifier to each request.
// Incoming identifiers from trusted proxies are preserved.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = id.NewRequestID().String()
		}
		c.Set("request_id", rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}
