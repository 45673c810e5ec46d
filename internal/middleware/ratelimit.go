package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/venora-platform/booking-engine/internal/httperr"
	"github.com/venora-platform/booking-engine/internal/ratelimit"
)

// RateLimitMiddleware enforces the §5 process-wide inbound limiter, keyed by
// client IP by default.
func RateLimitMiddleware(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			httperr.TooManyRequests(c, "RATE_LIMIT_ERROR", "too many requests, slow down")
			return
		}
		c.Next()
	}
}
