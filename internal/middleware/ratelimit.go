package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/campuslink/internal/cache"
	"go.uber.org/zap"
)

// RateLimit limits requests per client IP and route. Limiter failures let
// the request through.
func RateLimit(limiter cache.RateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + c.ClientIP()

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many attempts, please try again later",
			})
			return
		}
		c.Next()
	}
}
