package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/movierec/pkg/models"
)

// RateLimiter decides whether a client may make another request.
type RateLimiter interface {
	IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error)
}

// RateLimit limits requests per client IP.
func RateLimit(limiter RateLimiter, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		allowed, info, err := limiter.IsAllowed(c.Request.Context(), clientIP)
		if err != nil {
			logger.WithError(err).Error("Failed to check rate limit")
			// Continue on error to avoid blocking requests when Redis is down
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime, 10))

		if !allowed {
			logger.WithFields(logrus.Fields{
				"client_ip": clientIP,
				"limit":     info.Limit,
			}).Warn("Rate limit exceeded")

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "RATE_LIMIT_EXCEEDED",
					"message": "Rate limit exceeded. Please try again later.",
				},
				"rate_limit": info,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
