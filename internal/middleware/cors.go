package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/temcen/movierec/internal/config"
)

func CORS(cfg *config.Config) gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins:  cfg.Security.CORS.AllowedOrigins,
		AllowMethods:  cfg.Security.CORS.AllowedMethods,
		AllowHeaders:  cfg.Security.CORS.AllowedHeaders,
		ExposeHeaders: []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", RequestIDHeader},
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowAllOrigins = true
	}
	for _, origin := range config.AllowOrigins {
		if origin == "*" {
			config.AllowOrigins = nil
			config.AllowAllOrigins = true
			break
		}
	}

	return cors.New(config)
}

// Security sets the standard hardening headers on every response.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
