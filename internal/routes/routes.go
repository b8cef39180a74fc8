package routes

import (
	"trackmystartup/internal/handlers"
	"trackmystartup/internal/middleware"
	"trackmystartup/pkg/config"

	"github.com/gin-gonic/gin"
)

// SetupRouter initializes and returns the Gin router with all routes configured
func SetupRouter(s *config.Settings, h *handlers.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Add health check endpoint
	r.Any("/health", func(c *gin.Context) {
		c.String(200, "ok")
	})

	r.Use(corsMiddleware(s.AllowedOrigins))
	r.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: s.RateLimitRPS,
		Burst:             s.RateLimitBurst,
	}))
	r.Use(middleware.AuthMiddleware(s.JWTSecret))

	// Setup routes for each module
	SetupStartupRoutes(r, h)
	SetupLedgerRecordRoutes(r, h)
	SetupInvestmentRecordRoutes(r, h)
	SetupFundraisingRoutes(r, h)
	SetupFinancialsRoutes(r, h)

	return r
}

// corsMiddleware echoes the origin back when it is in the allowed list.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin {
				allowed = true
				break
			}
		}
		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		// Handle preflight requests
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
