package routes

import (
	"trackmystartup/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupStartupRoutes sets up all routes related to startup profiles
func SetupStartupRoutes(r *gin.Engine, h *handlers.Handlers) {
	startups := r.Group("/startups")
	{
		startups.GET("", h.ListStartups)
		startups.POST("", h.CreateStartup)
		startups.GET("/:startup_id", h.GetStartup)
		startups.PUT("/:startup_id", h.UpdateStartup)
		startups.GET("/:startup_id/entities", h.ListEntities)
		startups.GET("/:startup_id/years", h.ListYears)
	}
}
