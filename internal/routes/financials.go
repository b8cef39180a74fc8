package routes

import (
	"trackmystartup/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupFinancialsRoutes sets up the aggregated report, export and live view routes
func SetupFinancialsRoutes(r *gin.Engine, h *handlers.Handlers) {
	financials := r.Group("/financials")
	{
		financials.GET("/:startup_id", h.GetFinancials)
		financials.GET("/:startup_id/export", h.ExportFinancials)
	}
	r.GET("/ws/financials/:startup_id", h.FinancialsSocket)
}
