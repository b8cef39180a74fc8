package routes

import (
	"trackmystartup/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupInvestmentRecordRoutes sets up all routes related to the cap table
func SetupInvestmentRecordRoutes(r *gin.Engine, h *handlers.Handlers) {
	investments := r.Group("/investments")
	{
		investments.GET("/:startup_id", h.ListInvestments)
		investments.POST("/:startup_id", h.CreateInvestment)
		investments.POST("/:startup_id/recalculate", h.RecalculateTotalFunding)
		investments.GET("/:startup_id/summary", h.CapTableSummary)
		investments.PUT("/record/:id", h.UpdateInvestment)
		investments.DELETE("/record/:id", h.DeleteInvestment)
	}
}
