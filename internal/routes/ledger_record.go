package routes

import (
	"trackmystartup/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupLedgerRecordRoutes sets up all routes related to revenue and expense records
func SetupLedgerRecordRoutes(r *gin.Engine, h *handlers.Handlers) {
	ledger := r.Group("/ledger")
	{
		ledger.GET("/verticals", h.ListVerticals)
		ledger.GET("/:startup_id", h.ListLedgerRecords)
		ledger.POST("/:startup_id", h.CreateLedgerRecord)
		ledger.PUT("/record/:id", h.UpdateLedgerRecord)
		ledger.DELETE("/record/:id", h.DeleteLedgerRecord)
	}
}
