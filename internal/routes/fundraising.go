package routes

import (
	"trackmystartup/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupFundraisingRoutes sets up all routes related to fundraising rounds
func SetupFundraisingRoutes(r *gin.Engine, h *handlers.Handlers) {
	fundraising := r.Group("/fundraising")
	{
		fundraising.GET("/:startup_id", h.ListFundraising)
		fundraising.PUT("/:startup_id", h.UpsertFundraising)
	}
}
