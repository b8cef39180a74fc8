package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"trackmystartup/internal/middleware"
	"trackmystartup/internal/services"
	"trackmystartup/pkg/config"
	"trackmystartup/pkg/notify"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handlers serves the HTTP api on top of the services.
type Handlers struct {
	Startups    *services.StartupService
	Ledger      *services.LedgerService
	Investments *services.InvestmentService
	Fundraising *services.FundraisingService
	Financials  *services.FinancialsService
	Hub         *notify.Hub
	Upgrader    *websocket.Upgrader
}

// respondError maps service errors onto status codes:
// validation 400, not found 404, attachment 422, everything else 500.
func respondError(c *gin.Context, funcName string, err error) {
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		ae *services.AttachmentUploadError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "fields": ve.Fields})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": nf.Error()})
	case errors.As(err, &ae):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ae.Error(), "fields": gin.H{"attachment": ae.Reason}})
	default:
		config.LogError("handlers", funcName, "request failed", c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "fields": gin.H{field: msg}})
}

func parseStartupID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("startup_id"), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "startup_id", "Invalid startup_id format")
		return 0, false
	}
	if !allowStartup(c, uint(id)) {
		return 0, false
	}
	return uint(id), true
}

// allowStartup answers 403 when a startup-scoped token is used on another
// startup.
func allowStartup(c *gin.Context, startupID uint) bool {
	if scope, ok := middleware.StartupScope(c); ok && scope != startupID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token is not valid for this startup"})
		return false
	}
	return true
}

// allowRecord checks the owning startup of a record addressed by :id. The
// lookup only happens for scoped tokens.
func allowRecord(c *gin.Context, funcName string, owner func() (uint, error)) bool {
	if _, scoped := middleware.StartupScope(c); !scoped {
		return true
	}
	startupID, err := owner()
	if err != nil {
		respondError(c, funcName, err)
		return false
	}
	return allowStartup(c, startupID)
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
