package handlers

import (
	"net/http"

	"trackmystartup/internal/middleware"
	"trackmystartup/internal/models"

	"github.com/gin-gonic/gin"
)

// ListStartups returns a page of startups, ?page=&page_size=. A scoped token
// only sees its own startup.
func (h *Handlers) ListStartups(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)
	if pageSize > 100 {
		pageSize = 100
	}
	if scope, ok := middleware.StartupScope(c); ok {
		st, err := h.Startups.Get(c.Request.Context(), scope)
		if err != nil {
			respondError(c, "ListStartups", err)
			return
		}
		c.JSON(http.StatusOK, StartupListResp{Items: []models.Startup{*st}, Total: 1, Page: 1, PageSize: pageSize})
		return
	}
	items, total, err := h.Startups.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, "ListStartups", err)
		return
	}
	c.JSON(http.StatusOK, StartupListResp{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *Handlers) GetStartup(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	st, err := h.Startups.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "GetStartup", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handlers) CreateStartup(c *gin.Context) {
	if _, scoped := middleware.StartupScope(c); scoped {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token is not valid for creating startups"})
		return
	}
	var req StartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.Startups.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, "CreateStartup", err)
		return
	}
	c.JSON(http.StatusCreated, st)
}

// UpdateStartup changes only the fields present in the body.
func (h *Handlers) UpdateStartup(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	var req StartupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st, err := h.Startups.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, "UpdateStartup", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListEntities returns the entity labels selectable for the startup.
func (h *Handlers) ListEntities(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	entities, err := h.Startups.Entities(c.Request.Context(), id)
	if err != nil {
		respondError(c, "ListEntities", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities})
}

// ListYears returns "all" followed by the selectable years, newest first.
func (h *Handlers) ListYears(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	years, err := h.Startups.Years(c.Request.Context(), id)
	if err != nil {
		respondError(c, "ListYears", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}
