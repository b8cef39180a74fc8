package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListFundraising returns the rounds of a startup. With ?active=true it
// returns the single active round, or 404 when there is none.
func (h *Handlers) ListFundraising(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	if active, _ := strconv.ParseBool(c.Query("active")); active {
		round, err := h.Fundraising.Active(c.Request.Context(), id)
		if err != nil {
			respondError(c, "ListFundraising", err)
			return
		}
		c.JSON(http.StatusOK, round)
		return
	}
	rounds, err := h.Fundraising.List(c.Request.Context(), id, false)
	if err != nil {
		respondError(c, "ListFundraising", err)
		return
	}
	c.JSON(http.StatusOK, rounds)
}

// UpsertFundraising answers 201 when a round was inserted, 200 otherwise.
func (h *Handlers) UpsertFundraising(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	var req FundraisingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	round, created, err := h.Fundraising.Upsert(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, "UpsertFundraising", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, round)
}
