package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListInvestments returns the cap table of a startup, oldest first.
func (h *Handlers) ListInvestments(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	investments, err := h.Investments.ListInvestments(c.Request.Context(), id)
	if err != nil {
		respondError(c, "ListInvestments", err)
		return
	}
	c.JSON(http.StatusOK, investments)
}

func (h *Handlers) CreateInvestment(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	var req InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Investments.AddInvestment(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, "CreateInvestment", err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// UpdateInvestment applies a partial update and adjusts the cached total.
func (h *Handlers) UpdateInvestment(c *gin.Context) {
	if !allowRecord(c, "UpdateInvestment", h.investmentOwner(c)) {
		return
	}
	var req InvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inv, err := h.Investments.UpdateInvestment(c.Request.Context(), c.Param("id"), req.patch())
	if err != nil {
		respondError(c, "UpdateInvestment", err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *Handlers) DeleteInvestment(c *gin.Context) {
	if !allowRecord(c, "DeleteInvestment", h.investmentOwner(c)) {
		return
	}
	if err := h.Investments.DeleteInvestment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteInvestment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Investment deleted successfully"})
}

// RecalculateTotalFunding rebuilds the cached total from the investments and
// reports any drift it corrected.
func (h *Handlers) RecalculateTotalFunding(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	total, warning, err := h.Investments.RecalculateTotalFunding(c.Request.Context(), id)
	if err != nil {
		respondError(c, "RecalculateTotalFunding", err)
		return
	}
	resp := RecalculateResp{StartupID: id, TotalFunding: total}
	if warning != nil {
		resp.Drift = &DriftResp{Cached: warning.Cached, Recalculated: warning.Recalculated, Drift: warning.Drift()}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) CapTableSummary(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	summary, err := h.Investments.CapTableSummary(c.Request.Context(), id)
	if err != nil {
		respondError(c, "CapTableSummary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handlers) investmentOwner(c *gin.Context) func() (uint, error) {
	return func() (uint, error) {
		inv, err := h.Investments.GetInvestment(c.Request.Context(), c.Param("id"))
		if err != nil {
			return 0, err
		}
		return inv.StartupID, nil
	}
}
