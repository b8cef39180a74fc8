package handlers

import (
	"fmt"
	"net/http"

	"trackmystartup/internal/services"
	"trackmystartup/pkg/config"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetFinancials returns the monthly series, vertical breakdown and summary
// for ?entity=&year=.
func (h *Handlers) GetFinancials(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	report, err := h.Financials.Report(c.Request.Context(), id, f)
	if err != nil {
		respondError(c, "GetFinancials", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportFinancials streams the filtered ledger and report as an xlsx workbook.
func (h *Handlers) ExportFinancials(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	data, err := h.Financials.ExportData(c.Request.Context(), id, f)
	if err != nil {
		respondError(c, "ExportFinancials", err)
		return
	}
	wb, err := services.BuildWorkbook(data)
	if err != nil {
		respondError(c, "ExportFinancials", err)
		return
	}
	defer wb.Close()

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, services.ExportFileName(data)))
	c.Status(http.StatusOK)
	if err := wb.Write(c.Writer); err != nil {
		config.LogError("handlers", "ExportFinancials", "write workbook", id, err)
	}
}
