package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListVerticals returns the suggested verticals, for one ?type= or both.
func (h *Handlers) ListVerticals(c *gin.Context) {
	switch t := models.RecordType(strings.ToLower(c.Query("type"))); {
	case t == "":
		c.JSON(http.StatusOK, gin.H{
			string(models.RecordTypeExpense): models.SuggestedVerticals(models.RecordTypeExpense),
			string(models.RecordTypeRevenue): models.SuggestedVerticals(models.RecordTypeRevenue),
		})
	case t.Valid():
		c.JSON(http.StatusOK, models.SuggestedVerticals(t))
	default:
		badRequest(c, "type", "type must be expense or revenue")
	}
}

func parseFilter(c *gin.Context) (business.Filter, bool) {
	f, err := business.ParseFilter(c.Query("entity"), c.Query("year"))
	if err != nil {
		badRequest(c, "year", err.Error())
		return business.Filter{}, false
	}
	return f, true
}

// ListLedgerRecords returns the filtered records, ?entity=&year=&type=.
func (h *Handlers) ListLedgerRecords(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	f, ok := parseFilter(c)
	if !ok {
		return
	}

	var (
		records []models.LedgerRecord
		err     error
	)
	ctx := c.Request.Context()
	switch models.RecordType(strings.ToLower(c.Query("type"))) {
	case "":
		records, err = h.Ledger.ListRecords(ctx, id, f)
	case models.RecordTypeExpense:
		records, err = h.Ledger.ListExpenses(ctx, id, f)
	case models.RecordTypeRevenue:
		records, err = h.Ledger.ListRevenues(ctx, id, f)
	default:
		badRequest(c, "type", "type must be expense or revenue")
		return
	}
	if err != nil {
		respondError(c, "ListLedgerRecords", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateLedgerRecord accepts a json body or a multipart form whose "file"
// part is uploaded as the attachment.
func (h *Handlers) CreateLedgerRecord(c *gin.Context) {
	id, ok := parseStartupID(c)
	if !ok {
		return
	}
	req, file, closer, ok := bindLedgerRequest(c)
	if !ok {
		return
	}
	defer closer()

	in := req.input()
	if file != nil {
		in.Attachment = file
	}
	record, err := h.Ledger.AddRecord(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, "CreateLedgerRecord", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// UpdateLedgerRecord applies a partial update.
func (h *Handlers) UpdateLedgerRecord(c *gin.Context) {
	if !allowRecord(c, "UpdateLedgerRecord", h.ledgerOwner(c)) {
		return
	}
	req, file, closer, ok := bindLedgerRequest(c)
	if !ok {
		return
	}
	defer closer()

	patch := req.patch()
	if file != nil {
		patch.Attachment = file
	}
	record, err := h.Ledger.UpdateRecord(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, "UpdateLedgerRecord", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handlers) DeleteLedgerRecord(c *gin.Context) {
	if !allowRecord(c, "DeleteLedgerRecord", h.ledgerOwner(c)) {
		return
	}
	if err := h.Ledger.DeleteRecord(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, "DeleteLedgerRecord", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted successfully"})
}

func (h *Handlers) ledgerOwner(c *gin.Context) func() (uint, error) {
	return func() (uint, error) {
		record, err := h.Ledger.GetRecord(c.Request.Context(), c.Param("id"))
		if err != nil {
			return 0, err
		}
		return record.StartupID, nil
	}
}

func noop() {}

// bindLedgerRequest reads the body as json or multipart. The returned closer
// releases the uploaded file and must run after the service call.
func bindLedgerRequest(c *gin.Context) (LedgerRequest, *services.Attachment, func(), bool) {
	var req LedgerRequest
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return req, nil, noop, false
		}
		return req, nil, noop, true
	}

	if err := formLedgerRequest(c, &req); err != nil {
		badRequest(c, err.field, err.msg)
		return req, nil, noop, false
	}

	fh, err := c.FormFile("file")
	if err == http.ErrMissingFile {
		return req, nil, noop, true
	}
	if err != nil {
		badRequest(c, "file", err.Error())
		return req, nil, noop, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, "file", err.Error())
		return req, nil, noop, false
	}
	attachment := services.WithFile(fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	return req, attachment, func() { _ = f.Close() }, true
}

type formError struct {
	field string
	msg   string
}

func formLedgerRequest(c *gin.Context, req *LedgerRequest) *formError {
	str := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	num := func(key string) (*decimal.Decimal, *formError) {
		v, ok := c.GetPostForm(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, &formError{field: key, msg: fmt.Sprintf("%s must be a number", key)}
		}
		return &d, nil
	}

	req.RecordType = str("record_type")
	req.Entity = str("entity")
	req.Vertical = str("vertical")
	req.Description = str("description")
	req.FundingSource = str("funding_source")
	req.AttachmentURL = str("attachment_url")

	if v, ok := c.GetPostForm("date"); ok && strings.TrimSpace(v) != "" {
		t, err := parseDate(v)
		if err != nil {
			return &formError{field: "date", msg: err.Error()}
		}
		req.Date = &Date{Time: t}
	}
	var fe *formError
	if req.Amount, fe = num("amount"); fe != nil {
		return fe
	}
	if req.Cogs, fe = num("cogs"); fe != nil {
		return fe
	}
	if v, ok := c.GetPostForm("clear_cogs"); ok {
		req.ClearCogs, _ = strconv.ParseBool(v)
	}
	return nil
}
