package handlers

import (
	"fmt"
	"strings"
	"time"

	"trackmystartup/internal/models"
	"trackmystartup/internal/services"

	"github.com/shopspring/decimal"
)

// Date accepts "2006-01-02" or RFC 3339 in request bodies.
type Date struct {
	time.Time
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// StartupRequest is the body of POST and PUT /startups.
type StartupRequest struct {
	Name                    *string   `json:"name"`
	Currency                *string   `json:"currency"`
	RegisteredAt            *Date     `json:"registered_at"`
	Subsidiaries            *[]string `json:"subsidiaries"`
	InternationalOperations *[]string `json:"international_operations"`
}

func (r StartupRequest) input() services.StartupInput {
	return services.StartupInput{
		Name:                    r.Name,
		Currency:                r.Currency,
		RegisteredAt:            r.RegisteredAt.ptr(),
		Subsidiaries:            r.Subsidiaries,
		InternationalOperations: r.InternationalOperations,
	}
}

// StartupListResp is a page of startups.
type StartupListResp struct {
	Items    []models.Startup `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// LedgerRequest is the body of POST /ledger/:startup_id and PUT
// /ledger/record/:id. On PUT only the present fields change.
type LedgerRequest struct {
	RecordType    *string          `json:"record_type"`
	Date          *Date            `json:"date"`
	Entity        *string          `json:"entity"`
	Vertical      *string          `json:"vertical"`
	Description   *string          `json:"description"`
	Amount        *decimal.Decimal `json:"amount"`
	FundingSource *string          `json:"funding_source"`
	Cogs          *decimal.Decimal `json:"cogs"`
	ClearCogs     bool             `json:"clear_cogs"`
	AttachmentURL *string          `json:"attachment_url"`
}

func (r LedgerRequest) input() services.LedgerInput {
	in := services.LedgerInput{
		RecordType:    models.RecordType(strings.ToLower(strings.TrimSpace(deref(r.RecordType)))),
		Date:          r.Date.value(),
		Entity:        deref(r.Entity),
		Vertical:      deref(r.Vertical),
		Description:   deref(r.Description),
		Amount:        decimalOrZero(r.Amount),
		FundingSource: deref(r.FundingSource),
		Cogs:          r.Cogs,
	}
	if link := strings.TrimSpace(deref(r.AttachmentURL)); link != "" {
		in.Attachment = services.WithLink(link)
	}
	return in
}

func (r LedgerRequest) patch() services.LedgerPatch {
	p := services.LedgerPatch{
		Date:          r.Date.ptr(),
		Entity:        r.Entity,
		Vertical:      r.Vertical,
		Description:   r.Description,
		Amount:        r.Amount,
		FundingSource: r.FundingSource,
		Cogs:          r.Cogs,
		ClearCogs:     r.ClearCogs,
	}
	if link := strings.TrimSpace(deref(r.AttachmentURL)); link != "" {
		p.Attachment = services.WithLink(link)
	}
	return p
}

// InvestmentRequest is the body of POST /investments/:startup_id and PUT
// /investments/record/:id.
type InvestmentRequest struct {
	Date               *Date            `json:"date"`
	InvestorType       *string          `json:"investor_type"`
	InvestmentType     *string          `json:"investment_type"`
	InvestorName       *string          `json:"investor_name"`
	InvestorCode       *string          `json:"investor_code"`
	Amount             *decimal.Decimal `json:"amount"`
	EquityAllocated    *decimal.Decimal `json:"equity_allocated"`
	Shares             *decimal.Decimal `json:"shares"`
	PricePerShare      *decimal.Decimal `json:"price_per_share"`
	PreMoneyValuation  *decimal.Decimal `json:"pre_money_valuation"`
	PostMoneyValuation *decimal.Decimal `json:"post_money_valuation"`
	ProofURL           *string          `json:"proof_url"`
}

func (r InvestmentRequest) input() services.InvestmentInput {
	return services.InvestmentInput{
		Date:               r.Date.value(),
		InvestorType:       deref(r.InvestorType),
		InvestmentType:     models.InvestmentType(deref(r.InvestmentType)),
		InvestorName:       deref(r.InvestorName),
		InvestorCode:       deref(r.InvestorCode),
		Amount:             decimalOrZero(r.Amount),
		EquityAllocated:    r.EquityAllocated,
		Shares:             r.Shares,
		PricePerShare:      r.PricePerShare,
		PreMoneyValuation:  r.PreMoneyValuation,
		PostMoneyValuation: r.PostMoneyValuation,
		ProofURL:           deref(r.ProofURL),
	}
}

func (r InvestmentRequest) patch() services.InvestmentPatch {
	p := services.InvestmentPatch{
		Date:               r.Date.ptr(),
		InvestorType:       r.InvestorType,
		InvestorName:       r.InvestorName,
		InvestorCode:       r.InvestorCode,
		Amount:             r.Amount,
		EquityAllocated:    r.EquityAllocated,
		Shares:             r.Shares,
		PricePerShare:      r.PricePerShare,
		PreMoneyValuation:  r.PreMoneyValuation,
		PostMoneyValuation: r.PostMoneyValuation,
		ProofURL:           r.ProofURL,
	}
	if r.InvestmentType != nil {
		t := models.InvestmentType(*r.InvestmentType)
		p.InvestmentType = &t
	}
	return p
}

// FundraisingRequest is the body of PUT /fundraising/:startup_id.
type FundraisingRequest struct {
	ID            string           `json:"id"`
	RoundType     *string          `json:"round_type"`
	TargetValue   *decimal.Decimal `json:"target_value"`
	EquityOffered *decimal.Decimal `json:"equity_offered"`
	Domain        *string          `json:"domain"`
	Stage         *string          `json:"stage"`
	PitchDeckURL  *string          `json:"pitch_deck_url"`
	PitchVideoURL *string          `json:"pitch_video_url"`
	Active        *bool            `json:"active"`
}

func (r FundraisingRequest) input() services.FundraisingInput {
	return services.FundraisingInput{
		ID:            strings.TrimSpace(r.ID),
		RoundType:     r.RoundType,
		TargetValue:   r.TargetValue,
		EquityOffered: r.EquityOffered,
		Domain:        r.Domain,
		Stage:         r.Stage,
		PitchDeckURL:  r.PitchDeckURL,
		PitchVideoURL: r.PitchVideoURL,
		Active:        r.Active,
	}
}

// DriftResp describes a corrected reconciliation drift.
type DriftResp struct {
	Cached       decimal.Decimal `json:"cached"`
	Recalculated decimal.Decimal `json:"recalculated"`
	Drift        decimal.Decimal `json:"drift"`
}

// RecalculateResp is the body returned by the recalculate endpoint.
type RecalculateResp struct {
	StartupID    uint            `json:"startup_id"`
	TotalFunding decimal.Decimal `json:"total_funding"`
	Drift        *DriftResp      `json:"drift"`
}
