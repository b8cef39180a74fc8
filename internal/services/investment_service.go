package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/store"
	"trackmystartup/pkg/events"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvestmentInput is a new capital-raise event.
type InvestmentInput struct {
	Date               time.Time             `json:"date"`
	InvestorType       string                `json:"investor_type" validate:"required,max=64"`
	InvestmentType     models.InvestmentType `json:"investment_type" validate:"required,max=64"`
	InvestorName       string                `json:"investor_name" validate:"required,max=255"`
	InvestorCode       string                `json:"investor_code" validate:"max=64"`
	Amount             decimal.Decimal       `json:"amount"`
	EquityAllocated    *decimal.Decimal      `json:"equity_allocated"`
	Shares             *decimal.Decimal      `json:"shares"`
	PricePerShare      *decimal.Decimal      `json:"price_per_share"`
	PreMoneyValuation  *decimal.Decimal      `json:"pre_money_valuation"`
	PostMoneyValuation *decimal.Decimal      `json:"post_money_valuation"`
	ProofURL           string                `json:"proof_url" validate:"omitempty,url,max=1024"`
}

// InvestmentPatch changes only the non-nil fields of an investment.
type InvestmentPatch struct {
	Date               *time.Time
	InvestorType       *string
	InvestmentType     *models.InvestmentType
	InvestorName       *string
	InvestorCode       *string
	Amount             *decimal.Decimal
	EquityAllocated    *decimal.Decimal
	Shares             *decimal.Decimal
	PricePerShare      *decimal.Decimal
	PreMoneyValuation  *decimal.Decimal
	PostMoneyValuation *decimal.Decimal
	ProofURL           *string
}

// InvestmentService implements the investment record store operations and
// the total funding reconciliation.
type InvestmentService struct {
	investments *store.InvestmentStore
	startups    *store.StartupStore
	rounds      *store.FundraisingStore
	changes     *ChangeFeed
	now         func() time.Time
}

func NewInvestmentService(db *gorm.DB, changes *ChangeFeed) *InvestmentService {
	return &InvestmentService{
		investments: store.NewInvestmentStore(db),
		startups:    store.NewStartupStore(db),
		rounds:      store.NewFundraisingStore(db),
		changes:     changes,
		now:         time.Now,
	}
}

// AddInvestment validates the investment completely before touching the store.
func (s *InvestmentService) AddInvestment(ctx context.Context, startupID uint, in InvestmentInput) (*models.InvestmentRecord, error) {
	in.InvestorType = strings.TrimSpace(in.InvestorType)
	in.InvestorName = strings.TrimSpace(in.InvestorName)
	in.InvestorCode = strings.TrimSpace(in.InvestorCode)
	in.InvestmentType = models.InvestmentType(strings.TrimSpace(string(in.InvestmentType)))

	fe := fieldErrors{}
	fe.structFields(in)

	inv := &models.InvestmentRecord{
		StartupID:          startupID,
		Date:               calendarDate(in.Date),
		InvestorType:       in.InvestorType,
		InvestmentType:     in.InvestmentType,
		InvestorName:       in.InvestorName,
		InvestorCode:       in.InvestorCode,
		Amount:             in.Amount,
		EquityAllocated:    nullable(in.EquityAllocated),
		Shares:             nullable(in.Shares),
		PricePerShare:      nullable(in.PricePerShare),
		PreMoneyValuation:  nullable(in.PreMoneyValuation),
		PostMoneyValuation: nullable(in.PostMoneyValuation),
		ProofURL:           strings.TrimSpace(in.ProofURL),
	}
	if in.Date.IsZero() {
		fe.add("date", "is required")
	}
	if err := s.checkInvestment(ctx, fe, inv); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.investments.Create(ctx, inv); err != nil {
		return nil, storeError("create investment", "startup", fmt.Sprint(startupID), err)
	}
	s.changes.emit(ctx, startupID, events.KindInvestment, events.ActionCreated, inv.ID)
	return inv, nil
}

// UpdateInvestment applies a partial update and moves the cached total by the
// signed amount difference.
func (s *InvestmentService) UpdateInvestment(ctx context.Context, id string, patch InvestmentPatch) (*models.InvestmentRecord, error) {
	inv, err := s.investments.Get(ctx, id)
	if err != nil {
		return nil, storeError("get investment", "investment", id, err)
	}
	previous := inv.Amount

	fe := fieldErrors{}
	if patch.Date != nil {
		inv.Date = calendarDate(*patch.Date)
	}
	setRequired(fe, "investor_type", patch.InvestorType, &inv.InvestorType)
	setRequired(fe, "investor_name", patch.InvestorName, &inv.InvestorName)
	if patch.InvestmentType != nil {
		v := models.InvestmentType(strings.TrimSpace(string(*patch.InvestmentType)))
		if v == "" {
			fe.add("investment_type", "is required")
		}
		inv.InvestmentType = v
	}
	if patch.InvestorCode != nil {
		inv.InvestorCode = strings.TrimSpace(*patch.InvestorCode)
	}
	if patch.Amount != nil {
		inv.Amount = *patch.Amount
	}
	if patch.EquityAllocated != nil {
		inv.EquityAllocated = decimal.NewNullDecimal(*patch.EquityAllocated)
	}
	// a changed amount re-derives whichever of shares/price was not sent
	if patch.Shares != nil || patch.PricePerShare != nil || patch.Amount != nil {
		switch {
		case patch.Shares != nil && patch.PricePerShare == nil:
			inv.Shares = decimal.NewNullDecimal(*patch.Shares)
			inv.PricePerShare = decimal.NullDecimal{}
		case patch.PricePerShare != nil && patch.Shares == nil:
			inv.PricePerShare = decimal.NewNullDecimal(*patch.PricePerShare)
			inv.Shares = decimal.NullDecimal{}
		case patch.Shares != nil:
			inv.Shares = decimal.NewNullDecimal(*patch.Shares)
			inv.PricePerShare = decimal.NewNullDecimal(*patch.PricePerShare)
		case inv.Shares.Valid:
			inv.PricePerShare = decimal.NullDecimal{}
		}
	}
	if patch.PreMoneyValuation != nil {
		inv.PreMoneyValuation = decimal.NewNullDecimal(*patch.PreMoneyValuation)
	}
	if patch.PostMoneyValuation != nil {
		inv.PostMoneyValuation = decimal.NewNullDecimal(*patch.PostMoneyValuation)
	}
	if patch.ProofURL != nil {
		inv.ProofURL = strings.TrimSpace(*patch.ProofURL)
	}

	if err := s.checkInvestment(ctx, fe, inv); err != nil {
		return nil, err
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.investments.Save(ctx, inv, previous); err != nil {
		return nil, storeError("update investment", "investment", id, err)
	}
	s.changes.emit(ctx, inv.StartupID, events.KindInvestment, events.ActionUpdated, inv.ID)
	return inv, nil
}

// GetInvestment returns one investment.
func (s *InvestmentService) GetInvestment(ctx context.Context, id string) (*models.InvestmentRecord, error) {
	inv, err := s.investments.Get(ctx, id)
	if err != nil {
		return nil, storeError("get investment", "investment", id, err)
	}
	return inv, nil
}

// DeleteInvestment removes the investment and decrements the cached total,
// floored at zero.
func (s *InvestmentService) DeleteInvestment(ctx context.Context, id string) error {
	removed, err := s.investments.Delete(ctx, id)
	if err != nil {
		return storeError("delete investment", "investment", id, err)
	}
	s.changes.emit(ctx, removed.StartupID, events.KindInvestment, events.ActionDeleted, removed.ID)
	return nil
}

// ListInvestments returns the investments of a startup, oldest first.
func (s *InvestmentService) ListInvestments(ctx context.Context, startupID uint) ([]models.InvestmentRecord, error) {
	if _, err := s.startups.Get(ctx, startupID); err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	investments, err := s.investments.List(ctx, startupID)
	if err != nil {
		return nil, &PersistenceError{Op: "list investments", Err: err}
	}
	return investments, nil
}

// TotalFunding applies the reconciliation rule: the investment sum, or the
// cached startup figure when that sum is zero.
func (s *InvestmentService) TotalFunding(ctx context.Context, startupID uint) (decimal.Decimal, error) {
	st, err := s.startups.Get(ctx, startupID)
	if err != nil {
		return decimal.Zero, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	sum, _, err := s.investments.Sum(ctx, startupID)
	if err != nil {
		return decimal.Zero, &PersistenceError{Op: "sum investments", Err: err}
	}
	if sum.IsZero() {
		return st.TotalFunding, nil
	}
	return sum, nil
}

// RecalculateTotalFunding resynchronizes the cache from the investment sum.
// A differing cached value is reported as a *ReconciliationDriftWarning next
// to the new total; the recalculation itself has succeeded in that case.
func (s *InvestmentService) RecalculateTotalFunding(ctx context.Context, startupID uint) (decimal.Decimal, *ReconciliationDriftWarning, error) {
	before, after, err := s.investments.Recalculate(ctx, startupID)
	if err != nil {
		return decimal.Zero, nil, storeError("recalculate total funding", "startup", fmt.Sprint(startupID), err)
	}
	if before.Equal(after) {
		return after, nil, nil
	}

	warning := &ReconciliationDriftWarning{StartupID: startupID, Cached: before, Recalculated: after}
	logrus.WithFields(logrus.Fields{
		"startup_id":   startupID,
		"cached":       before.String(),
		"recalculated": after.String(),
		"drift":        warning.Drift().String(),
	}).Warn("Total funding drift corrected")
	s.changes.emit(ctx, startupID, events.KindInvestment, events.ActionRecalculated, "")
	return after, warning, nil
}

// DetectDrift compares the cached total with the investment sum without
// writing anything. A startup without investment records has only its cached
// figure and never drifts.
func (s *InvestmentService) DetectDrift(ctx context.Context, startupID uint) (*ReconciliationDriftWarning, error) {
	st, err := s.startups.Get(ctx, startupID)
	if err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	sum, count, err := s.investments.Sum(ctx, startupID)
	if err != nil {
		return nil, &PersistenceError{Op: "sum investments", Err: err}
	}
	if count == 0 || sum.Equal(st.TotalFunding) {
		return nil, nil
	}

	warning := &ReconciliationDriftWarning{StartupID: startupID, Cached: st.TotalFunding, Recalculated: sum}
	logrus.WithFields(logrus.Fields{
		"startup_id":   startupID,
		"cached":       st.TotalFunding.String(),
		"recalculated": sum.String(),
		"drift":        warning.Drift().String(),
	}).Warn("Total funding drift detected")
	return warning, nil
}

// CapTableSummary condenses the investments of a startup.
func (s *InvestmentService) CapTableSummary(ctx context.Context, startupID uint) (business.CapTableSummary, error) {
	st, err := s.startups.Get(ctx, startupID)
	if err != nil {
		return business.CapTableSummary{}, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	investments, err := s.investments.List(ctx, startupID)
	if err != nil {
		return business.CapTableSummary{}, &PersistenceError{Op: "list investments", Err: err}
	}
	return business.SummarizeCapTable(investments, st.TotalFunding), nil
}

// checkInvestment validates the merged record and derives shares, price and
// valuations. A non-nil return is a store failure; rule violations go to fe.
func (s *InvestmentService) checkInvestment(ctx context.Context, fe fieldErrors, inv *models.InvestmentRecord) error {
	if !inv.Date.IsZero() && inv.Date.After(calendarDate(s.now())) {
		fe.add("date", "must not be in the future")
	}
	if inv.InvestorType == "" {
		fe.add("investor_type", "is required")
	}
	if inv.InvestmentType == "" {
		fe.add("investment_type", "is required")
	}
	if inv.InvestorName == "" {
		fe.add("investor_name", "is required")
	}
	if !inv.Amount.IsPositive() {
		fe.add("amount", "must be greater than zero")
	}

	if inv.EquityAllocated.Valid {
		eq := inv.EquityAllocated.Decimal
		if eq.IsNegative() || eq.GreaterThan(decimal.NewFromInt(100)) {
			fe.add("equity_allocated", "must be between 0 and 100")
		}
	} else {
		active, err := s.rounds.Active(ctx, inv.StartupID)
		if err != nil {
			return &PersistenceError{Op: "get active fundraising round", Err: err}
		}
		if active != nil {
			fe.add("equity_allocated", "is required while a fundraising round is active")
		}
	}

	if inv.Amount.IsPositive() {
		shares, price, err := business.ResolveShares(inv.Amount, inv.Shares, inv.PricePerShare)
		switch {
		case errors.Is(err, business.ErrSharesNotPositive):
			fe.add("shares", err.Error())
		case errors.Is(err, business.ErrPriceNotPositive):
			fe.add("price_per_share", err.Error())
		default:
			inv.Shares, inv.PricePerShare = shares, price
		}
		if _, bad := fe["equity_allocated"]; !bad {
			inv.PreMoneyValuation, inv.PostMoneyValuation = business.FillValuation(
				inv.Amount, inv.EquityAllocated, inv.PreMoneyValuation, inv.PostMoneyValuation)
		}
	}
	if inv.PreMoneyValuation.Valid && inv.PreMoneyValuation.Decimal.IsNegative() {
		fe.add("pre_money_valuation", "must not be negative")
	}
	if inv.PostMoneyValuation.Valid && inv.PostMoneyValuation.Decimal.IsNegative() {
		fe.add("post_money_valuation", "must not be negative")
	}
	return nil
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func setRequired(fe fieldErrors, field string, value *string, dst *string) {
	if value == nil {
		return
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		fe.add(field, "is required")
		return
	}
	*dst = v
}
