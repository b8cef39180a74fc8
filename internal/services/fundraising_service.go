package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"trackmystartup/internal/models"
	"trackmystartup/internal/store"
	"trackmystartup/pkg/events"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundraisingInput updates a round. Nil fields keep their current value; on
// insert they take the column defaults.
type FundraisingInput struct {
	ID            string
	RoundType     *string
	TargetValue   *decimal.Decimal
	EquityOffered *decimal.Decimal
	Domain        *string
	Stage         *string
	PitchDeckURL  *string
	PitchVideoURL *string
	Active        *bool
}

type FundraisingService struct {
	rounds   *store.FundraisingStore
	startups *store.StartupStore
	changes  *ChangeFeed
}

func NewFundraisingService(db *gorm.DB, changes *ChangeFeed) *FundraisingService {
	return &FundraisingService{
		rounds:   store.NewFundraisingStore(db),
		startups: store.NewStartupStore(db),
		changes:  changes,
	}
}

// Upsert writes to the row chosen by id, then the active round, then the most
// recent round, inserting when the startup has none.
func (s *FundraisingService) Upsert(ctx context.Context, startupID uint, in FundraisingInput) (*models.FundraisingDetails, bool, error) {
	fe := fieldErrors{}
	if in.TargetValue != nil && in.TargetValue.IsNegative() {
		fe.add("target_value", "must not be negative")
	}
	if in.EquityOffered != nil && (in.EquityOffered.IsNegative() || in.EquityOffered.GreaterThan(decimal.NewFromInt(100))) {
		fe.add("equity_offered", "must be between 0 and 100")
	}
	if in.RoundType != nil && strings.TrimSpace(*in.RoundType) == "" {
		fe.add("round_type", "is required")
	}
	if err := fe.err(); err != nil {
		return nil, false, err
	}
	if _, err := s.startups.Get(ctx, startupID); err != nil {
		return nil, false, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}

	round, created, err := s.rounds.Upsert(ctx, startupID, strings.TrimSpace(in.ID), func(f *models.FundraisingDetails) error {
		if in.RoundType != nil {
			f.RoundType = strings.TrimSpace(*in.RoundType)
		}
		if in.TargetValue != nil {
			f.TargetValue = *in.TargetValue
		}
		if in.EquityOffered != nil {
			f.EquityOffered = decimal.NewNullDecimal(*in.EquityOffered)
		}
		if in.Domain != nil {
			f.Domain = strings.TrimSpace(*in.Domain)
		}
		if in.Stage != nil {
			f.Stage = strings.TrimSpace(*in.Stage)
		}
		if in.PitchDeckURL != nil {
			f.PitchDeckURL = strings.TrimSpace(*in.PitchDeckURL)
		}
		if in.PitchVideoURL != nil {
			f.PitchVideoURL = strings.TrimSpace(*in.PitchVideoURL)
		}
		if in.Active != nil {
			f.Active = *in.Active
		}
		if f.RoundType == "" {
			return newValidationError("round_type", "is required")
		}
		return nil
	})
	var ve *ValidationError
	if errors.As(err, &ve) {
		return nil, false, ve
	}
	if err != nil {
		return nil, false, storeError("upsert fundraising details", "fundraising details", in.ID, err)
	}

	action := events.ActionUpdated
	if created {
		action = events.ActionCreated
	}
	s.changes.emit(ctx, startupID, events.KindFundraising, action, round.ID)
	return round, created, nil
}

// List returns the rounds of a startup, most recent first.
func (s *FundraisingService) List(ctx context.Context, startupID uint, activeOnly bool) ([]models.FundraisingDetails, error) {
	if _, err := s.startups.Get(ctx, startupID); err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	rounds, err := s.rounds.List(ctx, startupID, activeOnly)
	if err != nil {
		return nil, &PersistenceError{Op: "list fundraising details", Err: err}
	}
	return rounds, nil
}

// Active returns the active round or a NotFoundError.
func (s *FundraisingService) Active(ctx context.Context, startupID uint) (*models.FundraisingDetails, error) {
	round, err := s.rounds.Active(ctx, startupID)
	if err != nil {
		return nil, &PersistenceError{Op: "get active fundraising round", Err: err}
	}
	if round == nil {
		return nil, &NotFoundError{Resource: "active fundraising round for startup", ID: fmt.Sprint(startupID)}
	}
	return round, nil
}
