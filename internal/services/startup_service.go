package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/store"
	"trackmystartup/pkg/events"
	"trackmystartup/pkg/money"

	"gorm.io/gorm"
)

// StartupInput creates a startup or, with nil fields left untouched, updates one.
type StartupInput struct {
	Name                    *string
	Currency                *string
	RegisteredAt            *time.Time
	Subsidiaries            *[]string
	InternationalOperations *[]string
}

type StartupService struct {
	startups *store.StartupStore
	ledger   *store.LedgerStore
	changes  *ChangeFeed
	now      func() time.Time
}

func NewStartupService(db *gorm.DB, changes *ChangeFeed) *StartupService {
	return &StartupService{
		startups: store.NewStartupStore(db),
		ledger:   store.NewLedgerStore(db),
		changes:  changes,
		now:      time.Now,
	}
}

func (s *StartupService) Create(ctx context.Context, in StartupInput) (*models.Startup, error) {
	st := &models.Startup{Currency: "USD"}
	if err := applyStartup(st, in, true); err != nil {
		return nil, err
	}
	if err := s.startups.Create(ctx, st); err != nil {
		return nil, &PersistenceError{Op: "create startup", Err: err}
	}
	return st, nil
}

func (s *StartupService) Update(ctx context.Context, id uint, in StartupInput) (*models.Startup, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyStartup(st, in, false); err != nil {
		return nil, err
	}
	if err := s.startups.Save(ctx, st); err != nil {
		return nil, &PersistenceError{Op: "update startup", Err: err}
	}
	s.changes.emit(ctx, st.ID, events.KindStartup, events.ActionUpdated, fmt.Sprint(st.ID))
	return st, nil
}

func (s *StartupService) Get(ctx context.Context, id uint) (*models.Startup, error) {
	st, err := s.startups.Get(ctx, id)
	if err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(id), err)
	}
	return st, nil
}

func (s *StartupService) List(ctx context.Context, page, pageSize int) ([]models.Startup, int64, error) {
	startups, total, err := s.startups.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "list startups", Err: err}
	}
	return startups, total, nil
}

// IDs returns every startup id in ascending order.
func (s *StartupService) IDs(ctx context.Context) ([]uint, error) {
	ids, err := s.startups.IDs(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list startup ids", Err: err}
	}
	return ids, nil
}

// Entities lists the entity labels a ledger record may carry: the parent
// company, each subsidiary and international operation, then values already
// in the ledger. Duplicates are dropped case-insensitively, first one wins.
func (s *StartupService) Entities(ctx context.Context, id uint) ([]string, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	legacy, err := s.ledger.Entities(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "list ledger entities", Err: err}
	}

	seen := make(map[string]struct{})
	out := []string{}
	add := func(values ...string) {
		for _, v := range values {
			v = strings.TrimSpace(v)
			key := strings.ToLower(v)
			if v == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	add(models.ParentEntity)
	add(st.Subsidiaries...)
	add(st.InternationalOperations...)
	add(legacy...)
	return out, nil
}

// Years lists the selectable years, newest first, with "all" prepended.
func (s *StartupService) Years(ctx context.Context, id uint) ([]string, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var earliest *time.Time
	if st.RegisteredAt == nil {
		earliest, err = s.ledger.EarliestDate(ctx, id)
		if err != nil {
			return nil, &PersistenceError{Op: "earliest ledger date", Err: err}
		}
	}
	years := business.AvailableYears(st.RegisteredAt, earliest, s.now())
	out := make([]string, 0, len(years)+1)
	out = append(out, business.AllValue)
	for _, y := range years {
		out = append(out, fmt.Sprint(y))
	}
	return out, nil
}

func applyStartup(st *models.Startup, in StartupInput, creating bool) error {
	fe := fieldErrors{}
	if in.Name != nil {
		st.Name = strings.TrimSpace(*in.Name)
	}
	if st.Name == "" && (creating || in.Name != nil) {
		fe.add("name", "is required")
	}
	if in.Currency != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.Currency))
		if !money.IsKnownCurrency(code) {
			fe.add("currency", "must be an ISO 4217 currency code")
		}
		st.Currency = code
	}
	if in.RegisteredAt != nil {
		d := calendarDate(*in.RegisteredAt)
		st.RegisteredAt = &d
	}
	if in.Subsidiaries != nil {
		st.Subsidiaries = cleanLabels(*in.Subsidiaries)
	}
	if in.InternationalOperations != nil {
		st.InternationalOperations = cleanLabels(*in.InternationalOperations)
	}
	return fe.err()
}

func cleanLabels(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
