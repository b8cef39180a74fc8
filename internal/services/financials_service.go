package services

import (
	"context"
	"fmt"
	"strings"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/store"
	"trackmystartup/pkg/config"

	"gorm.io/gorm"
)

// FinancialsService runs the aggregation engine over stored records.
type FinancialsService struct {
	ledger      *store.LedgerStore
	startups    *store.StartupStore
	investments *InvestmentService
	cache       ReportCache
}

func NewFinancialsService(db *gorm.DB, investments *InvestmentService, cache ReportCache) *FinancialsService {
	return &FinancialsService{
		ledger:      store.NewLedgerStore(db),
		startups:    store.NewStartupStore(db),
		investments: investments,
		cache:       cache,
	}
}

// reportKey folds the entity to lower case; entity filters match
// case-insensitively.
func reportKey(version int64, f business.Filter) string {
	entity := business.AllValue
	if !f.AllEntities() {
		entity = strings.ToLower(f.Entity)
	}
	return fmt.Sprintf("report:v%d:%s:%s", version, entity, f.Year.String())
}

// Report aggregates the ledger under f. With year "all" the engine sees every
// record of the startup; nothing computed for a single year is reused.
func (s *FinancialsService) Report(ctx context.Context, startupID uint, f business.Filter) (business.Report, error) {
	// the version is read before the records so that a mutation landing in
	// between leaves the result under a key nobody reads
	key := ""
	if s.cache != nil {
		version, err := s.cache.Version(ctx, startupID)
		if err != nil {
			config.LogError("services", "Report", "read cache version", startupID, err)
		} else {
			key = reportKey(version, f)
		}
	}
	if key != "" {
		var cached business.Report
		hit, err := s.cache.GetJSON(ctx, startupID, key, &cached)
		if err != nil {
			config.LogError("services", "Report", "read report cache", key, err)
		} else if hit {
			cached.Filter = f
			return cached, nil
		}
	}

	records, err := s.ledger.List(ctx, startupID, "", f)
	if err != nil {
		return business.Report{}, &PersistenceError{Op: "list ledger records", Err: err}
	}
	funding, err := s.investments.TotalFunding(ctx, startupID)
	if err != nil {
		return business.Report{}, err
	}
	report := business.BuildReport(records, f, funding)

	if key != "" {
		if err := s.cache.SetJSON(ctx, startupID, key, report); err != nil {
			config.LogError("services", "Report", "write report cache", key, err)
		}
	}
	return report, nil
}

// ExportData is everything the spreadsheet export renders.
type ExportData struct {
	Startup models.Startup
	Records []models.LedgerRecord
	Report  business.Report
}

// ExportData gathers the records and report of one filter selection.
func (s *FinancialsService) ExportData(ctx context.Context, startupID uint, f business.Filter) (*ExportData, error) {
	st, err := s.startups.Get(ctx, startupID)
	if err != nil {
		return nil, storeError("get startup", "startup", fmt.Sprint(startupID), err)
	}
	records, err := s.ledger.List(ctx, startupID, "", f)
	if err != nil {
		return nil, &PersistenceError{Op: "list ledger records", Err: err}
	}
	funding, err := s.investments.TotalFunding(ctx, startupID)
	if err != nil {
		return nil, err
	}
	return &ExportData{
		Startup: *st,
		Records: records,
		Report:  business.BuildReport(records, f, funding),
	}, nil
}
