// Package store holds the gorm backed persistence of startups, ledger
// records, investment records and fundraising rounds.
package store

import (
	"context"
	"strings"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"

	"gorm.io/gorm"
)

// LedgerStore persists revenue and expense records.
type LedgerStore struct {
	db *gorm.DB
}

func NewLedgerStore(db *gorm.DB) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Create(ctx context.Context, r *models.LedgerRecord) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// Get returns gorm.ErrRecordNotFound when no record has the id.
func (s *LedgerStore) Get(ctx context.Context, id string) (*models.LedgerRecord, error) {
	var r models.LedgerRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// Save writes every column of an existing record.
func (s *LedgerStore) Save(ctx context.Context, r *models.LedgerRecord) error {
	return s.db.WithContext(ctx).Save(r).Error
}

// Delete removes the record and returns what was removed.
func (s *LedgerStore) Delete(ctx context.Context, id string) (*models.LedgerRecord, error) {
	var removed *models.LedgerRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.LedgerRecord
		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			return err
		}
		if err := tx.Delete(&r).Error; err != nil {
			return err
		}
		removed = &r
		return nil
	})
	return removed, err
}

// List returns the records of a startup matching the filter, newest first.
// Entities compare case-insensitively.
func (s *LedgerStore) List(ctx context.Context, startupID uint, recordType models.RecordType, f business.Filter) ([]models.LedgerRecord, error) {
	q := s.db.WithContext(ctx).Where("startup_id = ?", startupID)
	if recordType != "" {
		q = q.Where("record_type = ?", recordType)
	}
	if !f.AllEntities() {
		q = q.Where("LOWER(entity) = ?", strings.ToLower(strings.TrimSpace(f.Entity)))
	}
	if start, end, ok := f.YearRange(); ok {
		q = q.Where("date >= ? AND date < ?", start, end)
	}

	records := []models.LedgerRecord{}
	if err := q.Order("date DESC").Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Date = records[i].Date.UTC()
	}
	return records, nil
}

// Entities returns the distinct entity labels already used by a startup's records.
func (s *LedgerStore) Entities(ctx context.Context, startupID uint) ([]string, error) {
	var entities []string
	err := s.db.WithContext(ctx).Model(&models.LedgerRecord{}).
		Where("startup_id = ?", startupID).
		Distinct("entity").
		Order("entity").
		Pluck("entity", &entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// EarliestDate returns the date of the oldest record, or nil without records.
func (s *LedgerStore) EarliestDate(ctx context.Context, startupID uint) (*time.Time, error) {
	var r models.LedgerRecord
	err := s.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("date ASC").
		Limit(1).
		Find(&r).Error
	if err != nil {
		return nil, err
	}
	if r.ID == "" {
		return nil, nil
	}
	d := r.Date.UTC()
	return &d, nil
}

// HasInvestor reports whether the startup has an investment from name,
// compared case-insensitively. Expense funding sources are checked against it.
func (s *LedgerStore) HasInvestor(ctx context.Context, startupID uint, name string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.InvestmentRecord{}).
		Where("startup_id = ? AND LOWER(investor_name) = ?", startupID, strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}
