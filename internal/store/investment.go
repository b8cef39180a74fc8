package store

import (
	"context"

	"trackmystartup/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvestmentStore persists investment records and keeps the cached
// startups.total_funding in step with them. Every write and its cache delta
// share one transaction.
type InvestmentStore struct {
	db *gorm.DB
}

func NewInvestmentStore(db *gorm.DB) *InvestmentStore {
	return &InvestmentStore{db: db}
}

// Create inserts the investment and adds its amount to the cache.
func (s *InvestmentStore) Create(ctx context.Context, inv *models.InvestmentRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(inv).Error; err != nil {
			return err
		}
		return adjustTotalFunding(tx, inv.StartupID, inv.Amount)
	})
}

// Get returns gorm.ErrRecordNotFound when no investment has the id.
func (s *InvestmentStore) Get(ctx context.Context, id string) (*models.InvestmentRecord, error) {
	var inv models.InvestmentRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// Save writes the investment and moves the cache by the signed difference
// between the new amount and previous.
func (s *InvestmentStore) Save(ctx context.Context, inv *models.InvestmentRecord, previous decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}
		delta := inv.Amount.Sub(previous)
		if delta.IsZero() {
			return nil
		}
		return adjustTotalFunding(tx, inv.StartupID, delta)
	})
}

// Delete removes the investment and subtracts its amount from the cache,
// floored at zero.
func (s *InvestmentStore) Delete(ctx context.Context, id string) (*models.InvestmentRecord, error) {
	var removed *models.InvestmentRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.InvestmentRecord
		if err := tx.Where("id = ?", id).First(&inv).Error; err != nil {
			return err
		}
		if err := tx.Delete(&inv).Error; err != nil {
			return err
		}
		removed = &inv
		return adjustTotalFunding(tx, inv.StartupID, inv.Amount.Neg())
	})
	return removed, err
}

// List returns the investments of a startup, oldest first.
func (s *InvestmentStore) List(ctx context.Context, startupID uint) ([]models.InvestmentRecord, error) {
	investments := []models.InvestmentRecord{}
	err := s.db.WithContext(ctx).
		Where("startup_id = ?", startupID).
		Order("date ASC").
		Order("created_at ASC").
		Find(&investments).Error
	if err != nil {
		return nil, err
	}
	for i := range investments {
		investments[i].Date = investments[i].Date.UTC()
	}
	return investments, nil
}

// Sum returns the authoritative total and how many investments make it up.
func (s *InvestmentStore) Sum(ctx context.Context, startupID uint) (decimal.Decimal, int, error) {
	var amounts []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.InvestmentRecord{}).
		Where("startup_id = ?", startupID).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, len(amounts), nil
}

// Recalculate overwrites the cache with the authoritative sum and returns the
// cached value it replaced alongside the new one. Running it twice is a no-op
// the second time.
func (s *InvestmentStore) Recalculate(ctx context.Context, startupID uint) (decimal.Decimal, decimal.Decimal, error) {
	var before, after decimal.Decimal
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.Startup
		if err := tx.Select("id", "total_funding").Where("id = ?", startupID).First(&st).Error; err != nil {
			return err
		}
		before = st.TotalFunding

		var amounts []decimal.Decimal
		if err := tx.Model(&models.InvestmentRecord{}).Where("startup_id = ?", startupID).Pluck("amount", &amounts).Error; err != nil {
			return err
		}
		after = decimal.Zero
		for _, a := range amounts {
			after = after.Add(a)
		}
		if before.Equal(after) {
			return nil
		}
		return tx.Model(&models.Startup{}).Where("id = ?", startupID).Update("total_funding", after).Error
	})
	return before, after, err
}

func adjustTotalFunding(tx *gorm.DB, startupID uint, delta decimal.Decimal) error {
	res := tx.Model(&models.Startup{}).
		Where("id = ?", startupID).
		Update("total_funding", gorm.Expr("CASE WHEN total_funding + ? < 0 THEN 0 ELSE total_funding + ? END", delta, delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
