package store

import (
	"context"
	"errors"

	"trackmystartup/internal/models"

	"gorm.io/gorm"
)

// FundraisingStore persists fundraising rounds.
type FundraisingStore struct {
	db *gorm.DB
}

func NewFundraisingStore(db *gorm.DB) *FundraisingStore {
	return &FundraisingStore{db: db}
}

// List returns the rounds of a startup, most recent first. activeOnly keeps
// only the active one.
func (s *FundraisingStore) List(ctx context.Context, startupID uint, activeOnly bool) ([]models.FundraisingDetails, error) {
	q := s.db.WithContext(ctx).Where("startup_id = ?", startupID)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	rounds := []models.FundraisingDetails{}
	if err := q.Order("updated_at DESC").Order("created_at DESC").Find(&rounds).Error; err != nil {
		return nil, err
	}
	return rounds, nil
}

// Active returns the active round, or nil when there is none.
func (s *FundraisingStore) Active(ctx context.Context, startupID uint) (*models.FundraisingDetails, error) {
	var f models.FundraisingDetails
	err := s.db.WithContext(ctx).Where("startup_id = ? AND active = ?", startupID, true).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Upsert picks the row to write by priority: the explicit id, then the
// active round, then the most recent round; without any it inserts. apply
// copies the requested fields onto the chosen row; an error from it aborts
// the write. When the result is active every other round of the startup is
// deactivated first.
func (s *FundraisingStore) Upsert(ctx context.Context, startupID uint, id string, apply func(*models.FundraisingDetails) error) (*models.FundraisingDetails, bool, error) {
	var (
		result  models.FundraisingDetails
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := pickRound(tx, startupID, id)
		if err != nil {
			return err
		}
		if found == nil {
			found = &models.FundraisingDetails{StartupID: startupID}
			created = true
		}
		if err := apply(found); err != nil {
			return err
		}
		found.StartupID = startupID

		if found.Active {
			q := tx.Model(&models.FundraisingDetails{}).Where("startup_id = ? AND active = ?", startupID, true)
			if found.ID != "" {
				q = q.Where("id <> ?", found.ID)
			}
			if err := q.Update("active", false).Error; err != nil {
				return err
			}
		}

		if created {
			err = tx.Create(found).Error
		} else {
			err = tx.Save(found).Error
		}
		if err != nil {
			return err
		}
		result = *found
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &result, created, nil
}

func pickRound(tx *gorm.DB, startupID uint, id string) (*models.FundraisingDetails, error) {
	var f models.FundraisingDetails
	if id != "" {
		err := tx.Where("id = ? AND startup_id = ?", id, startupID).First(&f).Error
		if err != nil {
			return nil, err
		}
		return &f, nil
	}

	res := tx.Where("startup_id = ? AND active = ?", startupID, true).Limit(1).Find(&f)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &f, nil
	}

	// most recently created, edits do not count
	res = tx.Where("startup_id = ?", startupID).Order("created_at DESC").Order("id DESC").Limit(1).Find(&f)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		return &f, nil
	}
	return nil, nil
}
