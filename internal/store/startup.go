package store

import (
	"context"

	"trackmystartup/internal/models"

	"gorm.io/gorm"
)

// StartupStore persists startup profiles.
type StartupStore struct {
	db *gorm.DB
}

func NewStartupStore(db *gorm.DB) *StartupStore {
	return &StartupStore{db: db}
}

func (s *StartupStore) Create(ctx context.Context, st *models.Startup) error {
	return s.db.WithContext(ctx).Create(st).Error
}

// Get returns gorm.ErrRecordNotFound when the startup does not exist.
func (s *StartupStore) Get(ctx context.Context, id uint) (*models.Startup, error) {
	var st models.Startup
	if err := s.db.WithContext(ctx).First(&st, id).Error; err != nil {
		return nil, err
	}
	return &st, nil
}

// Save writes the profile columns. total_funding is owned by the investment
// store and never written from here.
func (s *StartupStore) Save(ctx context.Context, st *models.Startup) error {
	return s.db.WithContext(ctx).Model(st).
		Select("name", "currency", "registered_at", "subsidiaries", "international_operations").
		Updates(st).Error
}

func (s *StartupStore) List(ctx context.Context, offset, limit int) ([]models.Startup, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Startup{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	startups := []models.Startup{}
	err := s.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&startups).Error
	if err != nil {
		return nil, 0, err
	}
	return startups, total, nil
}

// IDs returns every startup id, for background sweeps.
func (s *StartupStore) IDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&models.Startup{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
