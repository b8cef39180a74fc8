// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"trackmystartup/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens an in-memory sqlite database private to t with every model migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// CreateStartup inserts a startup with the given cached funding.
func CreateStartup(t *testing.T, db *gorm.DB, name string, cachedFunding int64) *models.Startup {
	t.Helper()
	registered := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	st := &models.Startup{
		Name:         name,
		Currency:     "USD",
		RegisteredAt: &registered,
		TotalFunding: decimal.NewFromInt(cachedFunding),
	}
	require.NoError(t, db.Create(st).Error)
	return st
}

// CachedFunding reads startups.total_funding back.
func CachedFunding(t *testing.T, db *gorm.DB, startupID uint) decimal.Decimal {
	t.Helper()
	var st models.Startup
	require.NoError(t, db.First(&st, startupID).Error)
	return st.TotalFunding
}
