package main

import (
	"context"
	"testing"
	"time"

	"trackmystartup/internal/models"
	"trackmystartup/internal/services"
	"trackmystartup/internal/testutil"
	"trackmystartup/pkg/config"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFundingAudit(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	changes := services.NewChangeFeed(nil, nil, nil)
	audit := &fundingAudit{
		startups:    services.NewStartupService(db, changes),
		investments: services.NewInvestmentService(db, changes),
	}

	clean := testutil.CreateStartup(t, db, "Clean", 0)
	drifted := testutil.CreateStartup(t, db, "Drifted", 40)
	require.NoError(t, db.Create(&models.InvestmentRecord{
		StartupID:      drifted.ID,
		Date:           time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		InvestorType:   "Angel",
		InvestmentType: models.InvestmentTypeEquity,
		InvestorName:   "Jane",
		Amount:         decimal.NewFromInt(250),
	}).Error)

	legacy := testutil.CreateStartup(t, db, "Legacy", 50000)

	report, err := audit.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, auditReport{Checked: 3, Drifted: 1}, report)
	assert.True(t, decimal.NewFromInt(40).Equal(testutil.CachedFunding(t, db, drifted.ID)), "audit must not rewrite the cached total")
	assert.True(t, testutil.CachedFunding(t, db, clean.ID).IsZero())
	assert.True(t, decimal.NewFromInt(50000).Equal(testutil.CachedFunding(t, db, legacy.ID)))

	report, err = audit.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, auditReport{Checked: 3, Drifted: 1}, report)

	_, _, err = audit.investments.RecalculateTotalFunding(ctx, drifted.ID)
	require.NoError(t, err)
	report, err = audit.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, auditReport{Checked: 3}, report)
	assert.True(t, decimal.NewFromInt(50000).Equal(testutil.CachedFunding(t, db, legacy.ID)))
}

func TestDefaultAuditCronParses(t *testing.T) {
	t.Setenv("AUDIT_CRON", "")
	_, err := cron.New(cron.WithSeconds()).AddFunc(config.FromEnv().AuditCron, func() {})
	assert.NoError(t, err)
}
