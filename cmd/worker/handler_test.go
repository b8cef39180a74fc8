package main

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"trackmystartup/internal/models"
	"trackmystartup/internal/services"
	"trackmystartup/internal/testutil"
	"trackmystartup/pkg/cache"
	"trackmystartup/pkg/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, ev events.FinancialsChanged) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

func TestChangeHandler(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	c := cache.New(rdb, time.Minute)

	h := &changeHandler{
		cache:       c,
		investments: services.NewInvestmentService(db, services.NewChangeFeed(nil, c, nil)),
	}

	st := testutil.CreateStartup(t, db, "Acme", 0)
	inv := &models.InvestmentRecord{
		StartupID:      st.ID,
		Date:           time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		InvestorType:   "Angel",
		InvestmentType: models.InvestmentTypeSAFE,
		InvestorName:   "Jane",
		Amount:         decimal.NewFromInt(500),
	}
	require.NoError(t, db.Create(inv).Error)

	t.Run("Ledger change only invalidates", func(t *testing.T) {
		require.NoError(t, c.SetJSON(ctx, st.ID, "report:all:all", map[string]string{"x": "y"}))
		require.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: st.ID, Kind: events.KindLedger, Action: events.ActionCreated})))
		var out map[string]string
		ok, err := c.GetJSON(ctx, st.ID, "report:all:all", &out)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, testutil.CachedFunding(t, db, st.ID).IsZero())
	})

	t.Run("Investment change reports drift without writing", func(t *testing.T) {
		require.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: st.ID, Kind: events.KindInvestment, Action: events.ActionCreated, RecordID: inv.ID})))
		assert.True(t, testutil.CachedFunding(t, db, st.ID).IsZero())
	})

	t.Run("Legacy cached funding survives investment events", func(t *testing.T) {
		legacy := testutil.CreateStartup(t, db, "Legacy", 50000)
		added, err := h.investments.AddInvestment(ctx, legacy.ID, services.InvestmentInput{
			Date:           time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			InvestorType:   "VC",
			InvestmentType: models.InvestmentTypeEquity,
			InvestorName:   "Fund One",
			Amount:         decimal.NewFromInt(100000),
		})
		require.NoError(t, err)
		require.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: legacy.ID, Kind: events.KindInvestment, Action: events.ActionCreated, RecordID: added.ID})))
		assert.True(t, decimal.NewFromInt(150000).Equal(testutil.CachedFunding(t, db, legacy.ID)))

		require.NoError(t, h.investments.DeleteInvestment(ctx, added.ID))
		require.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: legacy.ID, Kind: events.KindInvestment, Action: events.ActionDeleted, RecordID: added.ID})))
		total, err := h.investments.TotalFunding(ctx, legacy.ID)
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(50000).Equal(total))
	})

	t.Run("Held lock is skipped", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Startup{}).Where("id = ?", st.ID).Update("total_funding", decimal.NewFromInt(1)).Error)
		mr.Set(fmt.Sprintf("lock:funding-drift:%d", st.ID), "other")
		defer mr.Del(fmt.Sprintf("lock:funding-drift:%d", st.ID))
		require.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: st.ID, Kind: events.KindInvestment, Action: events.ActionUpdated})))
		assert.True(t, decimal.NewFromInt(1).Equal(testutil.CachedFunding(t, db, st.ID)))
	})

	t.Run("Unknown startup is acknowledged", func(t *testing.T) {
		assert.NoError(t, h.Handle(ctx, message(t, events.FinancialsChanged{StartupID: st.ID + 50, Kind: events.KindInvestment, Action: events.ActionDeleted})))
	})

	t.Run("Garbage is acknowledged", func(t *testing.T) {
		assert.NoError(t, h.Handle(ctx, []byte("{not json")))
		assert.NoError(t, h.Handle(ctx, []byte(`{"kind":"ledger"}`)))
	})
}
