package store

import (
	"context"
	"testing"
	"time"

	"trackmystartup/internal/handlers/business"
	"trackmystartup/internal/models"
	"trackmystartup/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLedgerStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	st := testutil.CreateStartup(t, db, "Acme", 0)
	ledger := NewLedgerStore(db)

	rows := []models.LedgerRecord{
		{StartupID: st.ID, RecordType: models.RecordTypeRevenue, Date: day(2024, time.January, 5), Entity: models.ParentEntity, Vertical: models.ParseVertical(models.RecordTypeRevenue, "Services"), Description: "consulting", Amount: decimal.NewFromInt(100)},
		{StartupID: st.ID, RecordType: models.RecordTypeExpense, Date: day(2024, time.February, 5), Entity: "Acme India", Vertical: models.ParseVertical(models.RecordTypeExpense, "Rent"), Description: "office", Amount: decimal.NewFromInt(40)},
		{StartupID: st.ID, RecordType: models.RecordTypeRevenue, Date: day(2025, time.January, 5), Entity: models.ParentEntity, Vertical: models.ParseVertical(models.RecordTypeRevenue, "Services"), Description: "consulting", Amount: decimal.NewFromInt(60)},
	}
	for i := range rows {
		require.NoError(t, ledger.Create(ctx, &rows[i]))
		assert.Len(t, rows[i].ID, 36)
	}

	t.Run("List newest first", func(t *testing.T) {
		got, err := ledger.List(ctx, st.ID, "", business.AllFilter())
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, 2025, got[0].Date.Year())
		assert.Equal(t, "services", got[0].Vertical.Code)
	})

	t.Run("List by year entity and type", func(t *testing.T) {
		got, err := ledger.List(ctx, st.ID, "", business.Filter{Entity: business.AllValue, Year: business.Year(2024)})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = ledger.List(ctx, st.ID, models.RecordTypeExpense, business.Filter{Entity: "Acme India", Year: business.AllYears()})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.True(t, decimal.NewFromInt(40).Equal(got[0].Amount))
	})

	t.Run("Entities and earliest date", func(t *testing.T) {
		entities, err := ledger.Entities(ctx, st.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Acme India", models.ParentEntity}, entities)

		earliest, err := ledger.EarliestDate(ctx, st.ID)
		require.NoError(t, err)
		require.NotNil(t, earliest)
		assert.Equal(t, day(2024, time.January, 5), *earliest)

		none, err := ledger.EarliestDate(ctx, st.ID+100)
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("Delete and get", func(t *testing.T) {
		removed, err := ledger.Delete(ctx, rows[1].ID)
		require.NoError(t, err)
		assert.Equal(t, rows[1].ID, removed.ID)

		_, err = ledger.Get(ctx, rows[1].ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

		_, err = ledger.Delete(ctx, rows[1].ID)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestInvestmentStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	st := testutil.CreateStartup(t, db, "Acme", 0)
	investments := NewInvestmentStore(db)

	newInvestment := func(amount int64) *models.InvestmentRecord {
		return &models.InvestmentRecord{
			StartupID:      st.ID,
			Date:           day(2024, time.April, 1),
			InvestorType:   "Angel",
			InvestmentType: models.InvestmentTypeEquity,
			InvestorName:   "Jane Doe",
			Amount:         decimal.NewFromInt(amount),
		}
	}

	a := newInvestment(100000)
	require.NoError(t, investments.Create(ctx, a))
	b := newInvestment(5000)
	require.NoError(t, investments.Create(ctx, b))
	assert.True(t, decimal.NewFromInt(105000).Equal(testutil.CachedFunding(t, db, st.ID)))

	t.Run("Update moves the cache by the delta", func(t *testing.T) {
		previous := b.Amount
		b.Amount = decimal.NewFromInt(8000)
		require.NoError(t, investments.Save(ctx, b, previous))
		assert.True(t, decimal.NewFromInt(108000).Equal(testutil.CachedFunding(t, db, st.ID)))
	})

	t.Run("Sum matches the records", func(t *testing.T) {
		sum, n, err := investments.Sum(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.True(t, decimal.NewFromInt(108000).Equal(sum))
	})

	t.Run("Delete floors the cache at zero", func(t *testing.T) {
		require.NoError(t, db.Model(&models.Startup{}).Where("id = ?", st.ID).Update("total_funding", decimal.NewFromInt(1000)).Error)
		_, err := investments.Delete(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, testutil.CachedFunding(t, db, st.ID).IsZero())
	})

	t.Run("Recalculate is idempotent", func(t *testing.T) {
		before, after, err := investments.Recalculate(ctx, st.ID)
		require.NoError(t, err)
		assert.True(t, before.IsZero())
		assert.True(t, decimal.NewFromInt(8000).Equal(after))

		before, after, err = investments.Recalculate(ctx, st.ID)
		require.NoError(t, err)
		assert.True(t, before.Equal(after))
		assert.True(t, decimal.NewFromInt(8000).Equal(testutil.CachedFunding(t, db, st.ID)))
	})

	t.Run("Unknown startup rolls back the insert", func(t *testing.T) {
		orphan := newInvestment(10)
		orphan.StartupID = st.ID + 100
		assert.ErrorIs(t, investments.Create(ctx, orphan), gorm.ErrRecordNotFound)
		list, err := investments.List(ctx, orphan.StartupID)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Funding source lookup", func(t *testing.T) {
		ok, err := NewLedgerStore(db).HasInvestor(ctx, st.ID, " jane doe")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = NewLedgerStore(db).HasInvestor(ctx, st.ID, "Nobody")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestFundraisingStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	st := testutil.CreateStartup(t, db, "Acme", 0)
	rounds := NewFundraisingStore(db)

	setRound := func(roundType string, active bool) func(*models.FundraisingDetails) error {
		return func(f *models.FundraisingDetails) error {
			f.RoundType = roundType
			f.TargetValue = decimal.NewFromInt(500000)
			f.Active = active
			return nil
		}
	}

	first, created, err := rounds.Upsert(ctx, st.ID, "", setRound("Seed", true))
	require.NoError(t, err)
	assert.True(t, created)

	t.Run("Without id the active round is updated", func(t *testing.T) {
		again, created, err := rounds.Upsert(ctx, st.ID, "", setRound("Seed Extension", true))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, "Seed Extension", again.RoundType)
	})

	t.Run("Activating another round deactivates the rest", func(t *testing.T) {
		require.NoError(t, db.Create(&models.FundraisingDetails{StartupID: st.ID, RoundType: "Series A"}).Error)
		list, err := rounds.List(ctx, st.ID, false)
		require.NoError(t, err)
		require.Len(t, list, 2)

		var seriesA string
		for _, r := range list {
			if r.RoundType == "Series A" {
				seriesA = r.ID
			}
		}
		_, _, err = rounds.Upsert(ctx, st.ID, seriesA, setRound("Series A", true))
		require.NoError(t, err)

		active, err := rounds.List(ctx, st.ID, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, seriesA, active[0].ID)
	})

	t.Run("Unknown id", func(t *testing.T) {
		_, _, err := rounds.Upsert(ctx, st.ID, "missing", setRound("Seed", false))
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("Without an active round the newest created round is updated", func(t *testing.T) {
		other := testutil.CreateStartup(t, db, "Rounds", 0)
		now := time.Now().UTC()
		seed := &models.FundraisingDetails{StartupID: other.ID, RoundType: "Seed (edited)", CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now}
		seriesA := &models.FundraisingDetails{StartupID: other.ID, RoundType: "Series A", CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour)}
		require.NoError(t, db.Create(seed).Error)
		require.NoError(t, db.Create(seriesA).Error)

		picked, created, err := rounds.Upsert(ctx, other.ID, "", func(f *models.FundraisingDetails) error {
			f.TargetValue = decimal.NewFromInt(2000000)
			return nil
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, seriesA.ID, picked.ID)
		assert.Equal(t, "Series A", picked.RoundType)
	})

	t.Run("No active round", func(t *testing.T) {
		other := testutil.CreateStartup(t, db, "Other", 0)
		active, err := rounds.Active(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, active)
	})
}

func TestStartupStore(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	startups := NewStartupStore(db)

	st := &models.Startup{Name: "Acme", Currency: "USD", Subsidiaries: []string{"Acme India"}, TotalFunding: decimal.NewFromInt(10)}
	require.NoError(t, startups.Create(ctx, st))

	st.Name = "Acme Labs"
	st.TotalFunding = decimal.NewFromInt(999)
	require.NoError(t, startups.Save(ctx, st))

	got, err := startups.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Labs", got.Name)
	assert.Equal(t, []string{"Acme India"}, got.Subsidiaries)
	assert.True(t, decimal.NewFromInt(10).Equal(got.TotalFunding), "profile saves leave the funding cache alone")

	list, total, err := startups.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, list, 1)

	ids, err := startups.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{st.ID}, ids)
}
