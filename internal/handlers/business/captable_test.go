package business

import (
	"testing"
	"time"

	"trackmystartup/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nd(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestReconcileTotalFunding(t *testing.T) {
	cached := decimal.NewFromInt(250)

	t.Run("Sum wins over cache", func(t *testing.T) {
		investments := []models.InvestmentRecord{
			{Amount: decimal.NewFromInt(100)},
			{Amount: decimal.NewFromInt(50)},
		}
		assert.True(t, decimal.NewFromInt(150).Equal(ReconcileTotalFunding(investments, cached)))
	})

	t.Run("No investments falls back to cache", func(t *testing.T) {
		assert.True(t, cached.Equal(ReconcileTotalFunding(nil, cached)))
	})
}

func TestClampDelta(t *testing.T) {
	assert.True(t, decimal.NewFromInt(30).Equal(ClampDelta(decimal.NewFromInt(10), decimal.NewFromInt(20))))
	assert.True(t, decimal.Zero.Equal(ClampDelta(decimal.NewFromInt(10), decimal.NewFromInt(-20))))
}

func TestResolveShares(t *testing.T) {
	amount := decimal.NewFromInt(1000)

	t.Run("Shares derive price", func(t *testing.T) {
		shares, price, err := ResolveShares(amount, nd("400"), decimal.NullDecimal{})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(400).Equal(shares.Decimal))
		assert.True(t, decimal.RequireFromString("2.5").Equal(price.Decimal))
	})

	t.Run("Price derives shares", func(t *testing.T) {
		shares, _, err := ResolveShares(amount, decimal.NullDecimal{}, nd("4"))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(250).Equal(shares.Decimal))
	})

	t.Run("Non positive values are rejected", func(t *testing.T) {
		_, _, err := ResolveShares(amount, nd("0"), decimal.NullDecimal{})
		assert.ErrorIs(t, err, ErrSharesNotPositive)
		_, _, err = ResolveShares(amount, decimal.NullDecimal{}, nd("-1"))
		assert.ErrorIs(t, err, ErrPriceNotPositive)
	})

	t.Run("Neither given", func(t *testing.T) {
		shares, price, err := ResolveShares(amount, decimal.NullDecimal{}, decimal.NullDecimal{})
		require.NoError(t, err)
		assert.False(t, shares.Valid)
		assert.False(t, price.Valid)
	})
}

func TestFillValuation(t *testing.T) {
	pre, post := FillValuation(decimal.NewFromInt(100000), nd("10"), decimal.NullDecimal{}, decimal.NullDecimal{})
	require.True(t, post.Valid)
	assert.True(t, decimal.NewFromInt(1000000).Equal(post.Decimal))
	assert.True(t, decimal.NewFromInt(900000).Equal(pre.Decimal))

	pre, post = FillValuation(decimal.NewFromInt(100), decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{})
	assert.False(t, pre.Valid)
	assert.False(t, post.Valid)

	pre, post = FillValuation(decimal.NewFromInt(100), nd("5"), nd("1900"), decimal.NullDecimal{})
	assert.True(t, decimal.NewFromInt(2000).Equal(post.Decimal))
	assert.True(t, decimal.NewFromInt(1900).Equal(pre.Decimal))
}

func TestSummarizeCapTable(t *testing.T) {
	t.Run("Zero investments", func(t *testing.T) {
		s := SummarizeCapTable(nil, decimal.NewFromInt(42))
		assert.Equal(t, 0, s.InvestorCount)
		assert.True(t, s.AverageEquityAllocated.IsZero())
		assert.True(t, decimal.NewFromInt(42).Equal(s.TotalFunding))
		assert.NotNil(t, s.ByInvestmentType)
	})

	t.Run("Aggregates investors and instruments", func(t *testing.T) {
		investments := []models.InvestmentRecord{
			{Date: day(2023, time.January, 1), InvestorName: "Seed Fund", InvestmentType: models.InvestmentTypeEquity, Amount: decimal.NewFromInt(100), EquityAllocated: nd("10"), Shares: nd("1000"), PostMoneyValuation: nd("1000")},
			{Date: day(2023, time.June, 1), InvestorName: "seed fund ", InvestmentType: models.InvestmentTypeSAFE, Amount: decimal.NewFromInt(50)},
			{Date: day(2024, time.January, 1), InvestorName: "Angel", InvestmentType: models.InvestmentTypeEquity, Amount: decimal.NewFromInt(200), EquityAllocated: nd("5"), Shares: nd("500"), PostMoneyValuation: nd("4000")},
		}
		s := SummarizeCapTable(investments, decimal.Zero)
		assert.Equal(t, 3, s.InvestmentCount)
		assert.Equal(t, 2, s.InvestorCount)
		assert.True(t, decimal.NewFromInt(350).Equal(s.TotalFunding))
		assert.True(t, decimal.NewFromInt(1500).Equal(s.TotalShares))
		assert.True(t, decimal.RequireFromString("7.5").Equal(s.AverageEquityAllocated))
		assert.True(t, decimal.NewFromInt(4000).Equal(s.LatestPostMoney.Decimal))
		require.Len(t, s.ByInvestmentType, 2)
		assert.Equal(t, models.InvestmentTypeEquity, s.ByInvestmentType[0].InvestmentType)
		assert.True(t, decimal.NewFromInt(300).Equal(s.ByInvestmentType[0].Amount))
	})
}

func TestAvailableYears(t *testing.T) {
	now := day(2026, time.March, 1)

	reg := day(2023, time.September, 9)
	assert.Equal(t, []int{2026, 2025, 2024, 2023}, AvailableYears(&reg, nil, now))

	earliest := day(2025, time.February, 1)
	assert.Equal(t, []int{2026, 2025}, AvailableYears(nil, &earliest, now))

	assert.Equal(t, []int{2026}, AvailableYears(nil, nil, now))

	future := day(2030, time.January, 1)
	assert.Equal(t, []int{2026}, AvailableYears(&future, nil, now))
}
