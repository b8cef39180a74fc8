package business

import (
	"errors"
	"strings"

	"trackmystartup/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrSharesNotPositive = errors.New("shares must be a positive number")
	ErrPriceNotPositive  = errors.New("price per share must be a positive number")
)

var hundred = decimal.NewFromInt(100)

// SumInvestments is the authoritative funding total of a set of investments.
func SumInvestments(investments []models.InvestmentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, inv := range investments {
		total = total.Add(inv.Amount)
	}
	return total
}

// ReconcileTotalFunding returns the sum of the investments, falling back to
// the cached startup figure only when the sum is zero.
func ReconcileTotalFunding(investments []models.InvestmentRecord, cached decimal.Decimal) decimal.Decimal {
	if sum := SumInvestments(investments); !sum.IsZero() {
		return sum
	}
	return cached
}

// ClampDelta applies delta to current and floors the result at zero.
func ClampDelta(current, delta decimal.Decimal) decimal.Decimal {
	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero
	}
	return next
}

// ResolveShares makes shares and price per share consistent with amount.
// Providing one derives the other; providing neither leaves both empty.
func ResolveShares(amount decimal.Decimal, shares, price decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal, error) {
	switch {
	case shares.Valid && price.Valid:
		if !shares.Decimal.IsPositive() {
			return shares, price, ErrSharesNotPositive
		}
		if !price.Decimal.IsPositive() {
			return shares, price, ErrPriceNotPositive
		}
		return shares, price, nil
	case shares.Valid:
		if !shares.Decimal.IsPositive() {
			return shares, price, ErrSharesNotPositive
		}
		p := amount.DivRound(shares.Decimal, 6)
		if !p.IsPositive() {
			return shares, price, ErrPriceNotPositive
		}
		return shares, decimal.NewNullDecimal(p), nil
	case price.Valid:
		if !price.Decimal.IsPositive() {
			return shares, price, ErrPriceNotPositive
		}
		s := amount.DivRound(price.Decimal, 6)
		if !s.IsPositive() {
			return shares, price, ErrSharesNotPositive
		}
		return decimal.NewNullDecimal(s), price, nil
	default:
		return shares, price, nil
	}
}

// FillValuation derives pre and post money valuations from the amount and
// the equity percentage when they were not supplied. Zero equity leaves them empty.
func FillValuation(amount decimal.Decimal, equity, pre, post decimal.NullDecimal) (decimal.NullDecimal, decimal.NullDecimal) {
	if !equity.Valid || !equity.Decimal.IsPositive() {
		return pre, post
	}
	if !post.Valid {
		if pre.Valid {
			post = decimal.NewNullDecimal(pre.Decimal.Add(amount))
		} else {
			post = decimal.NewNullDecimal(amount.Mul(hundred).DivRound(equity.Decimal, 2))
		}
	}
	if !pre.Valid {
		pre = decimal.NewNullDecimal(post.Decimal.Sub(amount))
	}
	return pre, post
}

// CapTableSummary condenses the investment records of a startup.
type CapTableSummary struct {
	InvestmentCount        int                 `json:"investment_count"`
	InvestorCount          int                 `json:"investor_count"`
	TotalFunding           decimal.Decimal     `json:"total_funding"`
	TotalShares            decimal.Decimal     `json:"total_shares"`
	TotalEquityAllocated   decimal.Decimal     `json:"total_equity_allocated"`
	AverageEquityAllocated decimal.Decimal     `json:"average_equity_allocated"`
	LatestPostMoney        decimal.NullDecimal `json:"latest_post_money_valuation"`
	ByInvestmentType       []TypeAmount        `json:"by_investment_type"`
}

// TypeAmount is the funding raised through one instrument.
type TypeAmount struct {
	InvestmentType models.InvestmentType `json:"investment_type"`
	Amount         decimal.Decimal       `json:"amount"`
}

// SummarizeCapTable builds the summary. Investments are expected in date
// order; the latest valuation is taken from the last one carrying it.
// The average equity over zero investments is zero.
func SummarizeCapTable(investments []models.InvestmentRecord, cachedFunding decimal.Decimal) CapTableSummary {
	s := CapTableSummary{
		InvestmentCount:        len(investments),
		TotalFunding:           ReconcileTotalFunding(investments, cachedFunding),
		TotalShares:            decimal.Zero,
		TotalEquityAllocated:   decimal.Zero,
		AverageEquityAllocated: decimal.Zero,
		ByInvestmentType:       []TypeAmount{},
	}

	investors := make(map[string]struct{})
	byType := make(map[models.InvestmentType]int)
	equityCount := 0
	for _, inv := range investments {
		investors[strings.ToLower(strings.TrimSpace(inv.InvestorName))] = struct{}{}
		if inv.Shares.Valid {
			s.TotalShares = s.TotalShares.Add(inv.Shares.Decimal)
		}
		if inv.EquityAllocated.Valid {
			s.TotalEquityAllocated = s.TotalEquityAllocated.Add(inv.EquityAllocated.Decimal)
			equityCount++
		}
		if inv.PostMoneyValuation.Valid {
			s.LatestPostMoney = inv.PostMoneyValuation
		}
		idx, ok := byType[inv.InvestmentType]
		if !ok {
			idx = len(s.ByInvestmentType)
			byType[inv.InvestmentType] = idx
			s.ByInvestmentType = append(s.ByInvestmentType, TypeAmount{InvestmentType: inv.InvestmentType, Amount: decimal.Zero})
		}
		s.ByInvestmentType[idx].Amount = s.ByInvestmentType[idx].Amount.Add(inv.Amount)
	}
	s.InvestorCount = len(investors)
	if equityCount > 0 {
		s.AverageEquityAllocated = s.TotalEquityAllocated.DivRound(decimal.NewFromInt(int64(equityCount)), 4)
	}
	return s
}
