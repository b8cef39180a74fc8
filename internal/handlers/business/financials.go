package business

import (
	"fmt"
	"sort"
	"time"

	"trackmystartup/internal/models"

	"github.com/shopspring/decimal"
)

// MonthlyPoint is one bar of the revenue/expense time series. Year is only
// set in all-years mode, where buckets are keyed by (year, month).
type MonthlyPoint struct {
	Year     int             `json:"year,omitempty"`
	Month    int             `json:"month"`
	Label    string          `json:"label"`
	Revenue  decimal.Decimal `json:"revenue"`
	Expenses decimal.Decimal `json:"expenses"`
}

// VerticalAmount is the summed amount of one vertical.
type VerticalAmount struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// VerticalBreakdown holds the revenue and expense verticals, each sorted by
// amount descending.
type VerticalBreakdown struct {
	Revenue  []VerticalAmount `json:"revenue"`
	Expenses []VerticalAmount `json:"expenses"`
}

// Summary holds the headline figures of a filter selection.
type Summary struct {
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	TotalCogs      decimal.Decimal `json:"total_cogs"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	TotalFunding   decimal.Decimal `json:"total_funding"`
	AvailableFunds decimal.Decimal `json:"available_funds"`
}

// Report is the full aggregation of one filter selection.
type Report struct {
	Filter    Filter            `json:"filter"`
	Monthly   []MonthlyPoint    `json:"monthly"`
	Verticals VerticalBreakdown `json:"verticals"`
	Summary   Summary           `json:"summary"`
}

// BuildReport aggregates records under f. totalFunding is the reconciled
// funding figure and is not subject to the filter.
func BuildReport(records []models.LedgerRecord, f Filter, totalFunding decimal.Decimal) Report {
	selected := FilterRecords(records, f)
	return Report{
		Filter:    f,
		Monthly:   monthlySeries(selected, f.Year),
		Verticals: verticalBreakdown(selected),
		Summary:   summarize(selected, totalFunding),
	}
}

// MonthlySeries buckets the records matching f by month.
func MonthlySeries(records []models.LedgerRecord, f Filter) []MonthlyPoint {
	return monthlySeries(FilterRecords(records, f), f.Year)
}

// Breakdown sums the records matching f per vertical.
func Breakdown(records []models.LedgerRecord, f Filter) VerticalBreakdown {
	return verticalBreakdown(FilterRecords(records, f))
}

// Summarize computes the headline figures for the records matching f.
func Summarize(records []models.LedgerRecord, f Filter, totalFunding decimal.Decimal) Summary {
	return summarize(FilterRecords(records, f), totalFunding)
}

func monthlySeries(records []models.LedgerRecord, year YearFilter) []MonthlyPoint {
	if !year.All {
		points := make([]MonthlyPoint, 12)
		for i := range points {
			m := time.Month(i + 1)
			points[i] = MonthlyPoint{
				Month:    int(m),
				Label:    m.String()[:3],
				Revenue:  decimal.Zero,
				Expenses: decimal.Zero,
			}
		}
		for _, r := range records {
			addToPoint(&points[int(r.Date.UTC().Month())-1], r)
		}
		return points
	}

	// Composite (year, month) keys so January 2024 and January 2025 stay apart.
	type bucketKey struct {
		year  int
		month time.Month
	}
	buckets := make(map[bucketKey]*MonthlyPoint)
	for _, r := range records {
		d := r.Date.UTC()
		k := bucketKey{year: d.Year(), month: d.Month()}
		p, ok := buckets[k]
		if !ok {
			p = &MonthlyPoint{
				Year:     k.year,
				Month:    int(k.month),
				Label:    fmt.Sprintf("%d-%s", k.year, k.month.String()[:3]),
				Revenue:  decimal.Zero,
				Expenses: decimal.Zero,
			}
			buckets[k] = p
		}
		addToPoint(p, r)
	}

	points := make([]MonthlyPoint, 0, len(buckets))
	for _, p := range buckets {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

func addToPoint(p *MonthlyPoint, r models.LedgerRecord) {
	switch r.RecordType {
	case models.RecordTypeRevenue:
		p.Revenue = p.Revenue.Add(r.Amount)
	case models.RecordTypeExpense:
		p.Expenses = p.Expenses.Add(r.Amount)
	}
}

func verticalBreakdown(records []models.LedgerRecord) VerticalBreakdown {
	revenue := make(map[string]*VerticalAmount)
	expenses := make(map[string]*VerticalAmount)

	for _, r := range records {
		var target map[string]*VerticalAmount
		switch r.RecordType {
		case models.RecordTypeRevenue:
			target = revenue
		case models.RecordTypeExpense:
			target = expenses
		default:
			continue
		}
		key := r.Vertical.Key()
		v, ok := target[key]
		if !ok {
			v = &VerticalAmount{Key: key, Label: r.Vertical.Label, Amount: decimal.Zero}
			target[key] = v
		} else if r.Vertical.Label < v.Label {
			// labels inside a group differ only by case; keep the smallest for determinism
			v.Label = r.Vertical.Label
		}
		v.Amount = v.Amount.Add(r.Amount)
	}

	return VerticalBreakdown{
		Revenue:  sortedAmounts(revenue),
		Expenses: sortedAmounts(expenses),
	}
}

func sortedAmounts(m map[string]*VerticalAmount) []VerticalAmount {
	out := make([]VerticalAmount, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func summarize(records []models.LedgerRecord, totalFunding decimal.Decimal) Summary {
	s := Summary{
		TotalRevenue:  decimal.Zero,
		TotalExpenses: decimal.Zero,
		TotalCogs:     decimal.Zero,
		TotalFunding:  totalFunding,
	}
	for _, r := range records {
		switch r.RecordType {
		case models.RecordTypeRevenue:
			s.TotalRevenue = s.TotalRevenue.Add(r.Amount)
			if r.Cogs.Valid {
				s.TotalCogs = s.TotalCogs.Add(r.Cogs.Decimal)
			}
		case models.RecordTypeExpense:
			s.TotalExpenses = s.TotalExpenses.Add(r.Amount)
		}
	}
	s.GrossProfit = s.TotalRevenue.Sub(s.TotalCogs)
	s.AvailableFunds = totalFunding.Add(s.TotalRevenue).Sub(s.TotalExpenses)
	return s
}
