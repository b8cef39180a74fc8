// Package money renders base-currency amounts for display.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// IsKnownCurrency reports whether code is an ISO 4217 code known to the formatter.
func IsKnownCurrency(code string) bool {
	return gomoney.GetCurrency(strings.ToUpper(strings.TrimSpace(code))) != nil
}

// Format renders amount in the currency's conventional form, e.g. "$1,234.50".
// Unknown codes fall back to "<amount> <CODE>" with two decimals.
func Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := gomoney.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, cur.Code).Display()
}
