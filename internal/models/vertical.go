package models

import (
	"strings"
	"unicode"
)

// OtherVerticalCode marks a vertical carrying a user supplied label.
const OtherVerticalCode = "other"

// Vertical is either a known category (Code set, Label canonical) or an
// "other" category whose Label is the normalized free text.
type Vertical struct {
	Code  string `json:"code" gorm:"size:64;not null"`
	Label string `json:"label" gorm:"size:128;not null"`
}

// KnownVertical is a suggested category for one record type.
type KnownVertical struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var expenseVerticals = []KnownVertical{
	{Code: "salaries", Label: "Salaries"},
	{Code: "r_and_d", Label: "R&D"},
	{Code: "marketing", Label: "Marketing"},
	{Code: "rent", Label: "Rent"},
	{Code: "operations", Label: "Operations"},
	{Code: "legal_compliance", Label: "Legal & Compliance"},
	{Code: "travel", Label: "Travel"},
	{Code: "software_tools", Label: "Software & Tools"},
}

var revenueVerticals = []KnownVertical{
	{Code: "product_sales", Label: "Product Sales"},
	{Code: "subscription_revenue", Label: "Subscription Revenue"},
	{Code: "services", Label: "Services"},
	{Code: "licensing", Label: "Licensing"},
	{Code: "grants", Label: "Grants"},
}

// SuggestedVerticals returns the known categories for a record type.
func SuggestedVerticals(recordType RecordType) []KnownVertical {
	var src []KnownVertical
	switch recordType {
	case RecordTypeExpense:
		src = expenseVerticals
	case RecordTypeRevenue:
		src = revenueVerticals
	}
	out := make([]KnownVertical, len(src))
	copy(out, src)
	return out
}

// ParseVertical maps free text onto a Vertical. A case-insensitive match of a
// known label or code for the record type yields the known category; anything
// else becomes an "other" vertical with a normalized label. The literal
// "Other" with a separate label is handled by passing the label itself.
func ParseVertical(recordType RecordType, text string) Vertical {
	label := NormalizeLabel(text)
	if label == "" {
		return Vertical{}
	}
	for _, kv := range SuggestedVerticals(recordType) {
		if strings.EqualFold(kv.Label, label) || strings.EqualFold(kv.Code, label) {
			return Vertical{Code: kv.Code, Label: kv.Label}
		}
	}
	return Vertical{Code: OtherVerticalCode, Label: label}
}

// IsZero reports whether no vertical was given.
func (v Vertical) IsZero() bool {
	return v.Label == ""
}

// IsOther reports whether the vertical carries a free-text label.
func (v Vertical) IsOther() bool {
	return v.Code == OtherVerticalCode
}

// Key is the grouping key used by aggregation.
func (v Vertical) Key() string {
	if v.IsOther() {
		return OtherVerticalCode + ":" + strings.ToLower(v.Label)
	}
	return v.Code
}

// NormalizeLabel trims, collapses inner whitespace and title-cases each word.
// Words that are already all upper case (R&D, SaaS-like acronyms) are kept.
func NormalizeLabel(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		if isUpper(f) {
			continue
		}
		runes := []rune(strings.ToLower(f))
		runes[0] = unicode.ToUpper(runes[0])
		fields[i] = string(runes)
	}
	return strings.Join(fields, " ")
}

func isUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter && len([]rune(s)) > 1
}
