package business

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"trackmystartup/internal/models"
)

// AllValue is the literal meaning "no constraint" for entity and year filters.
const AllValue = "all"

// YearFilter is either a concrete calendar year or "all years".
type YearFilter struct {
	All  bool
	Year int
}

// AllYears returns the synthetic "all years" selection.
func AllYears() YearFilter {
	return YearFilter{All: true}
}

// Year returns a concrete year selection.
func Year(y int) YearFilter {
	return YearFilter{Year: y}
}

// String renders the selection the way query strings carry it.
func (y YearFilter) String() string {
	if y.All {
		return AllValue
	}
	return strconv.Itoa(y.Year)
}

// MarshalText lets the selection travel as "all" or "2024" in JSON.
func (y YearFilter) MarshalText() ([]byte, error) {
	return []byte(y.String()), nil
}

// UnmarshalText accepts "all", "" or a four digit year.
func (y *YearFilter) UnmarshalText(b []byte) error {
	parsed, err := ParseYear(string(b))
	if err != nil {
		return err
	}
	*y = parsed
	return nil
}

// UnmarshalJSON accepts both "2024" and 2024.
func (y *YearFilter) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*y = AllYears()
		return nil
	}
	return y.UnmarshalText([]byte(strings.Trim(string(b), `"`)))
}

// ParseYear parses a year selection. Empty input means all years.
func ParseYear(s string) (YearFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, AllValue) {
		return AllYears(), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1900 || y > 9999 {
		return YearFilter{}, fmt.Errorf("invalid year %q", s)
	}
	return Year(y), nil
}

// Filter is the entity/year selection applied to a ledger.
type Filter struct {
	Entity string     `json:"entity"`
	Year   YearFilter `json:"year"`
}

// AllFilter selects every entity and every year.
func AllFilter() Filter {
	return Filter{Entity: AllValue, Year: AllYears()}
}

// ParseFilter builds a filter from raw query values.
func ParseFilter(entity, year string) (Filter, error) {
	y, err := ParseYear(year)
	if err != nil {
		return Filter{}, err
	}
	entity = strings.TrimSpace(entity)
	if entity == "" {
		entity = AllValue
	}
	return Filter{Entity: entity, Year: y}, nil
}

// AllEntities reports whether the filter places no constraint on entity.
func (f Filter) AllEntities() bool {
	return f.Entity == "" || strings.EqualFold(f.Entity, AllValue)
}

// YearRange returns the half-open [start, end) date range of a concrete year.
func (f Filter) YearRange() (time.Time, time.Time, bool) {
	if f.Year.All {
		return time.Time{}, time.Time{}, false
	}
	start := time.Date(f.Year.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0), true
}

// Matches reports whether a record falls inside the filter. Entities compare
// case-insensitively.
func (f Filter) Matches(r models.LedgerRecord) bool {
	if !f.AllEntities() && !strings.EqualFold(strings.TrimSpace(r.Entity), strings.TrimSpace(f.Entity)) {
		return false
	}
	if !f.Year.All && r.Date.UTC().Year() != f.Year.Year {
		return false
	}
	return true
}

// FilterRecords returns the records matching f, preserving order.
func FilterRecords(records []models.LedgerRecord, f Filter) []models.LedgerRecord {
	out := make([]models.LedgerRecord, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
