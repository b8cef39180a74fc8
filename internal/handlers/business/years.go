package business

import "time"

// AvailableYears lists the selectable years, newest first, from the account
// registration year up to now. Without a registration date the earliest
// ledger record anchors the range; without either only the current year is
// offered. "All years" is not part of the list; callers add it.
func AvailableYears(registeredAt, earliestRecord *time.Time, now time.Time) []int {
	current := now.UTC().Year()

	start := current
	switch {
	case registeredAt != nil && !registeredAt.IsZero():
		start = registeredAt.UTC().Year()
	case earliestRecord != nil && !earliestRecord.IsZero():
		start = earliestRecord.UTC().Year()
	}
	if start > current {
		start = current
	}

	years := make([]int, 0, current-start+1)
	for y := current; y >= start; y-- {
		years = append(years, y)
	}
	return years
}
