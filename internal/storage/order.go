package storage

import (
	"sort"

	"electional-engine/internal/domain"
)

// SortEvents orders events by date, time, id, the order every EventStore returns.
func SortEvents(events []*domain.Event) {
	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
}

// InRange reports whether an event date lies within r, inclusive by day.
// A nil range contains every date.
func InRange(e *domain.Event, r *domain.DateRange) bool {
	if r == nil {
		return true
	}
	return e.Date >= r.Start.Format(domain.DateLayout) && e.Date <= r.End.Format(domain.DateLayout)
}

// ValidKey reports whether an event carries the keys every store requires.
func ValidKey(e *domain.Event) bool {
	return e != nil && e.ID != "" && e.UserID != ""
}
