package astrocontext

import (
	"sort"
	"sync"
	"time"

	"electional-engine/internal/domain"
)

// RetrogradePeriod is one inclusive Mercury retrograde range, by calendar day.
type RetrogradePeriod struct {
	Start time.Time
	End   time.Time
}

// PeriodsFrom converts configured date ranges into retrograde periods.
func PeriodsFrom(ranges []domain.DateRange) []RetrogradePeriod {
	out := make([]RetrogradePeriod, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, RetrogradePeriod{Start: truncateDay(r.Start), End: truncateDay(r.End)})
	}
	return out
}

// MercuryTable answers retrograde questions inside a finite horizon. It is safe
// for concurrent use.
type MercuryTable struct {
	mu      sync.RWMutex
	periods []RetrogradePeriod
	horizon domain.DateRange
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultMercuryTable covers 2024 through 2027.
func DefaultMercuryTable() *MercuryTable {
	return NewMercuryTable([]RetrogradePeriod{
		{date(2024, time.April, 1), date(2024, time.April, 25)},
		{date(2024, time.August, 5), date(2024, time.August, 28)},
		{date(2024, time.November, 25), date(2024, time.December, 15)},
		{date(2025, time.March, 15), date(2025, time.April, 7)},
		{date(2025, time.July, 18), date(2025, time.August, 11)},
		{date(2025, time.November, 9), date(2025, time.November, 29)},
		{date(2026, time.February, 26), date(2026, time.March, 20)},
		{date(2026, time.June, 29), date(2026, time.July, 23)},
		{date(2026, time.October, 24), date(2026, time.November, 13)},
		{date(2027, time.February, 9), date(2027, time.March, 3)},
		{date(2027, time.June, 10), date(2027, time.July, 4)},
		{date(2027, time.October, 7), date(2027, time.October, 28)},
	}, domain.DateRange{Start: date(2024, time.January, 1), End: date(2027, time.December, 31)})
}

// NewMercuryTable builds a table from periods valid within horizon.
func NewMercuryTable(periods []RetrogradePeriod, horizon domain.DateRange) *MercuryTable {
	sorted := make([]RetrogradePeriod, len(periods))
	copy(sorted, periods)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	return &MercuryTable{periods: sorted, horizon: horizon}
}

// Extend adds periods and widens the horizon end. Contexts already computed
// from the table are not refreshed; use Evaluator.Extend for a cached table.
func (m *MercuryTable) Extend(periods []RetrogradePeriod, horizonEnd time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods = append(m.periods, periods...)
	sort.Slice(m.periods, func(i, j int) bool { return m.periods[i].Start.Before(m.periods[j].Start) })
	if horizonEnd.After(m.horizon.End) {
		m.horizon.End = horizonEnd
	}
}

// Status reports Mercury's state on t's calendar day. Days outside the horizon are unknown.
func (m *MercuryTable) Status(t time.Time) domain.MercuryStatus {
	d := truncateDay(t)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.horizon.Contains(d) {
		return domain.MercuryUnknown
	}
	for _, p := range m.periods {
		if !d.Before(p.Start) && !d.After(p.End) {
			return domain.MercuryRetrograde
		}
	}
	return domain.MercuryDirect
}

// NextRetrograde returns the start of the first period beginning after t.
func (m *MercuryTable) NextRetrograde(t time.Time) *time.Time {
	d := truncateDay(t)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if p.Start.After(d) {
			start := p.Start
			return &start
		}
	}
	return nil
}

// NextDirect returns the end of the current period, or of the next one.
func (m *MercuryTable) NextDirect(t time.Time) *time.Time {
	d := truncateDay(t)
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.periods {
		if !p.End.Before(d) {
			end := p.End
			return &end
		}
	}
	return nil
}

// Horizon returns the range the table answers for.
func (m *MercuryTable) Horizon() domain.DateRange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.horizon
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
