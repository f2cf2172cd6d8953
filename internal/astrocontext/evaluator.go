package astrocontext

import (
	"sync"
	"time"

	"electional-engine/internal/domain"
)

// Evaluator computes AstronomicalContext per date and caches results for the
// current reference month. Asking for a date in another month drops the cache.
type Evaluator struct {
	mu      sync.Mutex
	mercury *MercuryTable
	month   string
	cache   map[string]domain.AstronomicalContext
}

// NewEvaluator creates an Evaluator. A nil table uses DefaultMercuryTable.
func NewEvaluator(mercury *MercuryTable) *Evaluator {
	if mercury == nil {
		mercury = DefaultMercuryTable()
	}
	return &Evaluator{
		mercury: mercury,
		cache:   make(map[string]domain.AstronomicalContext),
	}
}

// Mercury returns the retrograde table in use.
func (e *Evaluator) Mercury() *MercuryTable {
	return e.mercury
}

// Extend widens the retrograde table and drops every cached day, so dates that
// were outside the old horizon stop reporting unknown.
func (e *Evaluator) Extend(periods []RetrogradePeriod, horizonEnd time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mercury.Extend(periods, horizonEnd)
	e.cache = make(map[string]domain.AstronomicalContext)
}

// Evaluate returns the context for t's calendar day.
func (e *Evaluator) Evaluate(t time.Time) domain.AstronomicalContext {
	dayKey := t.Format(domain.DateLayout)
	monthKey := t.Format("2006-01")

	e.mu.Lock()
	defer e.mu.Unlock()

	if monthKey != e.month {
		e.month = monthKey
		e.cache = make(map[string]domain.AstronomicalContext)
	}
	if ctx, ok := e.cache[dayKey]; ok {
		return ctx
	}

	ctx := Compute(t, e.mercury)
	e.cache[dayKey] = ctx
	return ctx
}

// CachedDays reports how many days are held for the current month.
func (e *Evaluator) CachedDays() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// Compute derives the context for t without caching.
func Compute(t time.Time, mercury *MercuryTable) domain.AstronomicalContext {
	pos := CyclePosition(t)
	phase, illum := PhaseAt(pos)
	window := WaxingWindow(t)
	status := mercury.Status(t)

	ctx := domain.AstronomicalContext{
		Date:              t,
		MoonPhase:         phase,
		Illumination:      illum,
		CyclePosition:     pos,
		DaysToNextNew:     DaysToNextNew(pos),
		DaysToNextFull:    DaysToNextFull(pos),
		MercuryStatus:     status,
		MercuryRetrograde: status == domain.MercuryRetrograde,
		WaxingWindow:      &window,
	}
	if status != domain.MercuryUnknown {
		ctx.NextRetrograde = mercury.NextRetrograde(t)
		ctx.NextDirect = mercury.NextDirect(t)
	}
	return ctx
}
