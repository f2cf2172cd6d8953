package filter

import (
	"strings"
	"time"

	"electional-engine/internal/astrocontext"
	"electional-engine/internal/domain"
)

// Context carries what predicates need beyond the event itself.
type Context struct {
	// PhaseOf returns the lunar phase of a calendar day.
	PhaseOf func(day time.Time) domain.MoonPhase
}

// DefaultContext uses the synodic-cycle moon model.
func DefaultContext() Context {
	return Context{PhaseOf: func(day time.Time) domain.MoonPhase {
		phase, _ := astrocontext.PhaseAt(astrocontext.CyclePosition(day))
		return phase
	}}
}

func (c Context) phase(e *domain.Event) (domain.MoonPhase, bool) {
	day, err := e.Day()
	if err != nil {
		return "", false
	}
	if c.PhaseOf == nil {
		return DefaultContext().PhaseOf(day), true
	}
	return c.PhaseOf(day), true
}

// Predicate decides whether an event passes one filter option.
type Predicate func(e *domain.Event, ctx Context) bool

// Tier is one source of truth in an ordered fallback chain. Decide returns
// ok=false to defer to the next tier.
type Tier struct {
	Name   string
	Decide func(e *domain.Event, ctx Context) (match, ok bool)
}

// Chain resolves a predicate through its tiers in order, ending at Default.
type Chain struct {
	Tiers   []Tier
	Default bool
}

// DefaultTier names the terminal tier reported by Resolve.
const DefaultTier = "default"

// Resolve returns the decision and the name of the tier that made it.
func (c Chain) Resolve(e *domain.Event, ctx Context) (bool, string) {
	for _, t := range c.Tiers {
		if match, ok := t.Decide(e, ctx); ok {
			return match, t.Name
		}
	}
	return c.Default, DefaultTier
}

// Predicate adapts the chain to the pipeline.
func (c Chain) Predicate() Predicate {
	return func(e *domain.Event, ctx Context) bool {
		match, _ := c.Resolve(e, ctx)
		return match
	}
}

// content is the lower-cased title and description keyword heuristics look at.
func content(e *domain.Event) string {
	return strings.ToLower(e.Title + " " + e.Description)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func keywords(words ...string) Predicate {
	return func(e *domain.Event, _ Context) bool {
		return containsAny(content(e), words...)
	}
}

func not(p Predicate) Predicate {
	return func(e *domain.Event, ctx Context) bool {
		return !p(e, ctx)
	}
}

func never(*domain.Event, Context) bool { return false }

const warning = "⚠️"

func hasWarning(e *domain.Event) bool {
	return strings.Contains(e.Title, warning)
}
