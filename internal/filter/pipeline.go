package filter

import (
	"regexp"
	"strings"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/observability"
)

var (
	ordinalHouse    = regexp.MustCompile(`\d+(st|nd|rd|th)\s+house`)
	planetInOrdinal = regexp.MustCompile(`(jupiter|venus|mars|saturn|sun|moon|mercury)\s+(1st|2nd|3rd|4th|5th|6th|7th|8th|9th|10th|11th|12th)`)
)

func hideChallenging(e *domain.Event, _ Context) bool {
	return !(hasWarning(e) || e.Score < 4 || e.Type == domain.EventChallenging)
}

func combosOnly(e *domain.Event, _ Context) bool {
	return strings.Contains(e.Title, "&")
}

// methodFilters trust the recorded timing method and fall back to keywords for
// hand-written events.
var methodFilters = map[domain.TimingMethod]Predicate{
	domain.MethodHouses: func(e *domain.Event, _ Context) bool {
		if e.TimingMethod == domain.MethodHouses {
			return true
		}
		c := content(e)
		return strings.Contains(c, "house") || ordinalHouse.MatchString(c) || planetInOrdinal.MatchString(c)
	},
	domain.MethodAspects: func(e *domain.Event, _ Context) bool {
		if e.TimingMethod == domain.MethodAspects {
			return true
		}
		return containsAny(content(e), "trine", "sextile", "conjunction", "square", "opposition", "aspect")
	},
	domain.MethodElectional: func(e *domain.Event, _ Context) bool {
		if e.TimingMethod == domain.MethodElectional {
			return true
		}
		c := content(e)
		return containsAny(c, "electional", "traditional") || (e.Score >= 7 && !strings.Contains(c, "house"))
	},
}

// Pipeline is the AND of every active filter in a State.
type Pipeline struct {
	ctx   Context
	preds []Predicate
}

// New compiles a validated state. Dimensions left at "all" contribute nothing.
func New(s State, ctx Context) *Pipeline {
	p := &Pipeline{ctx: ctx}
	if s.HideChallenging {
		p.preds = append(p.preds, hideChallenging)
	}
	if s.CombosOnly {
		p.preds = append(p.preds, combosOnly)
	}
	if pred, ok := methodFilters[s.Method]; ok {
		p.preds = append(p.preds, pred)
	}
	for _, d := range dimensions {
		if pred, ok := d.options[*d.field(&s)]; ok {
			p.preds = append(p.preds, pred)
		}
	}
	return p
}

// Empty reports a pipeline with no active filters.
func (p *Pipeline) Empty() bool {
	return len(p.preds) == 0
}

// Match applies the active predicates in order, stopping at the first failure.
func (p *Pipeline) Match(e *domain.Event) bool {
	for _, pred := range p.preds {
		if !pred(e, p.ctx) {
			return false
		}
	}
	return true
}

// Apply filters a collection. With no active filters the input is returned as is.
func (p *Pipeline) Apply(events []*domain.Event) []*domain.Event {
	observability.RecordFilterEvaluation("collection")
	if p.Empty() {
		return events
	}
	out := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if p.Match(e) {
			out = append(out, e)
		}
	}
	return out
}

// ApplyDay filters the events dated on day.
func (p *Pipeline) ApplyDay(events []*domain.Event, day time.Time) []*domain.Event {
	observability.RecordFilterEvaluation("day")
	date := day.Format(domain.DateLayout)
	out := make([]*domain.Event, 0)
	for _, e := range events {
		if e.Date == date && p.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
