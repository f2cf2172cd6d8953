package filter

import (
	"strings"

	"electional-engine/internal/domain"
)

// Mercury status tiers, highest priority first.
const (
	TierElectional = "electionalData"
	TierKeywords   = "keywords"
	TierChart      = "chartData"
)

type statusTier struct {
	name    string
	resolve func(e *domain.Event) (domain.MercuryStatus, bool)
}

var mercuryTiers = []statusTier{
	{TierElectional, func(e *domain.Event) (domain.MercuryStatus, bool) {
		if e.ElectionalData == nil || e.ElectionalData.MercuryStatus == "" {
			return "", false
		}
		return e.ElectionalData.MercuryStatus, true
	}},
	{TierKeywords, func(e *domain.Event) (domain.MercuryStatus, bool) {
		if retrogradeMentioned(content(e)) {
			return domain.MercuryRetrograde, true
		}
		return "", false
	}},
	{TierChart, func(e *domain.Event) (domain.MercuryStatus, bool) {
		mercury, ok := e.ChartData.Planet(domain.Mercury)
		if !ok {
			return "", false
		}
		if mercury.Retrograde {
			return domain.MercuryRetrograde, true
		}
		return domain.MercuryDirect, true
	}},
}

// retrogradeMentioned matches generated and hand-written retrograde markers.
// The leading space in " rx" avoids matching inside words.
func retrogradeMentioned(c string) bool {
	if containsAny(c, "retrograde", "mercury rx", " rx", "r)", "℞") {
		return true
	}
	return strings.Contains(c, warning) && strings.Contains(c, "mercury")
}

// MercuryStatusOf resolves the Mercury state of an event and the tier that decided
// it. An explicit electional status wins even when it is unknown; with no
// evidence at all Mercury is assumed direct.
func MercuryStatusOf(e *domain.Event) (domain.MercuryStatus, string) {
	for _, t := range mercuryTiers {
		if s, ok := t.resolve(e); ok {
			return s, t.name
		}
	}
	return domain.MercuryDirect, DefaultTier
}

func mercuryIs(want domain.MercuryStatus) Predicate {
	return func(e *domain.Event, _ Context) bool {
		s, _ := MercuryStatusOf(e)
		return s == want
	}
}

var mercuryOptions = map[string]Predicate{
	"direct":     mercuryIs(domain.MercuryDirect),
	"retrograde": mercuryIs(domain.MercuryRetrograde),
}
