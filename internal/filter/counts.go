package filter

import (
	"electional-engine/internal/domain"
	"electional-engine/internal/observability"
)

// Counts holds, for each filter option, how many events would match if that
// option were the only active filter.
type Counts struct {
	MercuryDirect         int `json:"mercuryDirect"`
	MercuryRetrograde     int `json:"mercuryRetrograde"`
	MoonWaxing            int `json:"moonWaxing"`
	MoonNew               int `json:"moonNew"`
	MoonFull              int `json:"moonFull"`
	MoonWaning            int `json:"moonWaning"`
	DignityExalted        int `json:"dignityExalted"`
	DignityNoDebility     int `json:"dignityNoDebility"`
	MaleficAvoid          int `json:"maleficAvoid"`
	MaleficSoft           int `json:"maleficSoft"`
	Score8Plus            int `json:"score8Plus"`
	Score6Plus            int `json:"score6Plus"`
	ElectionalReady       int `json:"electionalReady"`
	ElectionalAngular     int `json:"electionalAngular"`
	JupiterFavored        int `json:"jupiterFavored"`
	JupiterAvoidSaturn    int `json:"jupiterAvoidSaturn"`
	MagicFormulaFull      int `json:"magicFormulaFull"`
	MagicFormulaPartial   int `json:"magicFormulaPartial"`
	VoidMoonAvoid         int `json:"voidMoonAvoid"`
	VoidMoonDeclination   int `json:"voidMoonDeclination"`
	IngressThreeWeek      int `json:"ingressThreeWeek"`
	IngressExact          int `json:"ingressExact"`
	EconomicExpansion     int `json:"economicExpansion"`
	EconomicConsolidation int `json:"economicConsolidation"`
}

// CalculateCounts evaluates every option on its own against the full
// collection. The result does not depend on any current selection.
func CalculateCounts(events []*domain.Event, ctx Context) Counts {
	observability.RecordFilterEvaluation("counts")

	count := func(p Predicate) int {
		n := 0
		for _, e := range events {
			if p(e, ctx) {
				n++
			}
		}
		return n
	}

	return Counts{
		MercuryDirect:         count(mercuryOptions["direct"]),
		MercuryRetrograde:     count(mercuryOptions["retrograde"]),
		MoonWaxing:            count(moonPhaseOptions["waxing"]),
		MoonNew:               count(moonPhaseOptions["new"]),
		MoonFull:              count(moonPhaseOptions["full"]),
		MoonWaning:            count(moonPhaseOptions["waning"]),
		DignityExalted:        count(dignityOptions["exalted"]),
		DignityNoDebility:     count(dignityOptions["no_debility"]),
		MaleficAvoid:          count(maleficOptions["no_mars_saturn"]),
		MaleficSoft:           count(maleficOptions["soft_aspects"]),
		Score8Plus:            count(scoreOptions["8_plus"]),
		Score6Plus:            count(scoreOptions["6_plus"]),
		ElectionalReady:       count(electionalOptions["ready"]),
		ElectionalAngular:     count(electionalOptions["benefics_angular"]),
		JupiterFavored:        count(jupiterSectorOptions["current_favored"]),
		JupiterAvoidSaturn:    count(jupiterSectorOptions["avoid_saturn"]),
		MagicFormulaFull:      0,
		MagicFormulaPartial:   0,
		VoidMoonAvoid:         count(voidMoonOptions["avoid_void"]),
		VoidMoonDeclination:   count(voidMoonOptions["allow_declination"]),
		IngressThreeWeek:      count(ingressOptions["three_week_window"]),
		IngressExact:          count(ingressOptions["exact_ingress"]),
		EconomicExpansion:     count(economicCycleOptions["expansion"]),
		EconomicConsolidation: count(economicCycleOptions["consolidation"]),
	}
}
