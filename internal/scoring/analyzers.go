package scoring

import (
	"math"

	"electional-engine/internal/dignity"
	"electional-engine/internal/domain"
)

// maxMethodScore caps every per-method analyzer. The analyzers carry no
// magic formula bonus; the formula is reported on the daily context instead.
const maxMethodScore = 15.0

var moonPhaseMultiplier = map[domain.MoonPhase]float64{
	domain.PhaseNew:            1.1,
	domain.PhaseWaxingCrescent: 1.4,
	domain.PhaseFirstQuarter:   1.3,
	domain.PhaseWaxingGibbous:  1.2,
	domain.PhaseFull:           0.6,
	domain.PhaseWaningGibbous:  0.8,
	domain.PhaseLastQuarter:    0.7,
	domain.PhaseWaningCrescent: 0.9,
}

// Chart is the per-instant input to the method analyzers.
type Chart struct {
	Planets   []domain.PlanetPosition
	Aspects   []domain.Aspect
	MoonPhase domain.MoonPhase
}

func (c Chart) planet(b domain.Body) (domain.PlanetPosition, bool) {
	for _, p := range c.Planets {
		if p.Body == b {
			return p, true
		}
	}
	return domain.PlanetPosition{}, false
}

// pairDignity is the mean dignity multiplier of an aspect's bodies, 1 when either is missing.
func (c Chart) pairDignity(a domain.Aspect) float64 {
	p1, ok1 := c.planet(a.BodyA)
	p2, ok2 := c.planet(a.BodyB)
	if !ok1 || !ok2 {
		return 1
	}
	return (dignity.OfPosition(p1).Multiplier() + dignity.OfPosition(p2).Multiplier()) / 2
}

// Analyze dispatches to the analyzer of a timing method.
func Analyze(method domain.TimingMethod, chart Chart, priorities []domain.Priority) float64 {
	switch method {
	case domain.MethodAspects:
		return AnalyzeAspects(chart, priorities)
	case domain.MethodElectional:
		return AnalyzeElectional(chart, priorities)
	default:
		return AnalyzeHouses(chart, priorities)
	}
}

// AnalyzeHouses scores favorable planets in favorable houses, favorable aspects
// between favorable planets, challenging aspect penalties and combos.
func AnalyzeHouses(chart Chart, priorities []domain.Priority) float64 {
	total := 0.0
	for _, p := range priorities {
		c, ok := criteria[p]
		if !ok {
			continue
		}
		total += housePlacements(chart, c)
		total += aspectTerms(chart, c, 0.5)
		total += comboTerms(chart, c)
	}
	return math.Min(total, maxMethodScore)
}

// AnalyzeAspects weighs aspects only, favorable ones more heavily than the house analyzer.
func AnalyzeAspects(chart Chart, priorities []domain.Priority) float64 {
	total := 0.0
	for _, p := range priorities {
		c, ok := criteria[p]
		if !ok {
			continue
		}
		total += aspectTerms(chart, c, 0.8*1.8)
	}
	return math.Min(total, maxMethodScore)
}

// AnalyzeElectional scales the house score by moon phase, Mercury direct and dignified benefics.
func AnalyzeElectional(chart Chart, priorities []domain.Priority) float64 {
	base := AnalyzeHouses(chart, priorities)

	moon := 1.0
	if m, ok := moonPhaseMultiplier[chart.MoonPhase]; ok {
		moon = m
	}

	conditions := 1.0
	if mercury, ok := chart.planet(domain.Mercury); ok && !mercury.Retrograde {
		conditions *= 1.2
	}
	if jupiter, ok := chart.planet(domain.Jupiter); ok && dignity.OfPosition(jupiter).IsStrong() {
		conditions *= 1.15
	}
	if venus, ok := chart.planet(domain.Venus); ok && dignity.OfPosition(venus).IsStrong() {
		conditions *= 1.1
	}

	return math.Min(base*moon*conditions, maxMethodScore)
}

func housePlacements(chart Chart, c *Criteria) float64 {
	sum := 0.0
	for _, p := range chart.Planets {
		if p.House == 0 || !c.IsFavorablePlanet(p.Body) || !c.IsFavorableHouse(p.House) {
			continue
		}
		sum += c.PlanetWeightOf(p.Body) * c.HouseWeightOf(p.House) * dignity.OfPosition(p).Multiplier()
	}
	return sum
}

// aspectTerms adds favorable aspects with factor and subtracts challenging ones.
func aspectTerms(chart Chart, c *Criteria, factor float64) float64 {
	sum := 0.0
	for _, a := range chart.Aspects {
		if c.IsFavorableAspect(a.Type) {
			w1, w2 := c.PlanetWeightOf(a.BodyA), c.PlanetWeightOf(a.BodyB)
			if w1 > 0 && w2 > 0 {
				sum += (w1 + w2) * factor * chart.pairDignity(a)
			}
		}
		if c.IsChallengingAspect(a.Type) {
			r1, r2 := c.relevantToChallenge(a.BodyA), c.relevantToChallenge(a.BodyB)
			if r1 || r2 {
				base := 1.5
				if r1 && r2 {
					base = 3.0
				}
				sum -= base * 0.8 * chart.pairDignity(a)
			}
		}
	}
	return sum
}

func comboTerms(chart Chart, c *Criteria) float64 {
	sum := 0.0
	for _, combo := range c.Combos {
		if m, ok := comboMatch(chart, combo); ok {
			sum += combo.Bonus * m
		}
	}
	return sum
}

// comboMatch reports whether all combo planets share the combo house, with their mean dignity multiplier.
func comboMatch(chart Chart, combo Combo) (float64, bool) {
	if len(combo.Planets) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, b := range combo.Planets {
		p, ok := chart.planet(b)
		if !ok || p.House != combo.House {
			return 0, false
		}
		sum += dignity.OfPosition(p).Multiplier()
	}
	return sum / float64(len(combo.Planets)), true
}

// MatchedCombos returns combos of the selected priorities present in the chart.
func MatchedCombos(chart Chart, priorities []domain.Priority) []Combo {
	var out []Combo
	for _, p := range priorities {
		c, ok := criteria[p]
		if !ok {
			continue
		}
		for _, combo := range c.Combos {
			if _, ok := comboMatch(chart, combo); ok {
				out = append(out, combo)
			}
		}
	}
	return out
}

// Describe explains what drove a candidate: the first matching combo, else up to
// two favorable aspects between favored bodies, else a per-method phrase.
func Describe(method domain.TimingMethod, chart Chart, priorities []domain.Priority) string {
	if combos := MatchedCombos(chart, priorities); len(combos) > 0 {
		return combos[0].Description
	}

	var parts []string
	for _, a := range chart.Aspects {
		if len(parts) == 2 {
			break
		}
		if a.Nature == domain.NatureChallenging {
			continue
		}
		for _, p := range priorities {
			c, ok := criteria[p]
			if ok && c.IsFavorablePlanet(a.BodyA) && c.IsFavorablePlanet(a.BodyB) {
				parts = append(parts, string(a.BodyA)+" "+string(a.Type)+" "+string(a.BodyB))
				break
			}
		}
	}
	if len(parts) > 0 {
		out := parts[0]
		for _, p := range parts[1:] {
			out += ", " + p
		}
		return out
	}

	switch method {
	case domain.MethodAspects:
		return "Favorable planetary aspects"
	case domain.MethodElectional:
		return "Electional timing considerations"
	default:
		return "Favorable house placements"
	}
}
