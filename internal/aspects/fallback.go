package aspects

import (
	"time"

	"electional-engine/internal/domain"
)

type fallbackTemplate struct {
	typ            domain.AspectType
	a, b           domain.Body
	orb            float64
	applying       bool
	exact          domain.ClockTime
	interpretation string
}

var fallbackSet = []fallbackTemplate{
	{domain.Trine, domain.Sun, domain.Jupiter, 0.4, true, domain.NewClockTime(14, 0),
		"Optimistic energy and growth opportunities"},
	{domain.Square, domain.Mars, domain.Saturn, 2.5, false, domain.NewClockTime(10, 0),
		"Tension between action and structure requires patience"},
	{domain.Conjunction, domain.Venus, domain.Mercury, 0.3, true, domain.NewClockTime(18, 0),
		"Communication enhanced by charm and diplomacy"},
}

// Fallback returns the illustrative aspect set for a day, rotated by day of year.
// Every returned aspect has Fallback set.
func Fallback(date time.Time) []domain.Aspect {
	day := date.YearDay()
	out := make([]domain.Aspect, 0, len(fallbackSet))
	for i := 0; i < len(fallbackSet) && i < DefaultLimit; i++ {
		tpl := fallbackSet[(day+i)%len(fallbackSet)]
		def, _ := domain.AspectDefinitionFor(tpl.typ)

		exact := tpl.exact
		text := tpl.interpretation + separatingSuffix
		if tpl.applying {
			text = tpl.interpretation + applyingSuffix
		}

		out = append(out, domain.Aspect{
			Type:           tpl.typ,
			BodyA:          tpl.a,
			BodyB:          tpl.b,
			AngleDelta:     def.Angle + tpl.orb,
			OrbUsed:        tpl.orb,
			Strength:       Strength(tpl.orb, def.Orb),
			Nature:         def.Nature,
			Applying:       tpl.applying,
			ExactTime:      &exact,
			Interpretation: text,
			Fallback:       true,
		})
	}
	return out
}
