package filter

import (
	"strings"

	"electional-engine/internal/astrocontext"
	"electional-engine/internal/domain"
)

func phaseIs(match func(domain.MoonPhase) bool) Predicate {
	return func(e *domain.Event, ctx Context) bool {
		p, ok := ctx.phase(e)
		return ok && match(p)
	}
}

// The waxing and waning options exclude the new and full phases themselves.
var moonPhaseOptions = map[string]Predicate{
	"waxing": phaseIs(func(p domain.MoonPhase) bool { return p.IsWaxing() && p != domain.PhaseNew }),
	"new":    phaseIs(func(p domain.MoonPhase) bool { return p == domain.PhaseNew }),
	"full":   phaseIs(func(p domain.MoonPhase) bool { return p == domain.PhaseFull }),
	"waning": phaseIs(func(p domain.MoonPhase) bool { return p.IsWaning() }),
}

var dignityOptions = map[string]Predicate{
	"exalted": func(e *domain.Event, _ Context) bool {
		c := content(e)
		return strings.Contains(c, "exalt") || (strings.Contains(c, "dignified") && !strings.Contains(c, "weak"))
	},
	"no_debility": func(e *domain.Event, _ Context) bool {
		c := content(e)
		debility := containsAny(c, "debil", " fall", "weakened", "detriment") ||
			(strings.Contains(c, warning) && containsAny(c, "mars", "saturn"))
		return !debility
	},
}

func marsSaturnMentioned(c string) bool {
	if strings.Contains(c, "mars") && strings.Contains(c, "saturn") {
		return true
	}
	if containsAny(c, "mars-saturn", "mars & saturn") {
		return true
	}
	hard := containsAny(c, "square", "opposition")
	return strings.Contains(c, warning) && hard && containsAny(c, "mars", "saturn")
}

var maleficOptions = map[string]Predicate{
	"no_mars_saturn": func(e *domain.Event, _ Context) bool {
		return !marsSaturnMentioned(content(e))
	},
	"soft_aspects": func(e *domain.Event, _ Context) bool {
		c := content(e)
		soft := containsAny(c, "trine", "sextile") || (strings.Contains(c, "conjunction") && !strings.Contains(c, warning))
		hard := containsAny(c, "square", "opposition", warning)
		return soft || !hard
	},
}

func scoreAtLeast(n int) Predicate {
	return func(e *domain.Event, _ Context) bool { return e.Score >= n }
}

var scoreOptions = map[string]Predicate{
	"8_plus": scoreAtLeast(8),
	"6_plus": scoreAtLeast(6),
}

// electionalReady trusts the structured summary, then falls back to the method and keywords.
var electionalReady = Chain{Tiers: []Tier{
	{TierElectional, func(e *domain.Event, _ Context) (bool, bool) {
		if e.ElectionalData == nil {
			return false, false
		}
		return e.ElectionalData.ElectionalReady && e.Score >= 6, true
	}},
	{TierKeywords, func(e *domain.Event, _ Context) (bool, bool) {
		if e.Score < 6 {
			return false, true
		}
		c := content(e)
		return e.TimingMethod == domain.MethodElectional ||
			containsAny(c, "electional", "traditional") ||
			(!strings.Contains(c, warning) && e.Score >= 7), true
	}},
}}

var beneficsAngular = Chain{Tiers: []Tier{
	{TierElectional, func(e *domain.Event, _ Context) (bool, bool) {
		if e.ElectionalData == nil || !e.ElectionalData.BeneficsAngular {
			return false, false
		}
		return true, true
	}},
	{TierKeywords, func(e *domain.Event, _ Context) (bool, bool) {
		c := content(e)
		benefic := containsAny(c, "venus", "jupiter")
		angular := containsAny(c, "1st", "4th", "7th", "10th")
		return (benefic && angular) || strings.Contains(c, "angular"), true
	}},
}}

var electionalOptions = map[string]Predicate{
	"ready":            electionalReady.Predicate(),
	"benefics_angular": beneficsAngular.Predicate(),
}

var (
	jupiterFavoredWords = []string{"communication", "transportation", "social media", "internet", "gemini", "air sign"}
	saturnSectorWords   = []string{"medical", "pharma", "health", "virgo", "pisces"}
)

var jupiterSectorOptions = map[string]Predicate{
	"current_favored": keywords(jupiterFavoredWords...),
	"avoid_saturn":    not(keywords(saturnSectorWords...)),
}

// Jupiter-Pluto aspects are out of orb until the next conjunction cycle, so the
// magic formula matches nothing.
var magicFormulaOptions = map[string]Predicate{
	"sun_jupiter_pluto": never,
	"jupiter_pluto":     never,
}

// voidMention and declinationMention back the void-of-course options.
func voidMention(c string) bool {
	return containsAny(c, "void", "voc")
}

func declinationMention(c string) bool {
	return containsAny(c, "declination", "parallel")
}

var voidMoonOptions = map[string]Predicate{
	"avoid_void": func(e *domain.Event, _ Context) bool {
		c := content(e)
		return !voidMention(c) && !strings.Contains(c, "no aspects")
	},
	"allow_declination": func(e *domain.Event, _ Context) bool {
		c := content(e)
		return !voidMention(c) || declinationMention(c)
	},
}

var ingressOptions = map[string]Predicate{
	"three_week_window": keywords("ingress", "enters", "changes sign", "3-week", "window"),
	"exact_ingress":     keywords("exact ingress", "enters at", "exact"),
}

var economicCycleOptions = map[string]Predicate{
	"expansion": func(e *domain.Event, _ Context) bool {
		c := content(e)
		return containsAny(c, "expansion", "growth", "bull market") ||
			(strings.Contains(c, "jupiter") && strings.Contains(c, "trine")) ||
			e.Score >= 7
	},
	"consolidation": func(e *domain.Event, _ Context) bool {
		c := content(e)
		return containsAny(c, "consolidation", "contraction", "bear market") ||
			(strings.Contains(c, "saturn") && strings.Contains(c, "square")) ||
			e.Score <= 5
	},
}

// Moon sign selections for everyday electional use.
var (
	hairGrowthSigns = []domain.Sign{domain.Taurus, domain.Cancer, domain.Scorpio, domain.Pisces}
	hairTrimSigns   = []domain.Sign{domain.Virgo, domain.Capricorn}
	mutableSigns    = []domain.Sign{domain.Gemini, domain.Virgo, domain.Sagittarius, domain.Pisces}
	fixedSigns      = []domain.Sign{domain.Taurus, domain.Leo, domain.Scorpio, domain.Aquarius}
	creativeSigns   = []domain.Sign{domain.Leo, domain.Libra, domain.Pisces}
	fortunateSigns  = []domain.Sign{domain.Taurus, domain.Cancer, domain.Sagittarius}
)

func moonSign(e *domain.Event) (domain.Sign, bool) {
	moon, ok := e.ChartData.Planet(domain.Moon)
	if !ok || moon.Sign == "" {
		return "", false
	}
	return moon.Sign, true
}

func moonIn(signs []domain.Sign, phase func(domain.MoonPhase) bool) Predicate {
	return func(e *domain.Event, ctx Context) bool {
		s, ok := moonSign(e)
		if !ok {
			return false
		}
		in := false
		for _, v := range signs {
			if v == s {
				in = true
				break
			}
		}
		if !in {
			return false
		}
		if phase == nil {
			return true
		}
		p, ok := ctx.phase(e)
		return ok && phase(p)
	}
}

// moonNotVoid uses the attached chart when present, else the description.
var moonNotVoid = Chain{
	Tiers: []Tier{
		{TierChart, func(e *domain.Event, _ Context) (bool, bool) {
			if _, ok := e.ChartData.Planet(domain.Moon); !ok {
				return false, false
			}
			return !astrocontext.VoidMoon(e.ChartData).Void, true
		}},
		{TierKeywords, func(e *domain.Event, _ Context) (bool, bool) {
			return !voidMention(content(e)), true
		}},
	},
}

var moonSignOptions = map[string]Predicate{
	"haircut_growth":      moonIn(hairGrowthSigns, func(p domain.MoonPhase) bool { return p.IsWaxing() }),
	"haircut_maintenance": moonIn(hairTrimSigns, func(p domain.MoonPhase) bool { return p.IsWaning() }),
	"travel_flexible":     moonIn(mutableSigns, nil),
	"travel_stable":       moonIn(fixedSigns, nil),
	"creativity":          moonIn(creativeSigns, nil),
	"luck_success":        moonIn(fortunateSigns, nil),
	"avoid_void":          moonNotVoid.Predicate(),
}
