// Package dignity classifies planetary strength by sign and maps aspects to interpretation text.
package dignity

import "electional-engine/internal/domain"

// Dignity is a planet's classified strength in a sign.
type Dignity string

const (
	Rulership  Dignity = "rulership"
	Exaltation Dignity = "exaltation"
	Detriment  Dignity = "detriment"
	Fall       Dignity = "fall"
	Neutral    Dignity = "neutral"
)

// All lists the five dignity categories.
var All = []Dignity{Rulership, Exaltation, Detriment, Fall, Neutral}

// String returns the string representation of Dignity.
func (d Dignity) String() string {
	return string(d)
}

// IsStrong reports rulership or exaltation.
func (d Dignity) IsStrong() bool {
	return d == Rulership || d == Exaltation
}

// IsWeak reports detriment or fall.
func (d Dignity) IsWeak() bool {
	return d == Detriment || d == Fall
}

// Multiplier is the scoring weight applied for the dignity.
func (d Dignity) Multiplier() float64 {
	switch d {
	case Rulership:
		return 1.5
	case Exaltation:
		return 1.3
	case Detriment:
		return 0.7
	case Fall:
		return 0.5
	default:
		return 1.0
	}
}

type entry struct {
	rulership  []domain.Sign
	exaltation domain.Sign
	detriment  []domain.Sign
	fall       domain.Sign
}

// table follows traditional rulerships with modern rulers for the outer planets.
var table = map[domain.Body]entry{
	domain.Sun:     {[]domain.Sign{domain.Leo}, domain.Aries, []domain.Sign{domain.Aquarius}, domain.Libra},
	domain.Moon:    {[]domain.Sign{domain.Cancer}, domain.Taurus, []domain.Sign{domain.Capricorn}, domain.Scorpio},
	domain.Mercury: {[]domain.Sign{domain.Gemini, domain.Virgo}, domain.Virgo, []domain.Sign{domain.Sagittarius, domain.Pisces}, domain.Pisces},
	domain.Venus:   {[]domain.Sign{domain.Taurus, domain.Libra}, domain.Pisces, []domain.Sign{domain.Scorpio, domain.Aries}, domain.Virgo},
	domain.Mars:    {[]domain.Sign{domain.Aries, domain.Scorpio}, domain.Capricorn, []domain.Sign{domain.Libra, domain.Taurus}, domain.Cancer},
	domain.Jupiter: {[]domain.Sign{domain.Sagittarius, domain.Pisces}, domain.Cancer, []domain.Sign{domain.Gemini, domain.Virgo}, domain.Capricorn},
	domain.Saturn:  {[]domain.Sign{domain.Capricorn, domain.Aquarius}, domain.Libra, []domain.Sign{domain.Cancer, domain.Leo}, domain.Aries},
	domain.Uranus:  {[]domain.Sign{domain.Aquarius}, domain.Scorpio, []domain.Sign{domain.Leo}, domain.Taurus},
	domain.Neptune: {[]domain.Sign{domain.Pisces}, domain.Cancer, []domain.Sign{domain.Virgo}, domain.Capricorn},
	domain.Pluto:   {[]domain.Sign{domain.Scorpio}, domain.Aries, []domain.Sign{domain.Taurus}, domain.Libra},
}

// Of returns the dignity of a planet in a sign. It is total: unknown inputs resolve to Neutral.
// When a sign appears in more than one category (Mercury in Virgo, Mercury/Neptune in Pisces),
// the first match in rulership, exaltation, detriment, fall order wins.
func Of(planet domain.Body, sign domain.Sign) Dignity {
	e, ok := table[planet]
	if !ok {
		return Neutral
	}
	for _, s := range e.rulership {
		if s == sign {
			return Rulership
		}
	}
	if e.exaltation == sign {
		return Exaltation
	}
	for _, s := range e.detriment {
		if s == sign {
			return Detriment
		}
	}
	if e.fall == sign {
		return Fall
	}
	return Neutral
}

// OfPosition is Of applied to a chart position.
func OfPosition(p domain.PlanetPosition) Dignity {
	return Of(p.Body, p.Sign)
}

// Label is the short adjective used in generated titles ("exalted", "weakened").
func (d Dignity) Label() string {
	switch d {
	case Rulership:
		return "dignified"
	case Exaltation:
		return "exalted"
	case Detriment:
		return "weakened"
	case Fall:
		return "debilitated"
	default:
		return ""
	}
}
