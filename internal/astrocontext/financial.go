package astrocontext

import (
	"math"
	"strings"

	"electional-engine/internal/domain"
)

// These heuristics are keyword and position pattern matches kept as documented
// behavior. They make no claim to financial validity.

var jupiterSectors = map[domain.Sign][]string{
	domain.Aries:       {"Defense", "Military", "Sports", "Energy", "Mining", "Steel"},
	domain.Taurus:      {"Banking", "Real Estate", "Agriculture", "Food", "Luxury Goods", "Art"},
	domain.Gemini:      {"Communication", "Transportation", "Social Media", "Internet", "Publishing", "Education"},
	domain.Cancer:      {"Housing", "Real Estate", "Food Services", "Healthcare", "Family Services"},
	domain.Leo:         {"Entertainment", "Gaming", "Luxury", "Gold", "Children Products", "Performance"},
	domain.Virgo:       {"Healthcare", "Pharmaceuticals", "Analytics", "Service Industry", "Agriculture"},
	domain.Libra:       {"Legal Services", "Beauty", "Art", "Partnerships", "Diplomacy", "Fashion"},
	domain.Scorpio:     {"Insurance", "Investigation", "Transformation", "Mining", "Waste Management"},
	domain.Sagittarius: {"International Trade", "Higher Education", "Publishing", "Travel", "Philosophy"},
	domain.Capricorn:   {"Government", "Corporate", "Infrastructure", "Time-based Services"},
	domain.Aquarius:    {"Technology", "Innovation", "Networking", "Humanitarian", "Revolutionary Tech"},
	domain.Pisces:      {"Spirituality", "Film", "Music", "Charity", "Oil", "Chemicals", "Beverages"},
}

// saturnRestricts maps Saturn's sign to the sign whose sectors it restricts.
var saturnRestricts = map[domain.Sign]domain.Sign{
	domain.Aries:       domain.Capricorn,
	domain.Taurus:      domain.Aquarius,
	domain.Gemini:      domain.Pisces,
	domain.Cancer:      domain.Aries,
	domain.Leo:         domain.Taurus,
	domain.Virgo:       domain.Gemini,
	domain.Libra:       domain.Cancer,
	domain.Scorpio:     domain.Leo,
	domain.Sagittarius: domain.Virgo,
	domain.Capricorn:   domain.Libra,
	domain.Aquarius:    domain.Scorpio,
	domain.Pisces:      domain.Sagittarius,
}

// sectorAliases are extra keywords that count as touching a sector.
var sectorAliases = map[string][]string{
	"Communication":  {"3rd", "mercury"},
	"Real Estate":    {"4th", "2nd"},
	"Entertainment":  {"5th", "venus"},
	"Healthcare":     {"6th", "virgo"},
	"Transportation": {"travel"},
}

// JupiterSectors returns the sectors favored while Jupiter is in sign.
func JupiterSectors(sign domain.Sign) []string {
	return jupiterSectors[sign]
}

// SaturnRestrictedSectors returns the sectors restricted while Saturn is in sign.
func SaturnRestrictedSectors(sign domain.Sign) []string {
	restricted, ok := saturnRestricts[sign]
	if !ok {
		return nil
	}
	return jupiterSectors[restricted]
}

func mentionsSector(content, sector string) bool {
	if strings.Contains(content, strings.ToLower(sector)) {
		return true
	}
	for _, alias := range sectorAliases[sector] {
		if strings.Contains(content, alias) {
			return true
		}
	}
	return false
}

// FavoredSector returns the first Jupiter-favored sector mentioned in text.
func FavoredSector(chart *domain.ChartSnapshot, text string) (string, bool) {
	jupiter, ok := chart.Planet(domain.Jupiter)
	if !ok {
		return "", false
	}
	content := strings.ToLower(text)
	for _, sector := range JupiterSectors(jupiter.Sign) {
		if mentionsSector(content, sector) {
			return sector, true
		}
	}
	return "", false
}

// SaturnRestricted reports whether text mentions a sector Saturn currently restricts.
func SaturnRestricted(chart *domain.ChartSnapshot, text string) bool {
	saturn, ok := chart.Planet(domain.Saturn)
	if !ok {
		return false
	}
	content := strings.ToLower(text)
	for _, sector := range SaturnRestrictedSectors(saturn.Sign) {
		if strings.Contains(content, strings.ToLower(sector)) {
			return true
		}
	}
	return false
}

// Ingress describes a body close to a sign boundary.
type Ingress struct {
	Body domain.Body
	Days int // approximate days from the boundary, two per degree
}

var ingressBodies = []domain.Body{domain.Jupiter, domain.Saturn, domain.Mars, domain.Venus}

// IngressWindow returns the first of Jupiter, Saturn, Mars and Venus lying
// within 3° of a sign boundary and within three weeks of it.
func IngressWindow(chart *domain.ChartSnapshot) *Ingress {
	for _, b := range ingressBodies {
		p, ok := chart.Planet(b)
		if !ok {
			continue
		}
		deg := domain.DegreeInSign(p.Longitude)

		var dist float64
		switch {
		case deg <= 3:
			dist = deg
		case deg >= 27:
			dist = 30 - deg
		default:
			continue
		}

		days := int(math.Round(dist * 2))
		if days <= 21 {
			return &Ingress{Body: b, Days: days}
		}
	}
	return nil
}

// VoidOfCourse is the Moon's void state at a chart instant.
type VoidOfCourse struct {
	Void               bool
	DeclinationSupport bool
}

// VoidMoon flags a Moon in the last 2° of its sign with no Moon aspect tighter than 1°.
func VoidMoon(chart *domain.ChartSnapshot) VoidOfCourse {
	moon, ok := chart.Planet(domain.Moon)
	if !ok {
		return VoidOfCourse{}
	}

	deg := domain.DegreeInSign(moon.Longitude)
	if 30-deg > 2 {
		return VoidOfCourse{}
	}

	for _, a := range chart.Aspects {
		if a.Involves(domain.Moon) && a.OrbUsed < 1 {
			return VoidOfCourse{}
		}
	}

	return VoidOfCourse{
		Void:               true,
		DeclinationSupport: int(math.Floor(deg))%7 == 0,
	}
}

// EconomicPhase is the heuristic market cycle label.
type EconomicPhase string

const (
	Expansion     EconomicPhase = "expansion"
	Consolidation EconomicPhase = "consolidation"
)

var (
	expansiveJupiter  = []domain.Sign{domain.Aries, domain.Leo, domain.Sagittarius, domain.Gemini, domain.Libra, domain.Aquarius}
	restrictiveSaturn = []domain.Sign{domain.Capricorn, domain.Aquarius, domain.Virgo}
)

func signIn(s domain.Sign, set []domain.Sign) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// EconomicPhaseOf tallies outer planet indicators with the event score as a tiebreaker.
func EconomicPhaseOf(chart *domain.ChartSnapshot, score int) EconomicPhase {
	var expansion, contraction int

	if p, ok := chart.Planet(domain.Jupiter); ok && signIn(p.Sign, expansiveJupiter) {
		expansion++
	}
	if p, ok := chart.Planet(domain.Saturn); ok && signIn(p.Sign, restrictiveSaturn) {
		contraction++
	}
	if p, ok := chart.Planet(domain.Pluto); ok {
		switch p.Sign {
		case domain.Capricorn:
			contraction++
		case domain.Aquarius:
			expansion++
		}
	}
	if score >= 6 {
		expansion++
	}
	if score <= 4 {
		contraction++
	}

	switch {
	case expansion > contraction:
		return Expansion
	case contraction > expansion:
		return Consolidation
	case score >= 5:
		return Expansion
	default:
		return Consolidation
	}
}

// MagicFormula reports Sun, Jupiter and Pluto aspect activity in a chart.
type MagicFormula struct {
	Full               bool
	Partial            bool
	JupiterPlutoOrb    bool
	JupiterPlutoDegree float64 // separation, one decimal
}

// DetectMagicFormula checks the Sun-Jupiter, Jupiter-Pluto and Sun-Pluto pairs.
func DetectMagicFormula(chart *domain.ChartSnapshot) MagicFormula {
	jupiter, okJ := chart.Planet(domain.Jupiter)
	pluto, okP := chart.Planet(domain.Pluto)
	if !okJ || !okP {
		return MagicFormula{}
	}

	has := func(a, b domain.Body) bool {
		for _, asp := range chart.Aspects {
			if asp.Involves(a) && asp.Involves(b) && asp.OrbUsed <= 8 {
				return true
			}
		}
		return false
	}

	sunJupiter := has(domain.Sun, domain.Jupiter)
	jupiterPluto := has(domain.Jupiter, domain.Pluto)
	sunPluto := has(domain.Sun, domain.Pluto)

	return MagicFormula{
		Full:               sunJupiter && jupiterPluto && sunPluto,
		Partial:            jupiterPluto && (sunJupiter || sunPluto),
		JupiterPlutoOrb:    jupiterPluto,
		JupiterPlutoDegree: math.Round(domain.Separation(jupiter.Longitude, pluto.Longitude)*10) / 10,
	}
}
