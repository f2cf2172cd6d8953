package dignity

import (
	"fmt"

	"electional-engine/internal/domain"
)

// conjunctionPairs holds pair-specific conjunction texts keyed by "A-B" display names.
var conjunctionPairs = map[string]string{
	"Sun-Moon":        "New moon energy - fresh starts and emotional alignment",
	"Sun-Mercury":     "Clear thinking and confident communication",
	"Sun-Venus":       "Creative self-expression and social magnetism",
	"Sun-Mars":        "Dynamic energy and leadership potential",
	"Sun-Jupiter":     "Optimistic confidence and expanded opportunities",
	"Sun-Saturn":      "Disciplined focus and structured achievement",
	"Moon-Mercury":    "Intuitive communication and emotional intelligence",
	"Moon-Venus":      "Emotional harmony and social connections",
	"Moon-Mars":       "Emotional drive and passionate responses",
	"Moon-Jupiter":    "Emotional expansion and generous feelings",
	"Moon-Saturn":     "Emotional maturity and practical wisdom",
	"Mercury-Venus":   "Charming communication and diplomatic skills",
	"Mercury-Mars":    "Quick thinking and decisive communication",
	"Mercury-Jupiter": "Expansive thinking and optimistic ideas",
	"Mercury-Saturn":  "Practical thinking and structured communication",
	"Venus-Mars":      "Passionate attraction and creative energy",
	"Venus-Jupiter":   "Social harmony and generous love",
	"Venus-Saturn":    "Committed relationships and lasting beauty",
	"Mars-Jupiter":    "Confident action and enthusiastic energy",
	"Mars-Saturn":     "Disciplined action and controlled energy",
	"Jupiter-Saturn":  "Balanced growth and structured expansion",
}

var aspectDefaults = map[domain.AspectType]string{
	domain.Sextile:    "Harmonious energy flow with opportunities for growth and cooperation",
	domain.Square:     "Dynamic tension requiring conscious effort to balance opposing forces",
	domain.Trine:      "Natural flow of positive energy and effortless harmony",
	domain.Opposition: "Need for balance between opposing forces and perspectives",
}

// Interpret returns the interpretation of an aspect between two bodies.
// Lookup order: exact pair, reversed pair, per-type default, generic sentence.
func Interpret(t domain.AspectType, a, b domain.Body) string {
	if t == domain.Conjunction {
		if text, ok := conjunctionPairs[a.Title()+"-"+b.Title()]; ok {
			return text
		}
		if text, ok := conjunctionPairs[b.Title()+"-"+a.Title()]; ok {
			return text
		}
	}
	if text, ok := aspectDefaults[t]; ok {
		return text
	}
	return fmt.Sprintf("%s and %s in %s aspect", a.Title(), b.Title(), t)
}

// Describe returns a one-line reading of a planet's dignity in a sign.
func Describe(planet domain.Body, sign domain.Sign) string {
	d := Of(planet, sign)
	switch d {
	case Rulership:
		return fmt.Sprintf("%s in %s is at home and expresses its nature with full strength", planet.Title(), sign.Title())
	case Exaltation:
		return fmt.Sprintf("%s is exalted in %s, its expression is heightened", planet.Title(), sign.Title())
	case Detriment:
		return fmt.Sprintf("%s in %s works against its nature and needs conscious balance", planet.Title(), sign.Title())
	case Fall:
		return fmt.Sprintf("%s in %s is in fall and its expression is muted", planet.Title(), sign.Title())
	default:
		return fmt.Sprintf("%s in %s is peregrine", planet.Title(), sign.Title())
	}
}
