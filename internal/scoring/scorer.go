// Package scoring turns aspects, dignities and priorities into event scores and classifications.
package scoring

import (
	"math"
	"strings"

	"electional-engine/internal/dignity"
	"electional-engine/internal/domain"
)

// Band is the display band of a score.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandLower     Band = "lower"
)

// BandOf maps a score onto the UI color bands.
func BandOf(score int) Band {
	switch {
	case score >= 8:
		return BandExcellent
	case score >= 6:
		return BandGood
	default:
		return BandLower
	}
}

// Classify maps a score onto an event type.
func Classify(score int) domain.EventType {
	switch {
	case score < 3:
		return domain.EventChallenging
	case score < 6:
		return domain.EventNeutral
	default:
		return domain.EventBenefic
	}
}

const (
	baseScore         = 5.0
	harmoniousWeight  = 1.0
	challengeWeight   = 1.2
	conjunctionWeight = 0.4
	priorityBoost     = 0.5
	dignityWeight     = 0.6
)

// Input is everything the event scorer looks at.
type Input struct {
	Aspects    []domain.Aspect
	Planets    []domain.PlanetPosition
	Priorities []domain.Priority
}

// Result is a scored classification.
type Result struct {
	Raw   float64 // unclamped sum
	Score int     // [0,10]
	Type  domain.EventType
	Band  Band
}

// Score is a pure function of its input. Harmonious aspects add and challenging
// aspects subtract, each scaled by strength/100 and boosted when a body is
// favored by a selected priority. Dignities are layered on top.
func Score(in Input) Result {
	raw := baseScore

	for _, a := range in.Aspects {
		w := float64(a.Strength) / 100
		boost := 1.0
		if relevantToAny(in.Priorities, a.BodyA) || relevantToAny(in.Priorities, a.BodyB) {
			boost += priorityBoost
		}

		switch a.Nature {
		case domain.NatureHarmonious:
			raw += harmoniousWeight * w * boost
		case domain.NatureChallenging:
			raw -= challengeWeight * w * boost
		default:
			raw += conjunctionWeight * w * boost * conjunctionTone(a)
		}
	}

	for _, p := range in.Planets {
		delta := dignity.OfPosition(p).Multiplier() - 1
		if delta == 0 {
			continue
		}
		w := dignityWeight
		if relevantToAny(in.Priorities, p.Body) {
			w *= 1 + priorityBoost
		}
		raw += delta * w
	}

	score := clampScore(int(math.Round(raw)))
	return Result{
		Raw:   raw,
		Score: score,
		Type:  Classify(score),
		Band:  BandOf(score),
	}
}

// WarningMark prefixes the titles of challenging configurations.
const WarningMark = "⚠️"

// ScoreEvent scores an event's chart. A title carrying WarningMark keeps the
// event challenging whatever its score.
func ScoreEvent(in Input, title string) Result {
	res := Score(in)
	if strings.Contains(title, WarningMark) {
		res.Type = domain.EventChallenging
	}
	return res
}

// conjunctionTone makes conjunctions with malefics count against the score.
func conjunctionTone(a domain.Aspect) float64 {
	if isMalefic(a.BodyA) || isMalefic(a.BodyB) {
		return -1
	}
	return 1
}

func isMalefic(b domain.Body) bool {
	return b == domain.Mars || b == domain.Saturn || b == domain.Pluto
}

func relevantToAny(priorities []domain.Priority, b domain.Body) bool {
	for _, p := range priorities {
		if c, ok := criteria[p]; ok && c.IsFavorablePlanet(b) {
			return true
		}
	}
	return false
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
