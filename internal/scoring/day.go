package scoring

import (
	"time"

	"electional-engine/internal/domain"
)

// ScoreDay applies the event scorer to a day's top aspects and noon dignities.
func ScoreDay(date time.Time, aspects []domain.Aspect, planets []domain.PlanetPosition) domain.DayScore {
	res := Score(Input{Aspects: aspects, Planets: planets})

	fallback := false
	for _, a := range aspects {
		if a.Fallback {
			fallback = true
			break
		}
	}

	return domain.DayScore{
		Date:        time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		Score:       res.Score,
		Type:        res.Type,
		Band:        string(res.Band),
		AspectCount: len(aspects),
		Fallback:    fallback,
	}
}
