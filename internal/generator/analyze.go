package generator

import (
	"errors"
	"fmt"

	"electional-engine/internal/domain"
	"electional-engine/internal/scoring"
)

// Analyze scores a hand-written event at its own date and time and attaches the
// chart, aspects, positions, time window and electional summary. The event
// stays manual.
func (g *Generator) Analyze(e *domain.Event, loc domain.Location, priorities []domain.Priority) error {
	if g.adapter == nil {
		return errors.New("analyze requires an ephemeris adapter")
	}
	if !loc.IsValid() {
		return ErrNoLocation
	}
	at, err := e.Instant()
	if err != nil {
		return fmt.Errorf("analyze event: %w", err)
	}

	chart := g.chartAt(at, loc)
	res := scoring.ScoreEvent(scoring.Input{
		Aspects:    chart.Aspects,
		Planets:    chart.Planets,
		Priorities: priorities,
	}, e.Title)

	c := candidate{
		at:      at,
		method:  domain.MethodCombined,
		raw:     res.Raw,
		score:   res.Score,
		rank:    res.Raw,
		chart:   chart,
		context: g.context.Evaluate(at),
	}

	e.Score = res.Score
	e.Type = res.Type
	e.Aspects = aspectLabels(chart.Aspects)
	e.PlanetaryPositions = positionLabels(chart.Planets)
	e.ChartData = chart
	e.ElectionalData = electionalData(c)
	e.Priorities = priorityTags(priorities)
	if e.Time != "" {
		clock := domain.NewClockTime(at.Hour(), at.Minute())
		tw := scoring.TimeWindow(clock, e.Score, e.Type)
		e.TimeWindow = &tw
	}
	return nil
}
