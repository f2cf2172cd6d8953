package generator

import (
	"sort"
	"time"

	"electional-engine/internal/aspects"
	"electional-engine/internal/domain"
	"electional-engine/internal/ephemeris"
	"electional-engine/internal/observability"
	"electional-engine/internal/scoring"
)

// hoursPerDay is the scan grid, one instant per hour from 00:00.
const hoursPerDay = 24

// candidate is one (instant, method) pair that cleared its method threshold
// and the minimum event score. raw is the method analyzer's value; score and
// rank come from the event scorer.
type candidate struct {
	at      time.Time
	method  domain.TimingMethod
	raw     float64
	score   int
	rank    float64
	chart   *domain.ChartSnapshot
	context domain.AstronomicalContext
}

func (c candidate) eventInput(priorities []domain.Priority) scoring.Input {
	return scoring.Input{
		Aspects:    c.chart.Aspects,
		Planets:    c.chart.Planets,
		Priorities: priorities,
	}
}

func (c candidate) scoringChart() scoring.Chart {
	return scoring.Chart{
		Planets:   c.chart.Planets,
		Aspects:   c.chart.Aspects,
		MoonPhase: c.context.MoonPhase,
	}
}

// scanDay evaluates every hour of day with every method and returns the events
// built from the best candidates.
func (g *Generator) scanDay(day time.Time, req Request, result *RunResult) []*domain.Event {
	var found []candidate
	for hour := 0; hour < hoursPerDay; hour++ {
		at := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
		chart := g.chartAt(at, *req.Location)
		astro := g.context.Evaluate(at)
		sc := scoring.Chart{Planets: chart.Planets, Aspects: chart.Aspects, MoonPhase: astro.MoonPhase}
		event := scoring.Score(scoring.Input{Aspects: chart.Aspects, Planets: chart.Planets, Priorities: req.Priorities})

		for _, m := range domain.ScanMethods {
			result.Calculations++
			raw := scoring.Analyze(m, sc, req.Priorities)
			if raw < g.thresholds[m] || event.Score < g.minScore {
				continue
			}
			observability.RecordCandidate(string(m))
			found = append(found, candidate{
				at:      at,
				method:  m,
				raw:     raw,
				score:   event.Score,
				rank:    event.Raw,
				chart:   chart,
				context: astro,
			})
		}
	}
	result.CandidatesFound += len(found)

	picked := selectBest(found, g.maxPerDay)
	events := make([]*domain.Event, 0, len(picked))
	for i, c := range picked {
		events = append(events, buildEvent(c, req, i))
	}
	return events
}

// chartAt builds the chart of an instant with its strongest aspects attached.
// Aspects are found among the tracked bodies of the chart so the source is
// queried once per body.
func (g *Generator) chartAt(at time.Time, loc domain.Location) *domain.ChartSnapshot {
	chart := g.adapter.Chart(at, loc, domain.AllBodies)
	for _, b := range chart.Skipped {
		observability.RecordBodySkipped(b.String())
	}

	tracked := make([]ephemeris.Position, 0, len(domain.TrackedBodies))
	for _, b := range domain.TrackedBodies {
		if p, ok := chart.Planet(b); ok {
			tracked = append(tracked, ephemeris.Position{Body: p.Body, Longitude: p.Longitude, Speed: p.Speed})
		}
	}
	observability.RecordAspectScan()
	chart.Aspects = aspects.Top(aspects.Find(tracked, at), aspects.DefaultLimit)
	return chart
}

// scoreDay computes the calendar heat of a day from its noon aspects and dignities.
func (g *Generator) scoreDay(day time.Time, req Request) *domain.DayScore {
	noon := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	planets := g.adapter.Chart(noon, *req.Location, domain.AllBodies).Planets

	ds := scoring.ScoreDay(day, g.detector.Daily(day), planets)
	ds.UserID = req.UserID
	ds.ComputedAt = g.now()
	observability.RecordDayScore()
	return &ds
}

func methodIndex(m domain.TimingMethod) int {
	for i, v := range domain.ScanMethods {
		if v == m {
			return i
		}
	}
	return len(domain.ScanMethods)
}

// selectBest keeps the n highest-scoring candidates. Ties go to the higher
// unrounded event score, then the earlier instant, then the method scanned first.
func selectBest(found []candidate, n int) []candidate {
	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.rank != b.rank {
			return a.rank > b.rank
		}
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		return methodIndex(a.method) < methodIndex(b.method)
	})
	if len(found) > n {
		found = found[:n]
	}
	return found
}
