package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	eventStore    storage.EventStore
	dayScoreStore storage.DayScoreStore
	runStore      storage.GenerationRunStore
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator. dayScores may be nil.
func NewGenerator(
	events storage.EventStore,
	dayScores storage.DayScoreStore,
	runs storage.GenerationRunStore,
) *Generator {
	return &Generator{
		eventStore:    events,
		dayScoreStore: dayScores,
		runStore:      runs,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces a report for the latest run of a user.
// Returns storage.ErrNotFound if the user has no runs.
func (g *Generator) Generate(ctx context.Context, userID string) (*Report, error) {
	run, err := g.runStore.GetLatest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load latest run: %w", err)
	}

	stored, err := g.eventStore.ListByDateRange(ctx, userID, run.RangeStart, run.RangeEnd)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	var events []*domain.Event
	for _, e := range stored {
		if e.IsGenerated {
			events = append(events, e)
		}
	}

	var scores []*domain.DayScore
	if g.dayScoreStore != nil {
		scores, err = g.dayScoreStore.GetByRange(ctx, userID, run.RangeStart, run.RangeEnd)
		if err != nil {
			return nil, fmt.Errorf("load day scores: %w", err)
		}
	}

	return &Report{
		GeneratedAt: g.now(),
		UserID:      userID,
		Run: RunSection{
			ID:          run.ID,
			State:       run.State,
			Priorities:  run.Priorities,
			RangeStart:  run.RangeStart,
			RangeEnd:    run.RangeEnd,
			EventsFound: run.EventsFound,
			EventsSaved: run.EventsSaved,
			Warning:     run.Warning,
		},
		Summary: summarize(events),
		Methods: methodRows(events),
		Days:    dayRows(run.RangeStart, run.RangeEnd, scores, events),
		Events:  eventRows(events),
	}, nil
}

func summarize(events []*domain.Event) Summary {
	var s Summary
	total := 0
	for _, e := range events {
		s.TotalEvents++
		total += e.Score
		if e.Score > s.BestScore {
			s.BestScore = e.Score
		}
		switch e.Type {
		case domain.EventBenefic:
			s.Benefic++
		case domain.EventChallenging:
			s.Challenging++
		default:
			s.Neutral++
		}
		if e.IsBookmarked {
			s.Bookmarked++
		}
		switch e.State {
		case domain.StateLocalOnly:
			s.LocalOnly++
		case domain.StateConfirmed, "":
			s.Confirmed++
		}
	}
	if s.TotalEvents > 0 {
		s.MeanScore = float64(total) / float64(s.TotalEvents)
	}
	return s
}

// methodRows lists every scan method, in scan order, even without events.
func methodRows(events []*domain.Event) []MethodRow {
	rows := make([]MethodRow, len(domain.ScanMethods))
	index := make(map[domain.TimingMethod]int, len(domain.ScanMethods))
	for i, m := range domain.ScanMethods {
		rows[i] = MethodRow{Method: string(m)}
		index[m] = i
	}

	sums := make([]int, len(rows))
	for _, e := range events {
		i, ok := index[e.TimingMethod]
		if !ok {
			continue
		}
		rows[i].Events++
		sums[i] += e.Score
		if e.Score > rows[i].BestScore {
			rows[i].BestScore = e.Score
		}
	}
	for i := range rows {
		if rows[i].Events > 0 {
			rows[i].MeanScore = float64(sums[i]) / float64(rows[i].Events)
		}
	}
	return rows
}

// dayRows builds one row per day of [start, end]. Days without a stored score
// keep the zero heat.
func dayRows(start, end time.Time, scores []*domain.DayScore, events []*domain.Event) []DayRow {
	byDate := make(map[string]*domain.DayScore, len(scores))
	for _, s := range scores {
		byDate[s.Date.Format(domain.DateLayout)] = s
	}

	type dayEvents struct {
		count int
		top   *domain.Event
	}
	perDay := make(map[string]*dayEvents)
	for _, e := range events {
		d := perDay[e.Date]
		if d == nil {
			d = &dayEvents{}
			perDay[e.Date] = d
		}
		d.count++
		if d.top == nil || e.Score > d.top.Score {
			d.top = e
		}
	}

	var rows []DayRow
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for day := first; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(domain.DateLayout)
		row := DayRow{Date: day}
		if s, ok := byDate[key]; ok {
			row.Score = s.Score
			row.Type = string(s.Type)
			row.Band = s.Band
			row.AspectCount = s.AspectCount
			row.Fallback = s.Fallback
		}
		if d, ok := perDay[key]; ok {
			row.Events = d.count
			row.TopTitle = d.top.Title
		}
		rows = append(rows, row)
	}
	return rows
}

// eventRows ranks events by score, then date, time and id.
func eventRows(events []*domain.Event) []EventRow {
	rows := make([]EventRow, len(events))
	for i, e := range events {
		rows[i] = EventRow{
			ID:         e.ID,
			Date:       e.Date,
			Time:       e.Time,
			Title:      e.Title,
			Score:      e.Score,
			Type:       string(e.Type),
			Method:     string(e.TimingMethod),
			State:      string(e.State),
			Bookmarked: e.IsBookmarked,
		}
		if e.TimeWindow != nil {
			rows[i].Window = e.TimeWindow.StartTime + "-" + e.TimeWindow.EndTime
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].Time != rows[j].Time {
			return rows[i].Time < rows[j].Time
		}
		return rows[i].ID < rows[j].ID
	})
	return rows
}
