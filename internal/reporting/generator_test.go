package reporting

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
	"electional-engine/internal/storage/memory"
)

func date(day int) time.Time {
	return time.Date(2025, time.February, day, 0, 0, 0, 0, time.UTC)
}

func setupTestData(t *testing.T) (*memory.EventStore, *memory.DayScoreStore, *memory.GenerationRunStore) {
	ctx := context.Background()

	events := memory.NewEventStore()
	dayScores := memory.NewDayScoreStore()
	runs := memory.NewGenerationRunStore()

	finished := date(1).Add(time.Minute)
	if err := runs.Save(ctx, &storage.GenerationRun{
		ID:          "run-1",
		UserID:      "user-1",
		State:       "completed",
		Priorities:  []string{"love", "career"},
		RangeStart:  date(1),
		RangeEnd:    date(3),
		EventsFound: 4,
		EventsSaved: 4,
		StartedAt:   date(1),
		FinishedAt:  &finished,
	}); err != nil {
		t.Fatalf("Save run failed: %v", err)
	}

	list := []*domain.Event{
		{ID: "e1", UserID: "user-1", Title: "Venus Trine Jupiter", Date: "2025-02-01", Time: "10:00", Type: domain.EventBenefic, Description: "d", Score: 8, IsGenerated: true, TimingMethod: domain.MethodAspects, State: domain.StateConfirmed, TimeWindow: &domain.TimeWindow{StartTime: "08:00", EndTime: "12:00"}},
		{ID: "e2", UserID: "user-1", Title: "⚠️ Mars Square Saturn", Date: "2025-02-01", Time: "14:00", Type: domain.EventChallenging, Description: "d", Score: 2, IsGenerated: true, TimingMethod: domain.MethodAspects, State: domain.StateConfirmed},
		{ID: "e3", UserID: "user-1", Title: "Jupiter 10th angular", Date: "2025-02-03", Time: "09:00", Type: domain.EventNeutral, Description: "d", Score: 5, IsGenerated: true, TimingMethod: domain.MethodHouses, State: domain.StateLocalOnly, IsBookmarked: true},
		{ID: "e4", UserID: "user-1", Title: "Sun, Moon | Venus", Date: "2025-02-03", Time: "07:00", Type: domain.EventBenefic, Description: "d", Score: 8, IsGenerated: true, TimingMethod: domain.MethodElectional, State: domain.StateConfirmed},
		{ID: "m1", UserID: "user-1", Title: "Dentist", Date: "2025-02-02", Type: domain.EventNeutral, Description: "d", Score: 5},
		{ID: "x1", UserID: "user-1", Title: "Outside", Date: "2025-03-01", Type: domain.EventNeutral, Description: "d", Score: 9, IsGenerated: true},
	}
	if err := events.InsertBulk(ctx, list); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	if err := dayScores.InsertBulk(ctx, []*domain.DayScore{
		{UserID: "user-1", Date: date(1), Score: 7, Type: domain.EventBenefic, Band: "good", AspectCount: 5, ComputedAt: date(1)},
		{UserID: "user-1", Date: date(3), Score: 3, Type: domain.EventNeutral, Band: "lower", AspectCount: 3, Fallback: true, ComputedAt: date(1)},
	}); err != nil {
		t.Fatalf("InsertBulk day scores failed: %v", err)
	}

	return events, dayScores, runs
}

func TestGenerate_Summary(t *testing.T) {
	events, dayScores, runs := setupTestData(t)
	fixedTime := time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)

	report, err := NewGenerator(events, dayScores, runs).
		WithClock(func() time.Time { return fixedTime }).
		Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixedTime, report.GeneratedAt)
	}
	if report.Run.ID != "run-1" || report.Run.State != "completed" {
		t.Errorf("unexpected run section %+v", report.Run)
	}

	s := report.Summary
	if s.TotalEvents != 4 {
		t.Errorf("TotalEvents = %d, want 4 (manual and out-of-range excluded)", s.TotalEvents)
	}
	if s.Benefic != 2 || s.Neutral != 1 || s.Challenging != 1 {
		t.Errorf("type counts = %d/%d/%d, want 2/1/1", s.Benefic, s.Neutral, s.Challenging)
	}
	if s.Confirmed != 3 || s.LocalOnly != 1 || s.Bookmarked != 1 {
		t.Errorf("state counts = %+v", s)
	}
	if s.MeanScore != 5.75 || s.BestScore != 8 {
		t.Errorf("MeanScore = %.2f, BestScore = %d", s.MeanScore, s.BestScore)
	}
}

func TestGenerate_MethodsAndDays(t *testing.T) {
	events, dayScores, runs := setupTestData(t)

	report, err := NewGenerator(events, dayScores, runs).Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(report.Methods) != 3 {
		t.Fatalf("expected 3 method rows, got %d", len(report.Methods))
	}
	wantMethods := []MethodRow{
		{Method: "houses", Events: 1, MeanScore: 5, BestScore: 5},
		{Method: "aspects", Events: 2, MeanScore: 5, BestScore: 8},
		{Method: "electional", Events: 1, MeanScore: 8, BestScore: 8},
	}
	for i, want := range wantMethods {
		if report.Methods[i] != want {
			t.Errorf("Methods[%d] = %+v, want %+v", i, report.Methods[i], want)
		}
	}

	if len(report.Days) != 3 {
		t.Fatalf("expected 3 day rows, got %d", len(report.Days))
	}
	if d := report.Days[0]; d.Score != 7 || d.Events != 2 || d.TopTitle != "Venus Trine Jupiter" {
		t.Errorf("day 1 = %+v", d)
	}
	if d := report.Days[1]; d.Score != 0 || d.Events != 0 || d.Band != "" {
		t.Errorf("day 2 should be empty, got %+v", d)
	}
	if d := report.Days[2]; !d.Fallback || d.Events != 2 || d.TopTitle != "Sun, Moon | Venus" {
		t.Errorf("day 3 = %+v", d)
	}
}

func TestGenerate_EventOrder(t *testing.T) {
	events, dayScores, runs := setupTestData(t)

	report, err := NewGenerator(events, dayScores, runs).Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var ids []string
	for _, e := range report.Events {
		ids = append(ids, e.ID)
	}
	if got, want := strings.Join(ids, ","), "e1,e4,e3,e2"; got != want {
		t.Errorf("event order = %s, want %s", got, want)
	}
	if report.Events[0].Window != "08:00-12:00" {
		t.Errorf("window = %q", report.Events[0].Window)
	}
}

func TestGenerate_NoRuns(t *testing.T) {
	events, dayScores, runs := setupTestData(t)

	_, err := NewGenerator(events, dayScores, runs).Generate(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerate_WithoutDayScores(t *testing.T) {
	events, _, runs := setupTestData(t)

	report, err := NewGenerator(events, nil, runs).Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for _, d := range report.Days {
		if d.Score != 0 || d.Band != "" {
			t.Errorf("expected no heat without a day score store, got %+v", d)
		}
	}
}

func TestRenderMarkdown_Format(t *testing.T) {
	events, dayScores, runs := setupTestData(t)
	report, err := NewGenerator(events, dayScores, runs).Generate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	requiredSections := []string{
		"# Optimal Timing Report",
		"## Run",
		"## Summary",
		"## Timing Methods",
		"## Calendar Heat",
		"## Best Windows",
	}
	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Markdown missing section: %s", section)
		}
	}

	if !strings.Contains(md, "| Range | 2025-02-01 to 2025-02-03 |") {
		t.Error("Markdown missing range row")
	}
	if !strings.Contains(md, "lower (fallback)") {
		t.Error("Markdown should flag fallback days")
	}
	if !strings.Contains(md, `Sun, Moon \| Venus`) {
		t.Error("Markdown should escape pipes in titles")
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Report{})
	if !strings.Contains(md, "No scanned days.") || !strings.Contains(md, "No generated events.") {
		t.Errorf("empty report should render placeholders:\n%s", md)
	}
}

func TestRenderCSV_DeterministicOrder(t *testing.T) {
	events, dayScores, runs := setupTestData(t)

	var first string
	for run := 0; run < 5; run++ {
		report, err := NewGenerator(events, dayScores, runs).Generate(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("Run %d: Generate failed: %v", run, err)
		}
		csv := RenderCSV(report.Events)
		if first == "" {
			first = csv
			continue
		}
		if csv != first {
			t.Errorf("Run %d: CSV output differs", run)
		}
	}

	lines := strings.Split(strings.TrimSpace(first), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected header + 4 rows, got %d lines", len(lines))
	}
	if lines[0] != "id,date,time,window,score,type,method,state,bookmarked,title" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], `,"Sun, Moon | Venus"`) {
		t.Errorf("titles with commas must be quoted: %q", lines[2])
	}
}

func TestRenderDaysCSV(t *testing.T) {
	csv := RenderDaysCSV([]DayRow{
		{Date: date(1), Score: 7, Type: "benefic", Band: "good", AspectCount: 5, Events: 2, TopTitle: "Venus Trine Jupiter"},
	})
	want := "date,score,type,band,aspect_count,fallback,events,top_title\n" +
		"2025-02-01,7,benefic,good,5,false,2,Venus Trine Jupiter\n"
	if csv != want {
		t.Errorf("RenderDaysCSV =\n%s\nwant\n%s", csv, want)
	}
}
