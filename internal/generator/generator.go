// Package generator scans a date range for optimal timing windows and stores the
// best candidates as generated calendar events.
// It coordinates: clear → scan (chart → score → candidates) → select → save → publish
package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"electional-engine/internal/aspects"
	"electional-engine/internal/astrocontext"
	"electional-engine/internal/calendar"
	"electional-engine/internal/domain"
	"electional-engine/internal/ephemeris"
	"electional-engine/internal/observability"
	"electional-engine/internal/storage"
)

// State is the lifecycle of one generation run.
type State string

const (
	StateIdle      State = "idle"
	StateScanning  State = "scanning"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Input errors, returned before any computation starts.
var (
	ErrNoPriorities = errors.New("select at least one priority to generate optimal timing")
	ErrNoLocation   = errors.New("a location is required to generate optimal timing")
	ErrInvalidRange = errors.New("invalid scan range")
	ErrNoUser       = errors.New("a user id is required to generate optimal timing")
)

// DefaultMaxPerDay is the number of candidates kept per scanned day.
const DefaultMaxPerDay = 3

// DefaultMinScore keeps challenging-band instants out of the results.
const DefaultMinScore = 3

// maxMonths bounds the scan range of one request.
const maxMonths = 12

// DefaultThresholds are the minimum method scores a candidate must reach.
func DefaultThresholds() map[domain.TimingMethod]float64 {
	return map[domain.TimingMethod]float64{
		domain.MethodHouses:     0.3,
		domain.MethodAspects:    0.2,
		domain.MethodElectional: 0.3,
	}
}

// Publisher announces confirmed generated events to other services.
type Publisher interface {
	PublishGenerated(ctx context.Context, e *domain.Event) error
}

// Progress is a coarse checkpoint of a run.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// Handlers receive a run's output while it scans. Both are optional.
type Handlers struct {
	OnProgress func(Progress)

	// OnCandidate receives each selected candidate as soon as its day is scanned,
	// before it is saved.
	OnCandidate func(*domain.Event)
}

// Request describes one generation.
type Request struct {
	UserID     string
	Location   *domain.Location
	Priorities []domain.Priority

	// Month anchors the scan on the calendar month containing it.
	Month time.Time

	// Months is the number of calendar months to scan, starting at Month. Zero means one.
	Months int

	// KeepExisting skips clearing previously generated events in the range.
	KeepExisting bool
}

// Validate rejects requests that cannot be scanned.
func (r Request) Validate() error {
	if r.UserID == "" {
		return ErrNoUser
	}
	if len(r.Priorities) == 0 {
		return ErrNoPriorities
	}
	for _, p := range r.Priorities {
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown priority %q", ErrNoPriorities, p)
		}
	}
	if r.Location == nil {
		return ErrNoLocation
	}
	if !r.Location.IsValid() {
		return fmt.Errorf("%w: coordinates out of range", ErrNoLocation)
	}
	if r.Month.IsZero() {
		return fmt.Errorf("%w: reference month is required", ErrInvalidRange)
	}
	if r.Months < 0 || r.Months > maxMonths {
		return fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidRange, maxMonths)
	}
	return nil
}

func (r Request) months() int {
	if r.Months == 0 {
		return 1
	}
	return r.Months
}

// Range returns the scanned days, first day of the reference month through the
// last day of the final month.
func (r Request) Range() domain.DateRange {
	first := calendar.MonthRange(r.Month)
	last := calendar.MonthRange(first.Start.AddDate(0, r.months()-1, 0))
	return domain.DateRange{Start: first.Start, End: last.End}
}

// Options for creating a Generator.
type Options struct {
	// Required
	Adapter *ephemeris.Adapter
	Book    *calendar.Book

	// Defaults to a detector over Adapter.
	Detector *aspects.Detector

	// Defaults to the built-in Mercury table.
	Context *astrocontext.Evaluator

	// Optional collaborators
	DayScores storage.DayScoreStore
	Runs      storage.GenerationRunStore
	Publisher Publisher

	// Thresholds per method. Missing methods use DefaultThresholds.
	Thresholds map[domain.TimingMethod]float64
	MaxPerDay  int

	// MinScore is the lowest event score kept. Zero uses DefaultMinScore.
	MinScore int

	Verbose bool
	Now     func() time.Time
}

// Generator is the optimal timing orchestrator.
type Generator struct {
	adapter    *ephemeris.Adapter
	book       *calendar.Book
	detector   *aspects.Detector
	context    *astrocontext.Evaluator
	dayScores  storage.DayScoreStore
	runs       storage.GenerationRunStore
	publisher  Publisher
	thresholds map[domain.TimingMethod]float64
	maxPerDay  int
	minScore   int
	verbose    bool
	now        func() time.Time
}

// New creates a Generator.
func New(opts Options) *Generator {
	g := &Generator{
		adapter:    opts.Adapter,
		book:       opts.Book,
		detector:   opts.Detector,
		context:    opts.Context,
		dayScores:  opts.DayScores,
		runs:       opts.Runs,
		publisher:  opts.Publisher,
		thresholds: DefaultThresholds(),
		maxPerDay:  opts.MaxPerDay,
		minScore:   opts.MinScore,
		verbose:    opts.Verbose,
		now:        opts.Now,
	}
	for m, v := range opts.Thresholds {
		g.thresholds[m] = v
	}
	if g.detector == nil {
		g.detector = aspects.NewDetector(opts.Adapter, aspects.Options{Verbose: opts.Verbose})
	}
	if g.context == nil {
		g.context = astrocontext.NewEvaluator(nil)
	}
	if g.maxPerDay <= 0 {
		g.maxPerDay = DefaultMaxPerDay
	}
	if g.minScore <= 0 {
		g.minScore = DefaultMinScore
	}
	if g.now == nil {
		g.now = func() time.Time { return time.Now().UTC() }
	}
	return g
}

// RunResult contains results from one generation.
type RunResult struct {
	RunID string
	State State
	Range domain.DateRange

	DaysScanned     int
	Calculations    int
	CandidatesFound int // above threshold, before the per-day cap
	Selected        int // after the per-day cap
	Cleared         int
	Duplicates      int
	Published       int

	Events    []*domain.Event
	DayScores []*domain.DayScore

	// Warning is set when events could only be saved locally.
	Warning string
	Errors  []string
}

// Run executes one generation.
// Phases:
//  1. Validate the request and record the run
//  2. Clear previously generated events in the range (best effort)
//  3. Scan every day hour by hour and keep the best candidates per day
//  4. Save the selection through the calendar book and write day scores
//  5. Publish confirmed events
//
// Cancelling ctx stops the scan between days. The days already scanned are
// still saved and the result is returned with StateCancelled and a nil error.
func (g *Generator) Run(ctx context.Context, req Request, h Handlers) (*RunResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if g.adapter == nil || g.book == nil {
		return nil, errors.New("generator requires an ephemeris adapter and a calendar book")
	}

	started := g.now()
	result := &RunResult{
		RunID: uuid.NewString(),
		State: StateScanning,
		Range: req.Range(),
	}
	run := &storage.GenerationRun{
		ID:         result.RunID,
		UserID:     req.UserID,
		State:      string(StateScanning),
		Priorities: priorityTags(req.Priorities),
		RangeStart: result.Range.Start,
		RangeEnd:   result.Range.End,
		StartedAt:  started,
	}
	g.saveRun(ctx, run, result)

	report := func(percent int, message string) {
		g.log("%3d%% %s", percent, message)
		if h.OnProgress != nil {
			h.OnProgress(Progress{Percent: percent, Message: message})
		}
	}

	report(5, "Initializing")

	// Phase 2: clear
	if !req.KeepExisting {
		report(15, "Clearing previous generated events")
		g.clear(ctx, req, result)
	}

	// Phase 3: scan
	days := daysOf(result.Range)
	var selected []*domain.Event
	for i, day := range days {
		if ctx.Err() != nil {
			result.State = StateCancelled
			g.log("cancelled after %d/%d days", result.DaysScanned, len(days))
			break
		}
		report(25+i*40/len(days), fmt.Sprintf("Scanning day %d/%d for optimal timing...", i+1, len(days)))

		picked := g.scanDay(day, req, result)
		for _, e := range picked {
			if h.OnCandidate != nil {
				h.OnCandidate(e.Clone())
			}
		}
		selected = append(selected, picked...)
		result.DayScores = append(result.DayScores, g.scoreDay(day, req))
		result.DaysScanned++
	}
	result.Selected = len(selected)

	// Partial results of a cancelled run are still saved.
	saveCtx := ctx
	if result.State == StateCancelled {
		saveCtx = context.WithoutCancel(ctx)
	}

	// Phase 4: save
	report(70, "Selecting best windows")
	sortEvents(selected)

	report(85, "Saving events")
	if err := g.save(saveCtx, selected, result); err != nil {
		result.State = StateFailed
		result.Errors = append(result.Errors, err.Error())
		g.finish(saveCtx, run, result, started)
		return result, err
	}

	// Phase 5: publish
	g.publish(saveCtx, result)

	if result.State != StateCancelled {
		result.State = StateCompleted
		report(100, "Complete")
	}
	g.finish(saveCtx, run, result, started)

	g.log("run %s %s: %d days, %d calculations, %d candidates, %d saved, %d duplicates",
		result.RunID, result.State, result.DaysScanned, result.Calculations,
		result.CandidatesFound, len(result.Events), result.Duplicates)

	return result, nil
}

// clear removes previously generated events month by month. Failures are logged
// and recorded but never stop the run.
func (g *Generator) clear(ctx context.Context, req Request, result *RunResult) {
	month := result.Range.Start
	for i := 0; i < req.months(); i++ {
		m := month.AddDate(0, i, 0)
		res, err := g.book.ClearGenerated(ctx, req.UserID, &m)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("clear %s: %v", m.Format("2006-01"), err))
			g.log("clearing %s failed, continuing: %v", m.Format("2006-01"), err)
			continue
		}
		result.Cleared += res.Cleared
		if res.Warning != "" {
			result.Errors = append(result.Errors, res.Warning)
		}
	}
}

// save stores the selection and the day scores.
func (g *Generator) save(ctx context.Context, selected []*domain.Event, result *RunResult) error {
	if len(selected) > 0 {
		res, err := g.book.BulkAdd(ctx, selected)
		if err != nil {
			return fmt.Errorf("save events: %w", err)
		}
		result.Events = res.Events
		result.Duplicates = res.Duplicates
		result.Warning = res.Warning
	}

	if g.dayScores != nil && len(result.DayScores) > 0 {
		if err := g.dayScores.InsertBulk(ctx, result.DayScores); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("save day scores: %v", err))
			g.log("saving %d day scores failed: %v", len(result.DayScores), err)
		}
	}
	return nil
}

// publish announces the confirmed events. Local-only events are not announced.
func (g *Generator) publish(ctx context.Context, result *RunResult) {
	if g.publisher == nil {
		return
	}
	for _, e := range result.Events {
		if e.State != domain.StateConfirmed {
			continue
		}
		if err := g.publisher.PublishGenerated(ctx, e); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("publish %s: %v", e.ID, err))
			g.log("publish %s failed: %v", e.ID, err)
			continue
		}
		result.Published++
	}
}

func (g *Generator) finish(ctx context.Context, run *storage.GenerationRun, result *RunResult, started time.Time) {
	finished := g.now()
	run.State = string(result.State)
	run.EventsFound = result.CandidatesFound
	run.EventsSaved = len(result.Events)
	run.Warning = result.Warning
	run.FinishedAt = &finished
	g.saveRun(ctx, run, result)

	observability.RecordGenerationRun(string(result.State), finished.Sub(started).Seconds(), finished.Unix())
}

func (g *Generator) saveRun(ctx context.Context, run *storage.GenerationRun, result *RunResult) {
	if g.runs == nil {
		return
	}
	if err := g.runs.Save(ctx, run); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("save run: %v", err))
		g.log("saving run %s failed: %v", run.ID, err)
	}
}

// daysOf lists the UTC midnights within r.
func daysOf(r domain.DateRange) []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// sortEvents orders events by date, then time.
func sortEvents(events []*domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}

func priorityTags(priorities []domain.Priority) []string {
	out := make([]string, len(priorities))
	for i, p := range priorities {
		out[i] = string(p)
	}
	return out
}

// log prints verbose output.
func (g *Generator) log(format string, args ...interface{}) {
	if g.verbose {
		log.Printf("[generator] "+format, args...)
	}
}
