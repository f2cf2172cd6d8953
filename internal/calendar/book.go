// Package calendar keeps a user's events locally and commits them to the remote
// store in two phases: pending, then confirmed or local_only.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"electional-engine/internal/domain"
	"electional-engine/internal/idhash"
	"electional-engine/internal/observability"
	"electional-engine/internal/scoring"
	"electional-engine/internal/storage"
	"electional-engine/internal/storage/memory"
)

// Options for creating a Book.
type Options struct {
	// Remote is the authoritative store. Nil makes the local store authoritative.
	Remote storage.EventStore

	// Local holds the working collection. Defaults to an in-memory store.
	Local storage.EventStore

	Verbose bool
	Now     func() time.Time
}

// Book is the local-first event collection.
type Book struct {
	mu      sync.Mutex
	local   storage.EventStore
	remote  storage.EventStore
	verbose bool
	now     func() time.Time
}

// New creates a Book.
func New(opts Options) *Book {
	b := &Book{
		local:   opts.Local,
		remote:  opts.Remote,
		verbose: opts.Verbose,
		now:     opts.Now,
	}
	if b.local == nil {
		b.local = memory.NewEventStore()
	}
	if b.now == nil {
		b.now = func() time.Time { return time.Now().UTC() }
	}
	return b
}

// Result reports the outcome of a write.
type Result struct {
	Events     []*domain.Event
	Confirmed  int
	LocalOnly  int
	Duplicates int
	Cleared    int

	// Warning is set when a change could not reach the remote store.
	Warning string

	// RemoteErr wraps ErrRemoteUnavailable when Warning is set.
	RemoteErr error
}

// LocalOnlyWarning is the message shown when saved events did not reach the remote store.
func LocalOnlyWarning(n int) string {
	return fmt.Sprintf("Events saved locally but database is unavailable. %d events are stored locally and may not persist between sessions.", n)
}

const changeWarning = "Changes saved locally but database is unavailable. They may not persist between sessions."

func (r *Result) remoteFailed(warning string, err error) {
	r.Warning = warning
	r.RemoteErr = fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

// Add stores one event. It follows the same rules as BulkAdd.
func (b *Book) Add(ctx context.Context, e *domain.Event) (*Result, error) {
	return b.BulkAdd(ctx, []*domain.Event{e})
}

// BulkAdd validates, deduplicates and stores a batch. Invalid batches are rejected
// whole before any write. Records whose (date, time, title, score, type) hash
// already exists for the user, or repeats an earlier record in the batch, are dropped.
func (b *Book) BulkAdd(ctx context.Context, events []*domain.Event) (*Result, error) {
	res := &Result{}
	if len(events) == 0 {
		return res, nil
	}
	if err := Validate(events); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	fresh, err := b.dedupe(ctx, events)
	if err != nil {
		return nil, err
	}
	res.Duplicates = len(events) - len(fresh)
	if res.Duplicates > 0 {
		observability.RecordDeduplicated(res.Duplicates)
		b.log("dropped %d duplicate events", res.Duplicates)
	}
	if len(fresh) == 0 {
		return res, nil
	}

	// Phase 1: local tentative records
	for _, e := range fresh {
		e.State = domain.StatePending
	}
	if err := b.local.InsertBulk(ctx, fresh); err != nil {
		return nil, fmt.Errorf("store events locally: %w", err)
	}

	// Phase 2: remote acknowledgment
	state := domain.StateConfirmed
	if b.remote != nil {
		if err := b.remote.InsertBulk(ctx, remoteCopies(fresh)); err != nil {
			state = domain.StateLocalOnly
			observability.RecordPersistenceFailure("bulk_add")
			res.remoteFailed(LocalOnlyWarning(len(fresh)), err)
			b.log("remote insert of %d events failed: %v", len(fresh), err)
		}
	}

	for _, e := range fresh {
		e.State = state
		if err := b.local.Update(ctx, e); err != nil {
			return nil, fmt.Errorf("mark event %s %s: %w", e.ID, state, err)
		}
	}
	observability.RecordPersisted(string(state), len(fresh))

	if state == domain.StateConfirmed {
		res.Confirmed = len(fresh)
	} else {
		res.LocalOnly = len(fresh)
	}
	res.Events = fresh
	return res, nil
}

// dedupe clones the batch, fills ids and creation times, and drops duplicates.
func (b *Book) dedupe(ctx context.Context, events []*domain.Event) ([]*domain.Event, error) {
	seen := make(map[string]map[string]struct{})
	known := func(userID string) (map[string]struct{}, error) {
		if set, ok := seen[userID]; ok {
			return set, nil
		}
		existing, err := b.local.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list existing events: %w", err)
		}
		set := make(map[string]struct{}, len(existing))
		for _, e := range existing {
			set[idhash.EventHash(e)] = struct{}{}
		}
		seen[userID] = set
		return set, nil
	}

	fresh := make([]*domain.Event, 0, len(events))
	for _, in := range events {
		set, err := known(in.UserID)
		if err != nil {
			return nil, err
		}
		h := idhash.EventHash(in)
		if _, dup := set[h]; dup {
			continue
		}
		set[h] = struct{}{}

		e := in.Clone()
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = b.now()
		}
		fresh = append(fresh, e)
	}
	return fresh, nil
}

func remoteCopies(events []*domain.Event) []*domain.Event {
	out := make([]*domain.Event, len(events))
	for i, e := range events {
		c := e.Clone()
		c.State = ""
		out[i] = c
	}
	return out
}

// Rename changes an event title.
func (b *Book) Rename(ctx context.Context, userID, id, title string) (*Result, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &ValidationError{MissingFields: 1}
	}
	return b.mutate(ctx, userID, id, "rename", func(e *domain.Event) error {
		e.Title = title
		return nil
	})
}

// ToggleBookmark flips the bookmark flag of an event.
func (b *Book) ToggleBookmark(ctx context.Context, userID, id string) (*Result, error) {
	return b.mutate(ctx, userID, id, "bookmark", func(e *domain.Event) error {
		e.IsBookmarked = !e.IsBookmarked
		return nil
	})
}

// scoreSentence is the score quoted in generated descriptions.
var scoreSentence = regexp.MustCompile(`\(Score: \d+/10\)`)

// Rescore recomputes the score of an event from its chart data for a new set of
// priorities. A title marked with a warning stays challenging. Rescoring with
// the priorities the event was generated for changes nothing.
func (b *Book) Rescore(ctx context.Context, userID, id string, priorities []domain.Priority) (*Result, error) {
	return b.mutate(ctx, userID, id, "rescore", func(e *domain.Event) error {
		if e.ChartData == nil {
			return fmt.Errorf("%w: %s", ErrNoChart, e.ID)
		}
		res := scoring.ScoreEvent(scoring.Input{
			Aspects:    e.ChartData.Aspects,
			Planets:    e.ChartData.Planets,
			Priorities: priorities,
		}, e.Title)
		e.Score = res.Score
		e.Type = res.Type
		e.Description = scoreSentence.ReplaceAllLiteralString(e.Description, fmt.Sprintf("(Score: %d/10)", res.Score))
		if e.Time != "" {
			if at, err := domain.ParseClockTime(e.Time); err == nil {
				tw := scoring.TimeWindow(at, e.Score, e.Type)
				e.TimeWindow = &tw
			}
		}
		return nil
	})
}

// mutate applies fn locally, then mirrors the change remotely. A record that only
// exists locally is inserted remotely, promoting it to confirmed on success.
func (b *Book) mutate(ctx context.Context, userID, id, op string, fn func(e *domain.Event) error) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.local.GetByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, id, err)
	}
	if err := fn(e); err != nil {
		return nil, err
	}

	res := &Result{}
	if b.remote != nil {
		remote := remoteCopies([]*domain.Event{e})[0]
		err := b.remote.Update(ctx, remote)
		if errors.Is(err, storage.ErrNotFound) && e.State != domain.StateConfirmed {
			err = b.remote.Insert(ctx, remote)
		}
		if err != nil {
			observability.RecordPersistenceFailure(op)
			res.remoteFailed(changeWarning, err)
			b.log("remote %s of %s failed: %v", op, id, err)
			e.State = domain.StateLocalOnly
		} else {
			e.State = domain.StateConfirmed
		}
	} else {
		e.State = domain.StateConfirmed
	}

	if err := b.local.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("%s %s locally: %w", op, id, err)
	}
	if e.State == domain.StateConfirmed {
		res.Confirmed = 1
	} else {
		res.LocalOnly = 1
	}
	res.Events = []*domain.Event{e}
	return res, nil
}

// Delete removes an event locally and remotely.
func (b *Book) Delete(ctx context.Context, userID, id string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.local.Delete(ctx, userID, id); err != nil {
		return nil, fmt.Errorf("delete %s: %w", id, err)
	}

	res := &Result{}
	if b.remote != nil {
		err := b.remote.Delete(ctx, userID, id)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			observability.RecordPersistenceFailure("delete")
			res.remoteFailed(changeWarning, err)
			b.log("remote delete of %s failed: %v", id, err)
		}
	}
	return res, nil
}

// ClearGenerated removes generated events that are not bookmarked. With a nil
// month every date is cleared, otherwise only the calendar month containing it.
// Manual and bookmarked events always survive.
func (b *Book) ClearGenerated(ctx context.Context, userID string, month *time.Time) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var within *domain.DateRange
	if month != nil {
		r := MonthRange(*month)
		within = &r
	}

	n, err := b.local.DeleteGenerated(ctx, userID, within)
	if err != nil {
		return nil, fmt.Errorf("clear generated events: %w", err)
	}
	res := &Result{Cleared: n}

	if b.remote != nil {
		if _, err := b.remote.DeleteGenerated(ctx, userID, within); err != nil {
			observability.RecordPersistenceFailure("clear_generated")
			res.remoteFailed(changeWarning, err)
			b.log("remote clear for %s failed: %v", userID, err)
		}
	}
	b.log("cleared %d generated events for %s", n, userID)
	return res, nil
}

// Sync loads the remote events of a user into the local collection as confirmed.
// Events already held locally are left untouched.
func (b *Book) Sync(ctx context.Context, userID string) (int, error) {
	if b.remote == nil {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	remote, err := b.remote.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}

	loaded := 0
	for _, e := range remote {
		e.State = domain.StateConfirmed
		err := b.local.Insert(ctx, e)
		if errors.Is(err, storage.ErrDuplicateKey) {
			continue
		}
		if err != nil {
			return loaded, fmt.Errorf("load event %s: %w", e.ID, err)
		}
		loaded++
	}
	b.log("loaded %d remote events for %s", loaded, userID)
	return loaded, nil
}

// Events returns every event of a user ordered by date, time, id.
func (b *Book) Events(ctx context.Context, userID string) ([]*domain.Event, error) {
	return b.local.ListByUser(ctx, userID)
}

// ForDay returns the events of a user dated on day.
func (b *Book) ForDay(ctx context.Context, userID string, day time.Time) ([]*domain.Event, error) {
	return b.local.ListByDateRange(ctx, userID, day, day)
}

// Get returns one event.
func (b *Book) Get(ctx context.Context, userID, id string) (*domain.Event, error) {
	return b.local.GetByID(ctx, userID, id)
}

// MonthRange is the first through last day of the month containing t.
func MonthRange(t time.Time) domain.DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return domain.DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

func (b *Book) log(format string, args ...interface{}) {
	if b.verbose {
		log.Printf("[calendar] "+format, args...)
	}
}
