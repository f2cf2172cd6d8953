package calendar

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
	"electional-engine/internal/storage/memory"
)

// flakyStore is a remote store that can be switched off.
type flakyStore struct {
	*memory.EventStore
	down bool
}

var errDown = errors.New("connection refused")

func (s *flakyStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if s.down {
		return errDown
	}
	return s.EventStore.InsertBulk(ctx, events)
}

func (s *flakyStore) Insert(ctx context.Context, e *domain.Event) error {
	if s.down {
		return errDown
	}
	return s.EventStore.Insert(ctx, e)
}

func (s *flakyStore) Update(ctx context.Context, e *domain.Event) error {
	if s.down {
		return errDown
	}
	return s.EventStore.Update(ctx, e)
}

func (s *flakyStore) Delete(ctx context.Context, userID, id string) error {
	if s.down {
		return errDown
	}
	return s.EventStore.Delete(ctx, userID, id)
}

func (s *flakyStore) DeleteGenerated(ctx context.Context, userID string, within *domain.DateRange) (int, error) {
	if s.down {
		return 0, errDown
	}
	return s.EventStore.DeleteGenerated(ctx, userID, within)
}

func newEvent(date, clock, title string, score int) *domain.Event {
	return &domain.Event{
		UserID:      "user-1",
		Title:       title,
		Date:        date,
		Time:        clock,
		Type:        domain.EventBenefic,
		Description: fmt.Sprintf("Astrologically calculated optimal timing (Score: %d/10).", score),
		Score:       score,
		IsGenerated: true,
	}
}

func TestBulkAdd_ConfirmedByRemote(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore()}
	book := New(Options{Remote: remote})
	ctx := context.Background()

	res, err := book.BulkAdd(ctx, []*domain.Event{
		newEvent("2024-03-10", "09:00", "Venus Trine Jupiter", 8),
		newEvent("2024-03-11", "10:00", "Sun Sextile Mars", 7),
	})
	if err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}
	if res.Confirmed != 2 || res.LocalOnly != 0 || res.Warning != "" {
		t.Errorf("result = %+v, want 2 confirmed", res)
	}

	events, _ := book.Events(ctx, "user-1")
	for _, e := range events {
		if e.ID == "" {
			t.Error("event id not assigned")
		}
		if e.State != domain.StateConfirmed {
			t.Errorf("%s state = %s, want confirmed", e.ID, e.State)
		}
	}
	if remote.Len() != 2 {
		t.Errorf("remote holds %d events, want 2", remote.Len())
	}
}

func TestBulkAdd_RemoteDownKeepsLocalOnly(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore(), down: true}
	book := New(Options{Remote: remote})
	ctx := context.Background()

	res, err := book.BulkAdd(ctx, []*domain.Event{
		newEvent("2024-03-10", "09:00", "Venus Trine Jupiter", 8),
		newEvent("2024-03-11", "10:00", "Sun Sextile Mars", 7),
		newEvent("2024-03-12", "11:00", "Moon Trine Venus", 6),
	})
	if err != nil {
		t.Fatalf("BulkAdd must not fail when the remote is down: %v", err)
	}

	want := "Events saved locally but database is unavailable. 3 events are stored locally and may not persist between sessions."
	if res.Warning != want {
		t.Errorf("Warning = %q, want %q", res.Warning, want)
	}
	if !errors.Is(res.RemoteErr, ErrRemoteUnavailable) {
		t.Errorf("RemoteErr = %v, want ErrRemoteUnavailable", res.RemoteErr)
	}
	if res.LocalOnly != 3 || res.Confirmed != 0 {
		t.Errorf("result = %+v, want 3 local only", res)
	}

	events, _ := book.Events(ctx, "user-1")
	if len(events) != 3 {
		t.Fatalf("local holds %d events, want 3", len(events))
	}
	for _, e := range events {
		if e.State != domain.StateLocalOnly {
			t.Errorf("%s state = %s, want local_only", e.ID, e.State)
		}
	}
}

func TestBulkAdd_RejectsInvalidBatchWhole(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore()}
	book := New(Options{Remote: remote})
	ctx := context.Background()

	noTitle := newEvent("2024-03-10", "09:00", "", 8)
	noUser := newEvent("2024-03-10", "09:00", "Venus Trine Jupiter", 8)
	noUser.UserID = ""
	tests := []struct {
		name  string
		batch []*domain.Event
		want  string
	}{
		{
			name:  "missing fields",
			batch: []*domain.Event{newEvent("2024-03-10", "09:00", "ok", 8), noTitle, noUser},
			want:  "2 events missing required fields (userId, title, date, type, description)",
		},
		{
			name: "invalid type",
			batch: []*domain.Event{
				newEvent("2024-03-10", "09:00", "ok", 8),
				func() *domain.Event { e := newEvent("2024-03-11", "09:00", "bad", 8); e.Type = "lucky"; return e }(),
			},
			want: "1 events have invalid type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := book.BulkAdd(ctx, tt.batch)
			if !errors.Is(err, ErrInvalidEvents) {
				t.Fatalf("err = %v, want ErrInvalidEvents", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err is not a *ValidationError: %T", err)
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
		})
	}

	events, _ := book.Events(ctx, "user-1")
	if len(events) != 0 || remote.Len() != 0 {
		t.Errorf("rejected batches must not be written: local=%d remote=%d", len(events), remote.Len())
	}
}

func TestBulkAdd_DropsDuplicates(t *testing.T) {
	book := New(Options{Remote: &flakyStore{EventStore: memory.NewEventStore()}})
	ctx := context.Background()

	existing := []*domain.Event{
		newEvent("2024-03-01", "09:00", "Venus Trine Jupiter", 8),
		newEvent("2024-03-02", "10:00", "Sun Sextile Mars", 7),
		newEvent("2024-03-03", "11:00", "Moon Trine Venus", 6),
	}
	if _, err := book.BulkAdd(ctx, existing); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var batch []*domain.Event
	for _, e := range existing {
		dup := e.Clone()
		dup.ID = "another-id"
		dup.Description = "different description does not matter"
		batch = append(batch, dup)
	}
	for i := 0; i < 7; i++ {
		batch = append(batch, newEvent(fmt.Sprintf("2024-03-%02d", 10+i), "12:00", "Jupiter Trine Sun", 7))
	}

	res, err := book.BulkAdd(ctx, batch)
	if err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}
	if len(res.Events) != 7 || res.Duplicates != 3 {
		t.Errorf("persisted %d, duplicates %d; want 7 and 3", len(res.Events), res.Duplicates)
	}

	events, _ := book.Events(ctx, "user-1")
	if len(events) != 10 {
		t.Errorf("book holds %d events, want 10", len(events))
	}

	// Duplicates inside one batch collapse too
	twice := newEvent("2024-04-01", "08:00", "Mars Sextile Venus", 6)
	res, err = book.BulkAdd(ctx, []*domain.Event{twice, twice.Clone()})
	if err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}
	if len(res.Events) != 1 || res.Duplicates != 1 {
		t.Errorf("intra-batch: persisted %d, duplicates %d; want 1 and 1", len(res.Events), res.Duplicates)
	}
}

func TestClearGenerated_PreservesBookmarkedAndManual(t *testing.T) {
	march := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		month     *time.Time
		remain    []string
		remoteOff bool
	}{
		{"clear all", nil, []string{"bookmarked-march", "manual-march", "manual-april", "bookmarked-april"}, false},
		{"clear one month", &march, []string{"generated-april", "bookmarked-march", "manual-march", "manual-april", "bookmarked-april"}, false},
		{"clear all remote down", nil, []string{"bookmarked-march", "manual-march", "manual-april", "bookmarked-april"}, true},
		{"clear one month remote down", &march, []string{"generated-april", "bookmarked-march", "manual-march", "manual-april", "bookmarked-april"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &flakyStore{EventStore: memory.NewEventStore()}
			book := New(Options{Remote: remote})
			ctx := context.Background()

			seed := map[string]*domain.Event{
				"generated-march":  newEvent("2024-03-10", "09:00", "a", 8),
				"bookmarked-march": newEvent("2024-03-11", "09:00", "b", 8),
				"manual-march":     newEvent("2024-03-12", "09:00", "c", 8),
				"generated-april":  newEvent("2024-04-10", "09:00", "d", 8),
				"manual-april":     newEvent("2024-04-11", "09:00", "e", 8),
				"bookmarked-april": newEvent("2024-04-12", "09:00", "f", 8),
			}
			var batch []*domain.Event
			for id, e := range seed {
				e.ID = id
				e.IsBookmarked = id == "bookmarked-march" || id == "bookmarked-april"
				e.IsGenerated = id != "manual-march" && id != "manual-april"
				batch = append(batch, e)
			}
			if _, err := book.BulkAdd(ctx, batch); err != nil {
				t.Fatalf("seed failed: %v", err)
			}

			remote.down = tt.remoteOff
			res, err := book.ClearGenerated(ctx, "user-1", tt.month)
			if err != nil {
				t.Fatalf("ClearGenerated failed: %v", err)
			}
			if tt.remoteOff != (res.Warning != "") {
				t.Errorf("warning = %q with remote down = %v", res.Warning, tt.remoteOff)
			}

			events, _ := book.Events(ctx, "user-1")
			got := make(map[string]bool)
			for _, e := range events {
				got[e.ID] = true
				if e.IsGenerated && !e.IsBookmarked && (tt.month == nil || e.Date[:7] == "2024-03") {
					t.Errorf("%s should have been cleared", e.ID)
				}
			}
			for _, id := range tt.remain {
				if !got[id] {
					t.Errorf("%s must survive", id)
				}
			}
			if len(events) != len(tt.remain) {
				t.Errorf("%d events remain, want %d", len(events), len(tt.remain))
			}
		})
	}
}

func TestMutations_ApplyLocallyWhenRemoteDown(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore()}
	book := New(Options{Remote: remote})
	ctx := context.Background()

	e := newEvent("2024-03-10", "09:00", "Venus Trine Jupiter", 8)
	e.ID = "ev-1"
	if _, err := book.Add(ctx, e); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	remote.down = true
	res, err := book.Rename(ctx, "user-1", "ev-1", "  Signing day  ")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if res.Warning == "" || !errors.Is(res.RemoteErr, ErrRemoteUnavailable) {
		t.Errorf("expected a remote warning, got %+v", res)
	}
	res, err = book.ToggleBookmark(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("ToggleBookmark failed: %v", err)
	}

	got, _ := book.Get(ctx, "user-1", "ev-1")
	if got.Title != "Signing day" || !got.IsBookmarked {
		t.Errorf("local changes lost: %+v", got)
	}
	if got.State != domain.StateLocalOnly {
		t.Errorf("state = %s, want local_only", got.State)
	}

	remote.down = false
	if _, err := book.ToggleBookmark(ctx, "user-1", "ev-1"); err != nil {
		t.Fatalf("ToggleBookmark failed: %v", err)
	}
	got, _ = book.Get(ctx, "user-1", "ev-1")
	if got.State != domain.StateConfirmed || got.IsBookmarked {
		t.Errorf("after recovery: state=%s bookmarked=%v", got.State, got.IsBookmarked)
	}
	stored, err := remote.GetByID(ctx, "user-1", "ev-1")
	if err != nil {
		t.Fatalf("remote lookup failed: %v", err)
	}
	if stored.Title != "Signing day" {
		t.Errorf("remote title = %q", stored.Title)
	}
	if stored.State != "" {
		t.Errorf("remote copy must not carry a local state, got %q", stored.State)
	}

	if _, err := book.Rename(ctx, "user-1", "ev-1", "   "); !errors.Is(err, ErrInvalidEvents) {
		t.Errorf("blank title: err = %v, want ErrInvalidEvents", err)
	}
	if _, err := book.Rename(ctx, "user-1", "missing", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing event: err = %v, want ErrNotFound", err)
	}
}

func TestRescore(t *testing.T) {
	book := New(Options{})
	ctx := context.Background()

	harmonious := func(a, b domain.Body) domain.Aspect {
		return domain.Aspect{Type: domain.Trine, BodyA: a, BodyB: b, Strength: 100, Nature: domain.NatureHarmonious}
	}
	e := newEvent("2024-03-10", "12:00", "Moon Trine Neptune", 5)
	e.ID = "ev-1"
	e.Type = domain.EventNeutral
	e.Description = "Astrologically calculated optimal timing (Score: 5/10). Moon trine Neptune."
	e.ChartData = &domain.ChartSnapshot{Aspects: []domain.Aspect{
		harmonious(domain.Moon, domain.Neptune),
		harmonious(domain.Moon, domain.Uranus),
		harmonious(domain.Mercury, domain.Neptune),
	}}
	bare := newEvent("2024-03-11", "12:00", "Manual note", 5)
	bare.ID = "ev-2"
	if _, err := book.BulkAdd(ctx, []*domain.Event{e, bare}); err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}

	res, err := book.Rescore(ctx, "user-1", "ev-1", nil)
	if err != nil {
		t.Fatalf("Rescore failed: %v", err)
	}
	got := res.Events[0]
	if got.Score != 8 || got.Type != domain.EventBenefic {
		t.Errorf("rescored to %d/%s, want 8/benefic", got.Score, got.Type)
	}
	if got.TimeWindow == nil || got.TimeWindow.StartTime != "09:36" || got.TimeWindow.EndTime != "14:24" {
		t.Errorf("time window = %+v, want 09:36-14:24", got.TimeWindow)
	}
	if want := "Astrologically calculated optimal timing (Score: 8/10). Moon trine Neptune."; got.Description != want {
		t.Errorf("description = %q, want %q", got.Description, want)
	}

	if _, err := book.Rescore(ctx, "user-1", "ev-2", nil); !errors.Is(err, ErrNoChart) {
		t.Errorf("err = %v, want ErrNoChart", err)
	}
}

func TestDeleteAndForDay(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore()}
	book := New(Options{Remote: remote})
	ctx := context.Background()

	a := newEvent("2024-03-10", "09:00", "a", 8)
	a.ID = "a"
	b := newEvent("2024-03-10", "15:00", "b", 7)
	b.ID = "b"
	c := newEvent("2024-03-11", "09:00", "c", 6)
	c.ID = "c"
	if _, err := book.BulkAdd(ctx, []*domain.Event{a, b, c}); err != nil {
		t.Fatalf("BulkAdd failed: %v", err)
	}

	day, _ := book.ForDay(ctx, "user-1", time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC))
	if len(day) != 2 || day[0].ID != "a" || day[1].ID != "b" {
		t.Fatalf("ForDay returned %d events", len(day))
	}

	remote.down = true
	res, err := book.Delete(ctx, "user-1", "a")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if res.Warning == "" {
		t.Error("expected a warning when the remote delete fails")
	}
	if _, err := book.Get(ctx, "user-1", "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("deleted event still present: %v", err)
	}
	if _, err := book.Delete(ctx, "user-1", "a"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestSync(t *testing.T) {
	remote := &flakyStore{EventStore: memory.NewEventStore()}
	ctx := context.Background()
	e := newEvent("2024-03-10", "09:00", "a", 8)
	e.ID = "a"
	if err := remote.EventStore.Insert(ctx, e); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	book := New(Options{Remote: remote})
	n, err := book.Sync(ctx, "user-1")
	if err != nil || n != 1 {
		t.Fatalf("Sync = %d, %v; want 1", n, err)
	}
	n, _ = book.Sync(ctx, "user-1")
	if n != 0 {
		t.Errorf("second Sync loaded %d, want 0", n)
	}

	got, _ := book.Get(ctx, "user-1", "a")
	if got.State != domain.StateConfirmed {
		t.Errorf("state = %s, want confirmed", got.State)
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(time.Date(2024, 2, 17, 13, 0, 0, 0, time.UTC))
	if r.Start.Format(domain.DateLayout) != "2024-02-01" || r.End.Format(domain.DateLayout) != "2024-02-29" {
		t.Errorf("range = %s..%s", r.Start, r.End)
	}
}
