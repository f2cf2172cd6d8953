package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

func newTestEvent(id, date string) *domain.Event {
	return &domain.Event{
		ID:                 id,
		UserID:             "user-1",
		Title:              "Venus Trine Jupiter",
		Date:               date,
		Time:               "14:00",
		Type:               domain.EventBenefic,
		Description:        "Astrologically calculated optimal timing (Score: 8/10).",
		Aspects:            []string{"venus trine jupiter (1.2°)"},
		PlanetaryPositions: []string{"venus in libra", "jupiter in sagittarius"},
		Score:              8,
		IsGenerated:        true,
		TimingMethod:       domain.MethodAspects,
		TimeWindow:         &domain.TimeWindow{StartTime: "12:12", EndTime: "15:48", Duration: "3 hours 36 minutes"},
		ElectionalData: &domain.ElectionalData{
			MercuryStatus:   domain.MercuryDirect,
			MoonPhase:       domain.PhaseWaxingCrescent,
			BeneficsAngular: true,
			ElectionalReady: true,
		},
		Priorities: []string{"love"},
		CreatedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEventStore_InsertAndGetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	e := newTestEvent("ev-1", "2024-03-10")
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.GetByID(ctx, "user-1", "ev-1")
	require.NoError(t, err)

	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, "14:00", got.Time)
	assert.Equal(t, domain.EventBenefic, got.Type)
	assert.Equal(t, 8, got.Score)
	assert.Equal(t, domain.MethodAspects, got.TimingMethod)
	assert.Equal(t, e.Aspects, got.Aspects)
	assert.Equal(t, e.PlanetaryPositions, got.PlanetaryPositions)
	require.NotNil(t, got.TimeWindow)
	assert.Equal(t, "3 hours 36 minutes", got.TimeWindow.Duration)
	require.NotNil(t, got.ElectionalData)
	assert.True(t, got.ElectionalData.ElectionalReady)
	assert.Equal(t, domain.PhaseWaxingCrescent, got.ElectionalData.MoonPhase)
	assert.Equal(t, []string{"love"}, got.Priorities)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
}

func TestEventStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	e := newTestEvent("ev-1", "2024-03-10")
	require.NoError(t, store.Insert(ctx, e))

	err := store.Insert(ctx, e)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The same id under another user is a different event
	other := newTestEvent("ev-1", "2024-03-10")
	other.UserID = "user-2"
	assert.NoError(t, store.Insert(ctx, other))
}

func TestEventStore_InsertBulkRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, newTestEvent("ev-2", "2024-03-11")))

	err := store.InsertBulk(ctx, []*domain.Event{
		newTestEvent("ev-1", "2024-03-10"),
		newTestEvent("ev-2", "2024-03-11"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "user-1", "ev-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventStore_ListByDateRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	late := newTestEvent("ev-b", "2024-03-10")
	late.Time = "18:00"
	require.NoError(t, store.InsertBulk(ctx, []*domain.Event{
		newTestEvent("ev-c", "2024-04-02"),
		late,
		newTestEvent("ev-a", "2024-03-10"),
		newTestEvent("ev-d", "2024-03-31"),
	}))

	all, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, []string{"ev-a", "ev-b", "ev-d", "ev-c"}, []string{all[0].ID, all[1].ID, all[2].ID, all[3].ID})

	march, err := store.ListByDateRange(ctx, "user-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, march, 3)
}

func TestEventStore_UpdateAndDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	e := newTestEvent("ev-1", "2024-03-10")
	require.NoError(t, store.Insert(ctx, e))

	e.Title = "Renamed"
	e.IsBookmarked = true
	require.NoError(t, store.Update(ctx, e))

	got, err := store.GetByID(ctx, "user-1", "ev-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.IsBookmarked)

	assert.ErrorIs(t, store.Update(ctx, newTestEvent("missing", "2024-03-10")), storage.ErrNotFound)

	require.NoError(t, store.Delete(ctx, "user-1", "ev-1"))
	assert.ErrorIs(t, store.Delete(ctx, "user-1", "ev-1"), storage.ErrNotFound)
}

func TestEventStore_DeleteGenerated(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewEventStore(pool)
	ctx := context.Background()

	bookmarked := newTestEvent("bookmarked", "2024-03-12")
	bookmarked.IsBookmarked = true
	manual := newTestEvent("manual", "2024-03-14")
	manual.IsGenerated = false
	require.NoError(t, store.InsertBulk(ctx, []*domain.Event{
		newTestEvent("gen-march", "2024-03-10"),
		newTestEvent("gen-april", "2024-04-10"),
		bookmarked,
		manual,
	}))

	n, err := store.DeleteGenerated(ctx, "user-1", &domain.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.DeleteGenerated(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, "bookmarked", left[0].ID)
	assert.Equal(t, "manual", left[1].ID)
}

func TestGenerationRunStore_SaveAndLatest(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewGenerationRunStore(pool)
	ctx := context.Background()

	_, err := store.GetLatest(ctx, "user-1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := &storage.GenerationRun{
		ID:         "run-1",
		UserID:     "user-1",
		State:      "scanning",
		Priorities: []string{"love", "career"},
		RangeStart: start,
		RangeEnd:   start.AddDate(0, 1, 0),
		StartedAt:  start,
	}
	require.NoError(t, store.Save(ctx, run))

	finished := start.Add(2 * time.Minute)
	run.State = "completed"
	run.EventsFound = 12
	run.EventsSaved = 9
	run.FinishedAt = &finished
	require.NoError(t, store.Save(ctx, run))

	got, err := store.GetLatest(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.State)
	assert.Equal(t, 9, got.EventsSaved)
	assert.Equal(t, []string{"love", "career"}, got.Priorities)
	require.NotNil(t, got.FinishedAt)
	assert.True(t, finished.Equal(*got.FinishedAt))
}
