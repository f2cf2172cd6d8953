package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

func setupStore(t *testing.T) *EventStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvent(id, date string) *domain.Event {
	return &domain.Event{
		ID:           id,
		UserID:       "user-1",
		Title:        "Sun Sextile Jupiter",
		Date:         date,
		Time:         "09:00",
		Type:         domain.EventBenefic,
		Description:  "Astrologically calculated optimal timing (Score: 7/10).",
		Aspects:      []string{"sun sextile jupiter (2.0°)"},
		Score:        7,
		IsGenerated:  true,
		TimingMethod: domain.MethodHouses,
		ChartData: &domain.ChartSnapshot{
			Planets: []domain.PlanetPosition{{Body: domain.Moon, Longitude: 45.5, Sign: domain.Taurus}},
		},
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestEventStore_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	e := sampleEvent("ev-1", "2024-03-10")
	require.NoError(t, s.Insert(ctx, e))

	got, err := s.GetByID(ctx, "user-1", "ev-1")
	require.NoError(t, err)
	assert.Equal(t, e.Title, got.Title)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, domain.MethodHouses, got.TimingMethod)
	assert.True(t, got.IsGenerated)
	assert.False(t, got.IsBookmarked)
	assert.Equal(t, e.Aspects, got.Aspects)
	moon, ok := got.ChartData.Planet(domain.Moon)
	require.True(t, ok)
	assert.Equal(t, domain.Taurus, moon.Sign)
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))

	_, err = s.GetByID(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEventStore_Duplicates(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, sampleEvent("ev-1", "2024-03-10")))
	assert.ErrorIs(t, s.Insert(ctx, sampleEvent("ev-1", "2024-03-10")), storage.ErrDuplicateKey)

	err := s.InsertBulk(ctx, []*domain.Event{
		sampleEvent("ev-2", "2024-03-11"),
		sampleEvent("ev-1", "2024-03-10"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = s.GetByID(ctx, "user-1", "ev-2")
	assert.ErrorIs(t, err, storage.ErrNotFound, "failed batch must roll back")
}

func TestEventStore_InvalidDate(t *testing.T) {
	s := setupStore(t)

	e := sampleEvent("ev-1", "10/03/2024")
	assert.ErrorIs(t, s.Insert(context.Background(), e), storage.ErrInvalidInput)
}

func TestEventStore_RangeUpdateDelete(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	bookmarked := sampleEvent("bookmarked", "2024-03-20")
	bookmarked.IsBookmarked = true
	require.NoError(t, s.InsertBulk(ctx, []*domain.Event{
		sampleEvent("a", "2024-03-05"),
		sampleEvent("b", "2024-04-05"),
		bookmarked,
	}))

	march, err := s.ListByDateRange(ctx, "user-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, march, 2)
	assert.Equal(t, "a", march[0].ID)

	a := march[0]
	a.Title = "Renamed"
	require.NoError(t, s.Update(ctx, a))
	got, err := s.GetByID(ctx, "user-1", "a")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	n, err := s.DeleteGenerated(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bookmarked", left[0].ID)

	require.NoError(t, s.Delete(ctx, "user-1", "bookmarked"))
	assert.ErrorIs(t, s.Delete(ctx, "user-1", "bookmarked"), storage.ErrNotFound)
}
