package memory

import (
	"context"
	"sync"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Event // keyed by user_id|id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.Event),
	}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

func key(userID, id string) string {
	return userID + "|" + id
}

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if !storage.ValidKey(e) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(e.UserID, e.ID)
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	// Store a copy to prevent external mutation
	s.data[k] = e.Clone()
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(_ context.Context, events []*domain.Event) error {
	for _, e := range events {
		if !storage.ValidKey(e) {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		k := key(e.UserID, e.ID)
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, e := range events {
		s.data[key(e.UserID, e.ID)] = e.Clone()
	}
	return nil
}

// GetByID retrieves one event of a user. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(_ context.Context, userID, id string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[key(userID, id)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return e.Clone(), nil
}

// ListByUser retrieves all events of a user, ordered by date, time, id.
func (s *EventStore) ListByUser(_ context.Context, userID string) ([]*domain.Event, error) {
	return s.list(userID, nil), nil
}

// ListByDateRange retrieves events dated within [start, end] (inclusive, by day).
func (s *EventStore) ListByDateRange(_ context.Context, userID string, start, end time.Time) ([]*domain.Event, error) {
	return s.list(userID, &domain.DateRange{Start: start, End: end}), nil
}

func (s *EventStore) list(userID string, within *domain.DateRange) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if e.UserID == userID && storage.InRange(e, within) {
			result = append(result, e.Clone())
		}
	}
	storage.SortEvents(result)
	return result
}

// Update replaces the mutable fields of an event. Returns ErrNotFound if not exists.
func (s *EventStore) Update(_ context.Context, e *domain.Event) error {
	if !storage.ValidKey(e) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(e.UserID, e.ID)
	existing, exists := s.data[k]
	if !exists {
		return storage.ErrNotFound
	}

	updated := e.Clone()
	updated.CreatedAt = existing.CreatedAt
	s.data[k] = updated
	return nil
}

// Delete removes an event. Returns ErrNotFound if not exists.
func (s *EventStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, id)
	if _, exists := s.data[k]; !exists {
		return storage.ErrNotFound
	}
	delete(s.data, k)
	return nil
}

// DeleteGenerated removes generated, non-bookmarked events of a user.
func (s *EventStore) DeleteGenerated(_ context.Context, userID string, within *domain.DateRange) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.data {
		if e.UserID == userID && e.IsGenerated && !e.IsBookmarked && storage.InRange(e, within) {
			delete(s.data, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored events across all users.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
