package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// DayScoreStore is an in-memory implementation of storage.DayScoreStore.
type DayScoreStore struct {
	mu   sync.RWMutex
	data map[string]*domain.DayScore // keyed by user_id|YYYY-MM-DD
}

// NewDayScoreStore creates a new in-memory day score store.
func NewDayScoreStore() *DayScoreStore {
	return &DayScoreStore{
		data: make(map[string]*domain.DayScore),
	}
}

// Compile-time interface check.
var _ storage.DayScoreStore = (*DayScoreStore)(nil)

// InsertBulk writes day scores, superseding earlier scores for the same day.
func (s *DayScoreStore) InsertBulk(_ context.Context, scores []*domain.DayScore) error {
	for _, d := range scores {
		if d == nil || d.UserID == "" || d.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range scores {
		k := d.UserID + "|" + d.Date.UTC().Format(domain.DateLayout)
		if prev, ok := s.data[k]; ok && prev.ComputedAt.After(d.ComputedAt) {
			continue
		}
		scoreCopy := *d
		s.data[k] = &scoreCopy
	}
	return nil
}

// GetByRange retrieves the latest score per day within [start, end] (inclusive), ordered by date.
func (s *DayScoreStore) GetByRange(_ context.Context, userID string, start, end time.Time) ([]*domain.DayScore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := start.UTC().Format(domain.DateLayout)
	to := end.UTC().Format(domain.DateLayout)

	var result []*domain.DayScore
	for _, d := range s.data {
		day := d.Date.UTC().Format(domain.DateLayout)
		if d.UserID == userID && day >= from && day <= to {
			scoreCopy := *d
			result = append(result, &scoreCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
