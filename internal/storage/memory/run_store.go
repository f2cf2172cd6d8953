package memory

import (
	"context"
	"sync"

	"electional-engine/internal/storage"
)

// GenerationRunStore is an in-memory implementation of storage.GenerationRunStore.
type GenerationRunStore struct {
	mu   sync.RWMutex
	runs map[string]*storage.GenerationRun
}

// NewGenerationRunStore creates a new in-memory run store.
func NewGenerationRunStore() *GenerationRunStore {
	return &GenerationRunStore{
		runs: make(map[string]*storage.GenerationRun),
	}
}

// Compile-time interface check.
var _ storage.GenerationRunStore = (*GenerationRunStore)(nil)

// Save inserts or replaces a run by id.
func (s *GenerationRunStore) Save(_ context.Context, run *storage.GenerationRun) error {
	if run == nil || run.ID == "" || run.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	runCopy := *run
	runCopy.Priorities = append([]string(nil), run.Priorities...)
	s.runs[run.ID] = &runCopy
	return nil
}

// GetLatest returns the most recently started run of a user.
func (s *GenerationRunStore) GetLatest(_ context.Context, userID string) (*storage.GenerationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *storage.GenerationRun
	for _, r := range s.runs {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.StartedAt.After(latest.StartedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}

	runCopy := *latest
	return &runCopy, nil
}
