package postgres

import (
	"context"
	"fmt"

	"electional-engine/internal/storage"
)

// GenerationRunStore implements storage.GenerationRunStore using PostgreSQL.
type GenerationRunStore struct {
	pool *Pool
}

// NewGenerationRunStore creates a new GenerationRunStore.
func NewGenerationRunStore(pool *Pool) *GenerationRunStore {
	return &GenerationRunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.GenerationRunStore = (*GenerationRunStore)(nil)

// Save inserts or replaces a run by id.
func (s *GenerationRunStore) Save(ctx context.Context, run *storage.GenerationRun) error {
	if run == nil || run.ID == "" || run.UserID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO generation_runs (
			id, user_id, state, priorities, range_start, range_end,
			events_found, events_saved, warning, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			priorities = EXCLUDED.priorities,
			range_start = EXCLUDED.range_start,
			range_end = EXCLUDED.range_end,
			events_found = EXCLUDED.events_found,
			events_saved = EXCLUDED.events_saved,
			warning = EXCLUDED.warning,
			finished_at = EXCLUDED.finished_at
	`
	priorities := run.Priorities
	if priorities == nil {
		priorities = []string{}
	}

	_, err := s.pool.Exec(ctx, query,
		run.ID, run.UserID, run.State, priorities, run.RangeStart, run.RangeEnd,
		run.EventsFound, run.EventsSaved, run.Warning, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("save generation run: %w", err)
	}
	return nil
}

// GetLatest returns the most recently started run of a user.
func (s *GenerationRunStore) GetLatest(ctx context.Context, userID string) (*storage.GenerationRun, error) {
	query := `
		SELECT id, user_id, state, priorities, range_start, range_end,
			events_found, events_saved, warning, started_at, finished_at
		FROM generation_runs
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var r storage.GenerationRun
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&r.ID, &r.UserID, &r.State, &r.Priorities, &r.RangeStart, &r.RangeEnd,
		&r.EventsFound, &r.EventsSaved, &r.Warning, &r.StartedAt, &r.FinishedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest generation run: %w", err)
	}
	return &r, nil
}
