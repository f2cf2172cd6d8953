package storage

import (
	"context"
	"time"
)

// GenerationRun records one optimal timing generation.
type GenerationRun struct {
	ID          string
	UserID      string
	State       string
	Priorities  []string
	RangeStart  time.Time
	RangeEnd    time.Time
	EventsFound int
	EventsSaved int
	Warning     string
	StartedAt   time.Time
	FinishedAt  *time.Time
}

// GenerationRunStore persists generation runs so a caller can show the last run after a restart.
type GenerationRunStore interface {
	// Save inserts or replaces a run by id.
	Save(ctx context.Context, run *GenerationRun) error

	// GetLatest returns the most recently started run of a user.
	// Returns ErrNotFound if the user has no runs.
	GetLatest(ctx context.Context, userID string) (*GenerationRun, error)
}
