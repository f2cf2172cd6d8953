package storage

import (
	"context"
	"time"

	"electional-engine/internal/domain"
)

// EventStore provides access to calendar events. Events are scoped by user.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, events []*domain.Event) error

	// GetByID retrieves one event of a user. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, userID, id string) (*domain.Event, error)

	// ListByUser retrieves all events of a user, ordered by date, time, id.
	ListByUser(ctx context.Context, userID string) ([]*domain.Event, error)

	// ListByDateRange retrieves events dated within [start, end] (inclusive, by day).
	ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error)

	// Update replaces the mutable fields of an event. Returns ErrNotFound if not exists.
	Update(ctx context.Context, e *domain.Event) error

	// Delete removes an event. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, userID, id string) error

	// DeleteGenerated removes generated, non-bookmarked events of a user.
	// A nil range clears every date. Returns the number of deleted events.
	DeleteGenerated(ctx context.Context, userID string, within *domain.DateRange) (int, error)
}

// DayScoreStore provides access to per-day calendar heat.
type DayScoreStore interface {
	// InsertBulk writes day scores. A later score for the same (user, date) supersedes earlier ones.
	InsertBulk(ctx context.Context, scores []*domain.DayScore) error

	// GetByRange retrieves the latest score per day within [start, end] (inclusive), ordered by date.
	GetByRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.DayScore, error)
}
