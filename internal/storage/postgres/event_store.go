package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const eventColumns = `
	user_id, id, title, event_date, event_time, event_type, description,
	score, is_generated, is_bookmarked, timing_method, details, created_at`

const insertEventQuery = `
	INSERT INTO events (` + eventColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

func eventArgs(e *domain.Event) ([]any, error) {
	day, err := e.Day()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	details, err := storage.EncodeDetails(e)
	if err != nil {
		return nil, err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return []any{
		e.UserID, e.ID, e.Title, day, e.Time, string(e.Type), e.Description,
		e.Score, e.IsGenerated, e.IsBookmarked, string(e.TimingMethod), details, createdAt,
	}, nil
}

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	if !storage.ValidKey(e) {
		return storage.ErrInvalidInput
	}
	args, err := eventArgs(e)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, insertEventQuery, args...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		if !storage.ValidKey(e) {
			return storage.ErrInvalidInput
		}
		args, err := eventArgs(e)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, insertEventQuery, args...); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert event %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID retrieves one event of a user. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(ctx context.Context, userID, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 AND id = $2`

	e, err := scanEvent(s.pool.QueryRow(ctx, query, userID, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListByUser retrieves all events of a user, ordered by date, time, id.
func (s *EventStore) ListByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1
		ORDER BY event_date ASC, event_time ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListByDateRange retrieves events dated within [start, end] (inclusive, by day).
func (s *EventStore) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE user_id = $1 AND event_date >= $2 AND event_date <= $3
		ORDER BY event_date ASC, event_time ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("query events by date range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Update replaces the mutable fields of an event. Returns ErrNotFound if not exists.
func (s *EventStore) Update(ctx context.Context, e *domain.Event) error {
	if !storage.ValidKey(e) {
		return storage.ErrInvalidInput
	}
	day, err := e.Day()
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	details, err := storage.EncodeDetails(e)
	if err != nil {
		return err
	}

	query := `
		UPDATE events SET
			title = $3, event_date = $4, event_time = $5, event_type = $6,
			description = $7, score = $8, is_generated = $9, is_bookmarked = $10,
			timing_method = $11, details = $12
		WHERE user_id = $1 AND id = $2
	`
	tag, err := s.pool.Exec(ctx, query,
		e.UserID, e.ID, e.Title, day, e.Time, string(e.Type),
		e.Description, e.Score, e.IsGenerated, e.IsBookmarked,
		string(e.TimingMethod), details,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes an event. Returns ErrNotFound if not exists.
func (s *EventStore) Delete(ctx context.Context, userID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteGenerated removes generated, non-bookmarked events of a user.
func (s *EventStore) DeleteGenerated(ctx context.Context, userID string, within *domain.DateRange) (int, error) {
	query := `DELETE FROM events WHERE user_id = $1 AND is_generated AND NOT is_bookmarked`
	args := []any{userID}
	if within != nil {
		query += ` AND event_date >= $2 AND event_date <= $3`
		args = append(args, dateOnly(within.Start), dateOnly(within.End))
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete generated events: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// scanEvent scans a single row into Event.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e       domain.Event
		day     time.Time
		typ     string
		method  string
		details []byte
	)
	err := row.Scan(
		&e.UserID, &e.ID, &e.Title, &day, &e.Time, &typ, &e.Description,
		&e.Score, &e.IsGenerated, &e.IsBookmarked, &method, &details, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Date = day.Format(domain.DateLayout)
	e.Type = domain.EventType(typ)
	e.TimingMethod = domain.TimingMethod(method)
	e.CreatedAt = e.CreatedAt.UTC()
	if err := storage.DecodeDetails(details, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// scanEvents scans multiple rows into Event slice.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
