// Package sqlite keeps calendar events in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// EventStore implements storage.EventStore on a SQLite database file.
type EventStore struct {
	db *sql.DB
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*EventStore, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open event db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping event db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply event schema: %w", err)
	}
	return &EventStore{db: db}, nil
}

// Close closes the database.
func (s *EventStore) Close() error {
	return s.db.Close()
}

const eventColumns = `user_id, id, title, event_date, event_time, event_type, description,
	score, is_generated, is_bookmarked, timing_method, details, created_at`

const insertEventQuery = `INSERT INTO events (` + eventColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, x execer, e *domain.Event) error {
	if !storage.ValidKey(e) {
		return storage.ErrInvalidInput
	}
	if _, err := e.Day(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}
	details, err := storage.EncodeDetails(e)
	if err != nil {
		return err
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = x.ExecContext(ctx, insertEventQuery,
		e.UserID, e.ID, e.Title, e.Date, e.Time, string(e.Type), e.Description,
		e.Score, e.IsGenerated, e.IsBookmarked, string(e.TimingMethod), string(details),
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event %s: %w", e.ID, err)
	}
	return nil
}

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	return insert(ctx, s.db, e)
}

// InsertBulk adds multiple events atomically. Fails entire batch on any duplicate.
func (s *EventStore) InsertBulk(ctx context.Context, events []*domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if err := insert(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetByID retrieves one event of a user. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(ctx context.Context, userID, id string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE user_id = ? AND id = ?`, userID, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListByUser retrieves all events of a user, ordered by date, time, id.
func (s *EventStore) ListByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE user_id = ?
		ORDER BY event_date, event_time, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByDateRange retrieves events dated within [start, end] (inclusive, by day).
func (s *EventStore) ListByDateRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE user_id = ? AND event_date >= ? AND event_date <= ?
		ORDER BY event_date, event_time, id`,
		userID, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
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
	details, err := storage.EncodeDetails(e)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET
			title = ?, event_date = ?, event_time = ?, event_type = ?, description = ?,
			score = ?, is_generated = ?, is_bookmarked = ?, timing_method = ?, details = ?
		WHERE user_id = ? AND id = ?`,
		e.Title, e.Date, e.Time, string(e.Type), e.Description,
		e.Score, e.IsGenerated, e.IsBookmarked, string(e.TimingMethod), string(details),
		e.UserID, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an event. Returns ErrNotFound if not exists.
func (s *EventStore) Delete(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return requireAffected(res)
}

// DeleteGenerated removes generated, non-bookmarked events of a user.
func (s *EventStore) DeleteGenerated(ctx context.Context, userID string, within *domain.DateRange) (int, error) {
	query := `DELETE FROM events WHERE user_id = ? AND is_generated = 1 AND is_bookmarked = 0`
	args := []any{userID}
	if within != nil {
		query += ` AND event_date >= ? AND event_date <= ?`
		args = append(args, within.Start.Format(domain.DateLayout), within.End.Format(domain.DateLayout))
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete generated events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode() == sqlite3.CONSTRAINT_PRIMARYKEY
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		e         domain.Event
		typ       string
		method    string
		details   string
		createdAt string
	)
	err := row.Scan(
		&e.UserID, &e.ID, &e.Title, &e.Date, &e.Time, &typ, &e.Description,
		&e.Score, &e.IsGenerated, &e.IsBookmarked, &method, &details, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	e.Type = domain.EventType(typ)
	e.TimingMethod = domain.TimingMethod(method)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		e.CreatedAt = t
	}
	if err := storage.DecodeDetails([]byte(details), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
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
