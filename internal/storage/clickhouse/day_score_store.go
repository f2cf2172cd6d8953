package clickhouse

import (
	"context"
	"fmt"
	"time"

	"electional-engine/internal/domain"
	"electional-engine/internal/storage"
)

// DayScoreStore implements storage.DayScoreStore using ClickHouse.
// Rows for the same (user, date) collapse to the latest computed_at.
type DayScoreStore struct {
	conn *Conn
}

// NewDayScoreStore creates a new DayScoreStore.
func NewDayScoreStore(conn *Conn) *DayScoreStore {
	return &DayScoreStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DayScoreStore = (*DayScoreStore)(nil)

// InsertBulk writes day scores in one batch.
func (s *DayScoreStore) InsertBulk(ctx context.Context, scores []*domain.DayScore) error {
	start := time.Now()
	err := s.insertBulk(ctx, scores)
	observe("insert", start, err)
	return err
}

func (s *DayScoreStore) insertBulk(ctx context.Context, scores []*domain.DayScore) error {
	if len(scores) == 0 {
		return nil
	}
	for _, d := range scores {
		if d == nil || d.UserID == "" || d.Date.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO day_scores (
			user_id, date, score, event_type, band, aspect_count, fallback, computed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, d := range scores {
		computedAt := d.ComputedAt
		if computedAt.IsZero() {
			computedAt = time.Now().UTC()
		}
		err = batch.Append(
			d.UserID, dateOnly(d.Date), uint8(d.Score), string(d.Type), d.Band,
			uint16(d.AspectCount), d.Fallback, computedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRange retrieves the latest score per day within [start, end], ordered by date.
func (s *DayScoreStore) GetByRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.DayScore, error) {
	began := time.Now()
	out, err := s.getByRange(ctx, userID, start, end)
	observe("select", began, err)
	return out, err
}

func (s *DayScoreStore) getByRange(ctx context.Context, userID string, start, end time.Time) ([]*domain.DayScore, error) {
	query := `
		SELECT user_id, date, score, event_type, band, aspect_count, fallback, computed_at
		FROM day_scores FINAL
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, userID, dateOnly(start), dateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("query day scores: %w", err)
	}
	defer rows.Close()

	var result []*domain.DayScore
	for rows.Next() {
		var (
			d           domain.DayScore
			score       uint8
			typ         string
			aspectCount uint16
		)
		if err := rows.Scan(
			&d.UserID, &d.Date, &score, &typ, &d.Band, &aspectCount, &d.Fallback, &d.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan day score: %w", err)
		}
		d.Score = int(score)
		d.Type = domain.EventType(typ)
		d.AspectCount = int(aspectCount)
		d.Date = dateOnly(d.Date)
		d.ComputedAt = d.ComputedAt.UTC()
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day scores: %w", err)
	}
	return result, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
