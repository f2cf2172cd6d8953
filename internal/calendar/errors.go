package calendar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEvents is returned when a batch holds records that cannot be persisted.
	ErrInvalidEvents = errors.New("invalid events")

	// ErrRemoteUnavailable marks a failed write to the remote store.
	// The change is kept locally and reported as a warning.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrNoChart is returned by Rescore for events without chart data.
	ErrNoChart = errors.New("event has no chart data")
)

// RequiredFields names the fields every persisted event must carry.
const RequiredFields = "userId, title, date, type, description"

// ValidationError counts the invalid records of a rejected batch.
type ValidationError struct {
	MissingFields int
	InvalidType   int
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.MissingFields > 0 {
		parts = append(parts, fmt.Sprintf("%d events missing required fields (%s)", e.MissingFields, RequiredFields))
	}
	if e.InvalidType > 0 {
		parts = append(parts, fmt.Sprintf("%d events have invalid type", e.InvalidType))
	}
	return strings.Join(parts, ", ")
}

// Unwrap lets callers match ErrInvalidEvents with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidEvents
}
