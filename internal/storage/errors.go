package storage

import "errors"

// Sentinels returned by every store backend. Callers match them with errors.Is;
// backends wrap driver errors around them.
var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey rejects an insert whose (user, id) already exists.
	// InsertBulk is all-or-nothing, so one duplicate fails the batch.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput rejects records that fail validation before reaching a backend.
	ErrInvalidInput = errors.New("invalid input")
)
