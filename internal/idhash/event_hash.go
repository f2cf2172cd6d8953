// Package idhash derives content hashes used to spot duplicate calendar events.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"electional-engine/internal/domain"
)

// ComputeEventHash returns the hex SHA-256 of date|time|title|score|type.
// Two events with equal hashes are the same entry for deduplication.
func ComputeEventHash(date, clock, title string, score int, typ domain.EventType) string {
	key := strings.Join([]string{date, clock, title, strconv.Itoa(score), string(typ)}, "|")
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// EventHash hashes the identifying fields of e.
func EventHash(e *domain.Event) string {
	return ComputeEventHash(e.Date, e.Time, e.Title, e.Score, e.Type)
}
