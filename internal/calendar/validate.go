package calendar

import (
	"strings"

	"electional-engine/internal/domain"
)

// Validate checks a batch before anything is written. A record with a missing
// field counts once as missing even when its type is also wrong.
func Validate(events []*domain.Event) error {
	var v ValidationError
	for _, e := range events {
		switch {
		case e == nil || missingField(e):
			v.MissingFields++
		case !e.Type.IsValid():
			v.InvalidType++
		}
	}
	if v.MissingFields == 0 && v.InvalidType == 0 {
		return nil
	}
	return &v
}

func missingField(e *domain.Event) bool {
	return e.UserID == "" ||
		strings.TrimSpace(e.Title) == "" ||
		e.Date == "" ||
		e.Type == "" ||
		strings.TrimSpace(e.Description) == ""
}
