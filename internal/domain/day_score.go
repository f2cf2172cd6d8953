package domain

import "time"

// DayScore is the calendar heat of one day for one user.
type DayScore struct {
	UserID      string    `json:"userId"`
	Date        time.Time `json:"date"` // UTC midnight
	Score       int       `json:"score"`
	Type        EventType `json:"type"`
	Band        string    `json:"band"`
	AspectCount int       `json:"aspectCount"`
	Fallback    bool      `json:"fallback"` // computed from the illustrative fallback aspect set
	ComputedAt  time.Time `json:"computedAt"`
}
