package reporting

import "time"

// Report summarizes the latest generation run of a user.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	UserID      string
	Run         RunSection

	// Summary of the generated events in the run range
	Summary Summary

	// Per-method breakdown (sorted by scan order)
	Methods []MethodRow

	// Calendar heat, one row per day (sorted by date)
	Days []DayRow

	// Generated events ranked by score, then date and time
	Events []EventRow
}

// RunSection describes the run a report covers.
type RunSection struct {
	ID          string
	State       string
	Priorities  []string
	RangeStart  time.Time
	RangeEnd    time.Time
	EventsFound int
	EventsSaved int
	Warning     string
}

// Summary counts generated events by classification and persistence state.
type Summary struct {
	TotalEvents int
	Benefic     int
	Neutral     int
	Challenging int
	Bookmarked  int
	Confirmed   int
	LocalOnly   int
	MeanScore   float64
	BestScore   int
}

// MethodRow aggregates the events one timing method produced.
type MethodRow struct {
	Method    string
	Events    int
	MeanScore float64
	BestScore int
}

// DayRow is the heat and event count of one scanned day.
type DayRow struct {
	Date        time.Time
	Score       int
	Type        string
	Band        string
	AspectCount int
	Fallback    bool
	Events      int
	TopTitle    string
}

// EventRow is one generated event.
type EventRow struct {
	ID         string
	Date       string
	Time       string
	Title      string
	Score      int
	Type       string
	Method     string
	Window     string
	State      string
	Bookmarked bool
}
