package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderCSV renders ranked events as CSV string.
func RenderCSV(events []EventRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	w.Write([]string{"id", "date", "time", "window", "score", "type", "method", "state", "bookmarked", "title"})

	// Rows
	for _, e := range events {
		w.Write([]string{
			e.ID,
			e.Date,
			e.Time,
			e.Window,
			strconv.Itoa(e.Score),
			e.Type,
			e.Method,
			e.State,
			strconv.FormatBool(e.Bookmarked),
			e.Title,
		})
	}
	w.Flush()

	return sb.String()
}

// RenderDaysCSV renders the calendar heat rows as CSV string.
func RenderDaysCSV(days []DayRow) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	w.Write([]string{"date", "score", "type", "band", "aspect_count", "fallback", "events", "top_title"})
	for _, d := range days {
		w.Write([]string{
			d.Date.Format("2006-01-02"),
			strconv.Itoa(d.Score),
			d.Type,
			d.Band,
			strconv.Itoa(d.AspectCount),
			strconv.FormatBool(d.Fallback),
			strconv.Itoa(d.Events),
			d.TopTitle,
		})
	}
	w.Flush()

	return sb.String()
}
