package reporting

import (
	"fmt"
	"strings"
	"time"

	"electional-engine/internal/domain"
)

// maxMarkdownEvents bounds the ranked event table.
const maxMarkdownEvents = 25

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Optimal Timing Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("User: %s | Run: %s | State: %s\n\n", r.UserID, r.Run.ID, r.Run.State))

	// Run
	sb.WriteString("## Run\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Range | %s to %s |\n",
		r.Run.RangeStart.Format(domain.DateLayout), r.Run.RangeEnd.Format(domain.DateLayout)))
	sb.WriteString(fmt.Sprintf("| Priorities | %s |\n", strings.Join(r.Run.Priorities, ", ")))
	sb.WriteString(fmt.Sprintf("| Candidates Selected | %d |\n", r.Run.EventsFound))
	sb.WriteString(fmt.Sprintf("| Events Saved | %d |\n", r.Run.EventsSaved))
	sb.WriteString("\n")
	if r.Run.Warning != "" {
		sb.WriteString(fmt.Sprintf("**Warning:** %s\n\n", r.Run.Warning))
	}

	// Summary
	s := r.Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Generated Events | %d |\n", s.TotalEvents))
	sb.WriteString(fmt.Sprintf("| Benefic | %d |\n", s.Benefic))
	sb.WriteString(fmt.Sprintf("| Neutral | %d |\n", s.Neutral))
	sb.WriteString(fmt.Sprintf("| Challenging | %d |\n", s.Challenging))
	sb.WriteString(fmt.Sprintf("| Bookmarked | %d |\n", s.Bookmarked))
	sb.WriteString(fmt.Sprintf("| Confirmed | %d |\n", s.Confirmed))
	sb.WriteString(fmt.Sprintf("| Local Only | %d |\n", s.LocalOnly))
	sb.WriteString(fmt.Sprintf("| Mean Score | %.2f |\n", s.MeanScore))
	sb.WriteString(fmt.Sprintf("| Best Score | %d |\n", s.BestScore))
	sb.WriteString("\n")

	// Methods
	sb.WriteString("## Timing Methods\n\n")
	sb.WriteString("| Method | Events | Mean | Best |\n")
	sb.WriteString("|--------|--------|------|------|\n")
	for _, m := range r.Methods {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %d |\n", m.Method, m.Events, m.MeanScore, m.BestScore))
	}
	sb.WriteString("\n")

	// Days
	sb.WriteString("## Calendar Heat\n\n")
	if len(r.Days) > 0 {
		sb.WriteString("| Date | Score | Band | Aspects | Events | Best Window |\n")
		sb.WriteString("|------|-------|------|---------|--------|-------------|\n")
		for _, d := range r.Days {
			band := d.Band
			if d.Fallback {
				band += " (fallback)"
			}
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %d | %d | %s |\n",
				d.Date.Format(domain.DateLayout), d.Score, band, d.AspectCount, d.Events, escapeCell(d.TopTitle)))
		}
	} else {
		sb.WriteString("No scanned days.\n")
	}
	sb.WriteString("\n")

	// Events
	sb.WriteString("## Best Windows\n\n")
	if len(r.Events) > 0 {
		sb.WriteString("| Date | Time | Window | Score | Type | Method | Title |\n")
		sb.WriteString("|------|------|--------|-------|------|--------|-------|\n")
		for i, e := range r.Events {
			if i == maxMarkdownEvents {
				sb.WriteString(fmt.Sprintf("\n%d more events in the CSV export.\n", len(r.Events)-maxMarkdownEvents))
				break
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %s | %s | %s |\n",
				e.Date, e.Time, e.Window, e.Score, e.Type, e.Method, escapeCell(e.Title)))
		}
	} else {
		sb.WriteString("No generated events.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
