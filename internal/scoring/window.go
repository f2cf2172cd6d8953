package scoring

import (
	"fmt"
	"math"

	"electional-engine/internal/domain"
)

const lastMinuteOfDay = 24*60 - 1

// TimeWindow centers an effective window on at. Better scores get longer windows,
// benefic events are stretched and challenging ones shrunk. The window never
// crosses midnight.
func TimeWindow(at domain.ClockTime, score int, typ domain.EventType) domain.TimeWindow {
	hours := 1.5
	switch {
	case score >= 8:
		hours = 4
	case score >= 6:
		hours = 3
	case score >= 4:
		hours = 2.5
	}

	switch typ {
	case domain.EventBenefic:
		hours *= 1.2
	case domain.EventChallenging:
		hours *= 0.8
	}

	half := hours / 2 * 60
	center := float64(at)
	start := math.Max(0, center-half)
	end := math.Min(lastMinuteOfDay, center+half)

	startMin := int(math.Floor(start))
	endMin := int(math.Floor(end))

	return domain.TimeWindow{
		StartTime: domain.ClockTime(startMin).String(),
		EndTime:   domain.ClockTime(endMin).String(),
		Duration:  FormatDuration(int(math.Round(end - start))),
	}
}

// FormatDuration renders minutes as "N hours M minutes", omitting zero minutes,
// or just minutes under an hour.
func FormatDuration(minutes int) string {
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%d minute%s", m, plural(m))
	}
	out := fmt.Sprintf("%d hour%s", h, plural(h))
	if m > 0 {
		out += fmt.Sprintf(" %d minute%s", m, plural(m))
	}
	return out
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
