// Package astrocontext derives lunar, Mercury and chart-level heuristic context for a date.
package astrocontext

import (
	"math"
	"time"

	"electional-engine/internal/domain"
)

// SynodicMonth is the mean lunation length in days.
const SynodicMonth = 29.53059

// fullMoonOffset is the cycle position of the full moon boundary used by the waxing window.
const fullMoonOffset = 14.76

// NewMoonEpoch is the reference new moon the cycle is anchored on.
var NewMoonEpoch = time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

// CyclePosition returns days since the most recent new moon, in [0, SynodicMonth).
func CyclePosition(t time.Time) float64 {
	days := t.Sub(NewMoonEpoch).Hours() / 24
	return math.Mod(math.Mod(days, SynodicMonth)+SynodicMonth, SynodicMonth)
}

// PhaseAt maps a cycle position onto the eight named phases with a linear
// illumination estimate between the boundary phases.
func PhaseAt(pos float64) (domain.MoonPhase, int) {
	var phase domain.MoonPhase
	var illum float64

	switch {
	case pos < 1:
		phase, illum = domain.PhaseNew, 0
	case pos < 7.38:
		phase, illum = domain.PhaseWaxingCrescent, pos/7.38*50
	case pos < 8.38:
		phase, illum = domain.PhaseFirstQuarter, 50
	case pos < 14.76:
		phase, illum = domain.PhaseWaxingGibbous, 50+(pos-8.38)/6.38*50
	case pos < 15.76:
		phase, illum = domain.PhaseFull, 100
	case pos < 22.14:
		phase, illum = domain.PhaseWaningGibbous, 100-(pos-15.76)/6.38*50
	case pos < 23.14:
		phase, illum = domain.PhaseLastQuarter, 50
	default:
		phase, illum = domain.PhaseWaningCrescent, 50-(pos-23.14)/6.39*50
	}

	return phase, clampPercent(int(math.Round(illum)))
}

// DaysToNextNew returns days until the next new moon.
func DaysToNextNew(pos float64) float64 {
	return SynodicMonth - pos
}

// DaysToNextFull returns days until the next full moon.
func DaysToNextFull(pos float64) float64 {
	if pos < fullMoonOffset {
		return fullMoonOffset - pos
	}
	return SynodicMonth - pos + fullMoonOffset
}

// WaxingWindow returns the range from new moon to the following full moon.
// During the waxing half it is anchored on the most recent new moon, otherwise on the next one.
func WaxingWindow(t time.Time) domain.DateRange {
	pos := CyclePosition(t)
	phase, _ := PhaseAt(pos)

	var start time.Time
	if phase.IsWaxing() {
		start = t.Add(-daysToDuration(pos))
	} else {
		start = t.Add(daysToDuration(DaysToNextNew(pos)))
	}

	return domain.DateRange{Start: start, End: start.Add(daysToDuration(fullMoonOffset))}
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * float64(day))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
