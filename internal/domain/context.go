package domain

import "time"

// MoonPhase is one of the eight named lunar phases.
type MoonPhase string

const (
	PhaseNew            MoonPhase = "new"
	PhaseWaxingCrescent MoonPhase = "waxing_crescent"
	PhaseFirstQuarter   MoonPhase = "first_quarter"
	PhaseWaxingGibbous  MoonPhase = "waxing_gibbous"
	PhaseFull           MoonPhase = "full"
	PhaseWaningGibbous  MoonPhase = "waning_gibbous"
	PhaseLastQuarter    MoonPhase = "last_quarter"
	PhaseWaningCrescent MoonPhase = "waning_crescent"
)

// MoonPhases in cycle order.
var MoonPhases = []MoonPhase{
	PhaseNew, PhaseWaxingCrescent, PhaseFirstQuarter, PhaseWaxingGibbous,
	PhaseFull, PhaseWaningGibbous, PhaseLastQuarter, PhaseWaningCrescent,
}

// String returns the string representation of MoonPhase.
func (p MoonPhase) String() string {
	return string(p)
}

// IsValid checks if the phase is a known value.
func (p MoonPhase) IsValid() bool {
	return p.Index() >= 0
}

// Index returns the position of the phase in the cycle, or -1.
func (p MoonPhase) Index() int {
	for i, known := range MoonPhases {
		if p == known {
			return i
		}
	}
	return -1
}

// IsWaxing reports whether the phase lies in the waxing half (new through waxing gibbous).
func (p MoonPhase) IsWaxing() bool {
	idx := p.Index()
	return idx >= 0 && idx <= 3
}

// IsWaning reports whether the phase lies strictly after full.
func (p MoonPhase) IsWaning() bool {
	return p.Index() >= 5
}

// MercuryStatus is the retrograde state of Mercury.
// MercuryUnknown is returned outside the known retrograde table; it is never coerced to direct.
type MercuryStatus string

const (
	MercuryDirect     MercuryStatus = "direct"
	MercuryRetrograde MercuryStatus = "retrograde"
	MercuryUnknown    MercuryStatus = "unknown"
)

// String returns the string representation of MercuryStatus.
func (s MercuryStatus) String() string {
	return string(s)
}

// DateRange is an inclusive range of instants.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, inclusive.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// AstronomicalContext is the per-date lunar and Mercury state.
type AstronomicalContext struct {
	Date              time.Time
	MoonPhase         MoonPhase
	Illumination      int     // 0-100
	CyclePosition     float64 // days since the most recent new moon
	DaysToNextNew     float64
	DaysToNextFull    float64
	MercuryStatus     MercuryStatus
	MercuryRetrograde bool       // true only when the table positively says retrograde
	WaxingWindow      *DateRange // most recent (or next) new moon through the following full moon
	NextRetrograde    *time.Time // start of the next retrograde period in the table
	NextDirect        *time.Time // end of the current or next retrograde period
}
