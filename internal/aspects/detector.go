// Package aspects detects angular relationships between bodies and estimates their clock-time windows.
package aspects

import (
	"log"
	"math"
	"sort"
	"time"

	"electional-engine/internal/dignity"
	"electional-engine/internal/domain"
	"electional-engine/internal/ephemeris"
	"electional-engine/internal/observability"
)

// DefaultLimit is the number of strongest aspects kept per instant.
const DefaultLimit = 5

// allDayHours is the in-orb duration at or above which an aspect spans the whole day.
const allDayHours = 20.0

const (
	applyingSuffix   = " (Applying - future influence forming)"
	separatingSuffix = " (Separating - past influence)"
)

// Options configures a Detector.
type Options struct {
	Bodies  []domain.Body // defaults to domain.TrackedBodies
	Limit   int           // defaults to DefaultLimit
	Verbose bool
}

// Detector runs the aspect catalog over ephemeris positions.
type Detector struct {
	adapter *ephemeris.Adapter
	bodies  []domain.Body
	limit   int
	verbose bool
}

// NewDetector creates a Detector.
func NewDetector(adapter *ephemeris.Adapter, opts Options) *Detector {
	bodies := opts.Bodies
	if len(bodies) == 0 {
		bodies = domain.TrackedBodies
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Detector{
		adapter: adapter,
		bodies:  bodies,
		limit:   limit,
		verbose: opts.Verbose,
	}
}

// At returns the strongest aspects at t. Bodies whose position lookup fails are
// excluded from the scan and returned as skipped.
func (d *Detector) At(t time.Time) ([]domain.Aspect, []domain.Body) {
	observability.RecordAspectScan()

	positions, skipped := d.adapter.Positions(t, d.bodies)
	for _, b := range skipped {
		observability.RecordBodySkipped(b.String())
		d.log("skipping %s at %s", b, t.Format(time.RFC3339))
	}

	return Top(Find(positions, t), d.limit), skipped
}

// Daily returns the strongest aspects for a calendar day, evaluated at noon.
// When any body fails to resolve, the illustrative fallback set for the day is
// returned instead, flagged and counted as fallback data.
func (d *Detector) Daily(date time.Time) []domain.Aspect {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())

	found, skipped := d.At(noon)
	if len(skipped) > 0 {
		observability.RecordAspectFallback()
		log.Printf("[aspects] fallback aspect set used for %s: %d bodies unavailable %v",
			noon.Format(domain.DateLayout), len(skipped), skipped)
		return Fallback(noon)
	}
	return found
}

// Chart returns the noon chart of every body, outer planets included, with all
// aspects in orb. Unlike Daily it never falls back; unresolved bodies are listed
// in the snapshot's Skipped field.
func (d *Detector) Chart(date time.Time) *domain.ChartSnapshot {
	noon := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, date.Location())

	chart := d.adapter.Chart(noon, domain.Location{}, domain.AllBodies)
	positions, _ := d.adapter.Positions(noon, domain.AllBodies)
	chart.Aspects = Find(positions, noon)
	return chart
}

// Find evaluates every body pair against the catalog. ref supplies the clock
// time the window estimates are anchored on. Results are sorted but not truncated.
func Find(positions []ephemeris.Position, ref time.Time) []domain.Aspect {
	refMinutes := float64(ref.Hour()*60 + ref.Minute())

	var out []domain.Aspect
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if a, ok := match(positions[i], positions[j], refMinutes); ok {
				out = append(out, a)
			}
		}
	}

	Sort(out)
	return out
}

func match(p1, p2 ephemeris.Position, refMinutes float64) (domain.Aspect, bool) {
	sep := domain.Separation(p1.Longitude, p2.Longitude)

	for _, def := range domain.AspectCatalog {
		diff := math.Abs(sep - def.Angle)
		if diff > def.Orb {
			continue
		}

		a := domain.Aspect{
			Type:       def.Type,
			BodyA:      p1.Body,
			BodyB:      p2.Body,
			AngleDelta: sep,
			OrbUsed:    diff,
			Strength:   Strength(diff, def.Orb),
			Nature:     def.Nature,
			Applying:   isApplying(p1, p2, def.Angle, diff),
		}

		setWindow(&a, def.Orb, p1.Speed+p2.Speed, refMinutes)

		text := dignity.Interpret(def.Type, p1.Body, p2.Body)
		if a.Applying {
			text += applyingSuffix
		} else {
			text += separatingSuffix
		}
		a.Interpretation = text

		return a, true
	}
	return domain.Aspect{}, false
}

// Strength maps the deviation from exact onto [0,100], 100 being exact.
func Strength(diff, orb float64) int {
	if orb <= 0 {
		return 0
	}
	s := int(math.Round((1 - diff/orb) * 100))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// HoursInOrb is the estimated number of hours a pair stays inside the orb.
func HoursInOrb(orb, combinedSpeed float64) float64 {
	if combinedSpeed <= 0 {
		return math.Inf(1)
	}
	return 2 * orb / combinedSpeed * 24
}

// isApplying projects both bodies one hour ahead at average speed.
func isApplying(p1, p2 ephemeris.Position, angle, diff float64) bool {
	f1 := domain.NormalizeDegrees(p1.Longitude + p1.Speed/24)
	f2 := domain.NormalizeDegrees(p2.Longitude + p2.Speed/24)
	future := math.Abs(domain.Separation(f1, f2) - angle)
	return future < diff
}

// setWindow fills IsAllDay or the start/exact/end clock estimates.
// Times falling outside the reference day are left unknown.
func setWindow(a *domain.Aspect, orb, combinedSpeed, refMinutes float64) {
	if HoursInOrb(orb, combinedSpeed) >= allDayHours {
		a.IsAllDay = true
		return
	}

	offsetHours := a.OrbUsed / combinedSpeed * 24
	orbHours := orb / combinedSpeed * 24

	exact := refMinutes - offsetHours*60
	if a.Applying {
		exact = refMinutes + offsetHours*60
	}

	a.ExactTime = clock(exact)
	a.StartTime = clock(exact - orbHours*60)
	a.EndTime = clock(exact + orbHours*60)
}

func clock(minutes float64) *domain.ClockTime {
	m := int(math.Round(minutes))
	if m < 0 || m >= 24*60 {
		return nil
	}
	c := domain.ClockTime(m)
	return &c
}

// Sort orders aspects by strength descending. Ties go to applying aspects,
// then catalog order, then body order.
func Sort(aspects []domain.Aspect) {
	sort.SliceStable(aspects, func(i, j int) bool {
		a, b := aspects[i], aspects[j]
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		if a.Applying != b.Applying {
			return a.Applying
		}
		if ca, cb := catalogIndex(a.Type), catalogIndex(b.Type); ca != cb {
			return ca < cb
		}
		if a.BodyA != b.BodyA {
			return a.BodyA.Index() < b.BodyA.Index()
		}
		return a.BodyB.Index() < b.BodyB.Index()
	})
}

// Top returns at most n aspects from an already sorted slice.
func Top(aspects []domain.Aspect, n int) []domain.Aspect {
	if len(aspects) <= n {
		return aspects
	}
	return aspects[:n]
}

func catalogIndex(t domain.AspectType) int {
	for i, def := range domain.AspectCatalog {
		if def.Type == t {
			return i
		}
	}
	return len(domain.AspectCatalog)
}

func (d *Detector) log(format string, args ...interface{}) {
	if d.verbose {
		log.Printf("[aspects] "+format, args...)
	}
}
