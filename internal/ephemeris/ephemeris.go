// Package ephemeris adapts an external longitude source into normalized body positions.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"time"

	"electional-engine/internal/domain"
)

// ErrUnknownBody is returned for bodies without a speed table entry.
var ErrUnknownBody = errors.New("unknown body")

// Source is the black-box ephemeris: geocentric ecliptic longitude in degrees.
// Implementations may return any real value; the adapter normalizes it.
type Source interface {
	Longitude(body domain.Body, t time.Time) (float64, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(body domain.Body, t time.Time) (float64, error)

// Longitude implements Source.
func (f SourceFunc) Longitude(body domain.Body, t time.Time) (float64, error) {
	return f(body, t)
}

// HouseTagger supplies opaque house tags for a chart. Houses are never computed here.
type HouseTagger interface {
	Houses(t time.Time, loc domain.Location, planets []domain.PlanetPosition) map[domain.Body]int
}

// averageDailySpeed holds static mean angular speeds in degrees per day.
// These are used only for time-window estimation.
var averageDailySpeed = map[domain.Body]float64{
	domain.Sun:     0.985,
	domain.Moon:    13.176,
	domain.Mercury: 1.383,
	domain.Venus:   1.228,
	domain.Mars:    0.524,
	domain.Jupiter: 0.083,
	domain.Saturn:  0.033,
	domain.Uranus:  0.012,
	domain.Neptune: 0.006,
	domain.Pluto:   0.004,
}

// AverageSpeed returns the static mean daily speed of a body.
func AverageSpeed(body domain.Body) (float64, bool) {
	s, ok := averageDailySpeed[body]
	return s, ok
}

// Position is one body's normalized longitude and average daily speed.
type Position struct {
	Body      domain.Body
	Longitude float64 // [0,360)
	Speed     float64 // degrees/day, static average
}

// Adapter wraps a Source.
type Adapter struct {
	source Source
	houses HouseTagger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithHouseTagger attaches a house tag supplier used by Chart.
func WithHouseTagger(h HouseTagger) Option {
	return func(a *Adapter) {
		a.houses = h
	}
}

// NewAdapter creates an Adapter over a Source.
func NewAdapter(source Source, opts ...Option) *Adapter {
	a := &Adapter{source: source}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PositionOf returns the normalized position of a body at t.
func (a *Adapter) PositionOf(body domain.Body, t time.Time) (Position, error) {
	speed, ok := averageDailySpeed[body]
	if !ok {
		return Position{}, fmt.Errorf("position of %q: %w", body, ErrUnknownBody)
	}

	lon, err := a.longitude(body, t)
	if err != nil {
		return Position{}, fmt.Errorf("position of %s: %w", body, err)
	}

	return Position{Body: body, Longitude: lon, Speed: speed}, nil
}

// Positions computes positions for all bodies at t.
// A body whose lookup fails is skipped and reported; the rest are still returned.
func (a *Adapter) Positions(t time.Time, bodies []domain.Body) ([]Position, []domain.Body) {
	positions := make([]Position, 0, len(bodies))
	var skipped []domain.Body
	for _, b := range bodies {
		p, err := a.PositionOf(b, t)
		if err != nil {
			skipped = append(skipped, b)
			continue
		}
		positions = append(positions, p)
	}
	return positions, skipped
}

// Chart builds a chart snapshot: positions, signs, retrograde flags and optional house tags.
// Retrograde is derived from a ±12h difference of the source longitude.
func (a *Adapter) Chart(t time.Time, loc domain.Location, bodies []domain.Body) *domain.ChartSnapshot {
	positions, skipped := a.Positions(t, bodies)

	snap := &domain.ChartSnapshot{
		Instant: t,
		Planets: make([]domain.PlanetPosition, 0, len(positions)),
		Skipped: skipped,
	}
	for _, p := range positions {
		snap.Planets = append(snap.Planets, domain.PlanetPosition{
			Body:       p.Body,
			Longitude:  p.Longitude,
			Speed:      p.Speed,
			Sign:       domain.SignOf(p.Longitude),
			Retrograde: a.isRetrograde(p.Body, t),
		})
	}

	if a.houses != nil {
		tags := a.houses.Houses(t, loc, snap.Planets)
		for i := range snap.Planets {
			snap.Planets[i].House = tags[snap.Planets[i].Body]
		}
	}

	return snap
}

// isRetrograde reports apparent backward motion. The Sun and Moon are never retrograde.
func (a *Adapter) isRetrograde(body domain.Body, t time.Time) bool {
	if body == domain.Sun || body == domain.Moon {
		return false
	}
	before, err := a.longitude(body, t.Add(-12*time.Hour))
	if err != nil {
		return false
	}
	after, err := a.longitude(body, t.Add(12*time.Hour))
	if err != nil {
		return false
	}
	delta := after - before
	if delta > 180 {
		delta -= 360
	} else if delta < -180 {
		delta += 360
	}
	return delta < 0
}

func (a *Adapter) longitude(body domain.Body, t time.Time) (lon float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ephemeris source panicked: %v", r)
		}
	}()

	lon, err = a.source.Longitude(body, t)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) {
		return 0, fmt.Errorf("ephemeris source returned non-finite longitude for %s", body)
	}
	return domain.NormalizeDegrees(lon), nil
}
