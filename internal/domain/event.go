package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format carried on events.
const DateLayout = "2006-01-02"

// EventType classifies an event for display.
type EventType string

const (
	EventBenefic     EventType = "benefic"
	EventChallenging EventType = "challenging"
	EventNeutral     EventType = "neutral"
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the event type is a known value.
func (t EventType) IsValid() bool {
	return t == EventBenefic || t == EventChallenging || t == EventNeutral
}

// TimingMethod records which analysis produced a generated event.
type TimingMethod string

const (
	MethodHouses     TimingMethod = "houses"
	MethodAspects    TimingMethod = "aspects"
	MethodElectional TimingMethod = "electional"
	MethodCombined   TimingMethod = "combined"
)

// ScanMethods are the methods evaluated for every scanned instant, in order.
var ScanMethods = []TimingMethod{MethodHouses, MethodAspects, MethodElectional}

// String returns the string representation of TimingMethod.
func (m TimingMethod) String() string {
	return string(m)
}

// IsValid checks if the method is a known value.
func (m TimingMethod) IsValid() bool {
	switch m {
	case MethodHouses, MethodAspects, MethodElectional, MethodCombined:
		return true
	}
	return false
}

// PersistState tracks the local-first commit of an event.
type PersistState string

const (
	StatePending   PersistState = "pending"    // held locally, remote write in flight
	StateConfirmed PersistState = "confirmed"  // acknowledged by the remote store
	StateLocalOnly PersistState = "local_only" // remote write failed; may not persist
)

// TimeWindow is the effective clock window of an event.
type TimeWindow struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Duration  string `json:"duration"`
}

// DignifiedPlanet pairs a body with a non-neutral dignity name.
type DignifiedPlanet struct {
	Planet  Body   `json:"planet"`
	Dignity string `json:"dignity"`
}

// ElectionalData is the structured electional summary attached to generated events.
type ElectionalData struct {
	MercuryStatus    MercuryStatus     `json:"mercuryStatus"`
	MoonPhase        MoonPhase         `json:"moonPhase"`
	BeneficsAngular  bool              `json:"beneficsAngular"`
	MaleficAspects   []string          `json:"maleficAspects"`
	DignifiedPlanets []DignifiedPlanet `json:"dignifiedPlanets"`
	ElectionalReady  bool              `json:"electionalReady"`
}

// PlanetPosition is one body in a chart snapshot.
type PlanetPosition struct {
	Body       Body    `json:"name"`
	Longitude  float64 `json:"longitude"`
	Speed      float64 `json:"speed"`
	Sign       Sign    `json:"sign"`
	House      int     `json:"house,omitempty"` // opaque tag, 0 = not supplied
	Retrograde bool    `json:"retrograde"`
}

// ChartSnapshot is the chart data attached to a generated event.
type ChartSnapshot struct {
	Instant time.Time        `json:"instant"`
	Planets []PlanetPosition `json:"planets"`
	Aspects []Aspect         `json:"aspects"`
	Skipped []Body           `json:"skipped,omitempty"`
}

// Planet returns the position of a body, if present.
func (c *ChartSnapshot) Planet(b Body) (PlanetPosition, bool) {
	if c == nil {
		return PlanetPosition{}, false
	}
	for _, p := range c.Planets {
		if p.Body == b {
			return p, true
		}
	}
	return PlanetPosition{}, false
}

// Event is the central persisted calendar record.
type Event struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId,omitempty"`
	Title              string          `json:"title"`
	Date               string          `json:"date"`           // YYYY-MM-DD
	Time               string          `json:"time,omitempty"` // HH:MM
	Type               EventType       `json:"type"`
	Description        string          `json:"description"`
	Aspects            []string        `json:"aspects"`
	PlanetaryPositions []string        `json:"planetaryPositions"`
	Score              int             `json:"score"` // [0,10]
	IsGenerated        bool            `json:"isGenerated"`
	IsBookmarked       bool            `json:"isBookmarked"`
	TimingMethod       TimingMethod    `json:"timingMethod,omitempty"`
	TimeWindow         *TimeWindow     `json:"timeWindow,omitempty"`
	ElectionalData     *ElectionalData `json:"electionalData,omitempty"`
	ChartData          *ChartSnapshot  `json:"chartData,omitempty"`
	Priorities         []string        `json:"priorities,omitempty"`
	State              PersistState    `json:"state,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// Day parses the event date.
func (e *Event) Day() (time.Time, error) {
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", e.Date, err)
	}
	return d, nil
}

// Instant combines date and time (noon when time is absent), in UTC.
func (e *Event) Instant() (time.Time, error) {
	d, err := e.Day()
	if err != nil {
		return time.Time{}, err
	}
	if e.Time == "" {
		return d.Add(12 * time.Hour), nil
	}
	ct, err := ParseClockTime(e.Time)
	if err != nil {
		return d.Add(12 * time.Hour), nil
	}
	return d.Add(time.Duration(ct) * time.Minute), nil
}

// IsManual reports whether the event was created by hand rather than generated.
func (e *Event) IsManual() bool {
	return !e.IsGenerated
}

// Clone returns a deep copy of the event.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	c := *e
	c.Aspects = append([]string(nil), e.Aspects...)
	c.PlanetaryPositions = append([]string(nil), e.PlanetaryPositions...)
	c.Priorities = append([]string(nil), e.Priorities...)
	if e.TimeWindow != nil {
		tw := *e.TimeWindow
		c.TimeWindow = &tw
	}
	if e.ElectionalData != nil {
		ed := *e.ElectionalData
		ed.MaleficAspects = append([]string(nil), e.ElectionalData.MaleficAspects...)
		ed.DignifiedPlanets = append([]DignifiedPlanet(nil), e.ElectionalData.DignifiedPlanets...)
		c.ElectionalData = &ed
	}
	if e.ChartData != nil {
		cd := *e.ChartData
		cd.Planets = append([]PlanetPosition(nil), e.ChartData.Planets...)
		cd.Aspects = append([]Aspect(nil), e.ChartData.Aspects...)
		cd.Skipped = append([]Body(nil), e.ChartData.Skipped...)
		c.ChartData = &cd
	}
	return &c
}
