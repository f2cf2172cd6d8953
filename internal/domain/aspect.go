package domain

import (
	"fmt"
	"strings"
)

// AspectType names an angular relationship between two bodies.
type AspectType string

const (
	Conjunction AspectType = "conjunction"
	Sextile     AspectType = "sextile"
	Square      AspectType = "square"
	Trine       AspectType = "trine"
	Opposition  AspectType = "opposition"
)

// String returns the string representation of AspectType.
func (a AspectType) String() string {
	return string(a)
}

// IsValid checks if the aspect type is in the catalog.
func (a AspectType) IsValid() bool {
	_, ok := AspectDefinitionFor(a)
	return ok
}

// Title returns the capitalized display name.
func (a AspectType) Title() string {
	if a == "" {
		return ""
	}
	return strings.ToUpper(string(a[:1])) + string(a[1:])
}

// Nature classifies an aspect type.
type Nature string

const (
	NatureHarmonious  Nature = "harmonious"
	NatureChallenging Nature = "challenging"
	NatureNeutral     Nature = "neutral"
)

// AspectDefinition is one catalog entry: exact angle and accepted orb, in degrees.
type AspectDefinition struct {
	Type   AspectType
	Angle  float64
	Orb    float64
	Nature Nature
}

// AspectCatalog is the fixed set of aspects the detector recognizes, in evaluation order.
var AspectCatalog = []AspectDefinition{
	{Type: Conjunction, Angle: 0, Orb: 8, Nature: NatureNeutral},
	{Type: Sextile, Angle: 60, Orb: 6, Nature: NatureHarmonious},
	{Type: Square, Angle: 90, Orb: 8, Nature: NatureChallenging},
	{Type: Trine, Angle: 120, Orb: 8, Nature: NatureHarmonious},
	{Type: Opposition, Angle: 180, Orb: 8, Nature: NatureChallenging},
}

// AspectDefinitionFor looks up the catalog entry for an aspect type.
func AspectDefinitionFor(t AspectType) (AspectDefinition, bool) {
	for _, def := range AspectCatalog {
		if def.Type == t {
			return def, true
		}
	}
	return AspectDefinition{}, false
}

// NatureOf returns the nature of an aspect type (neutral for unknown types).
func NatureOf(t AspectType) Nature {
	if def, ok := AspectDefinitionFor(t); ok {
		return def.Nature
	}
	return NatureNeutral
}

// ClockTime is a time of day in whole minutes since midnight, in [0, 1440).
type ClockTime int

// NewClockTime builds a ClockTime from hours and minutes.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock time %q: out of range", s)
	}
	return NewClockTime(h, m), nil
}

// Hour returns the hour component.
func (c ClockTime) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c ClockTime) Minute() int { return int(c) % 60 }

// String formats as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Aspect is one detected angular relationship at an instant.
// Aspects are never mutated after creation.
type Aspect struct {
	Type           AspectType `json:"aspect"`
	BodyA          Body       `json:"planet1"`
	BodyB          Body       `json:"planet2"`
	AngleDelta     float64    `json:"angle"`    // separation between the bodies, [0,180]
	OrbUsed        float64    `json:"orb"`      // |separation - exact angle|
	Strength       int        `json:"strength"` // [0,100], 100 = exact
	Nature         Nature     `json:"nature"`
	Applying       bool       `json:"applying"`
	IsAllDay       bool       `json:"isAllDay"`            // in orb for 20h or more; clock times omitted
	StartTime      *ClockTime `json:"startTime,omitempty"` // nil = unknown or all-day
	ExactTime      *ClockTime `json:"exactTime,omitempty"`
	EndTime        *ClockTime `json:"endTime,omitempty"`
	Interpretation string     `json:"interpretation"`
	Fallback       bool       `json:"fallback,omitempty"` // illustrative set used when computation failed
}

// PairKey returns "BodyA-BodyB" using display names.
func (a Aspect) PairKey() string {
	return a.BodyA.Title() + "-" + a.BodyB.Title()
}

// Involves reports whether the aspect involves the body.
func (a Aspect) Involves(b Body) bool {
	return a.BodyA == b || a.BodyB == b
}

// Label renders the aspect the way it is stored on events: "sun trine jupiter (2.1°)".
func (a Aspect) Label() string {
	return fmt.Sprintf("%s %s %s (%.1f°)", a.BodyA, a.Type, a.BodyB, a.OrbUsed)
}
