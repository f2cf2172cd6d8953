package domain

import (
	"math"
	"strings"
)

// Body identifies a celestial body tracked by the engine.
type Body string

const (
	Sun     Body = "sun"
	Moon    Body = "moon"
	Mercury Body = "mercury"
	Venus   Body = "venus"
	Mars    Body = "mars"
	Jupiter Body = "jupiter"
	Saturn  Body = "saturn"
	Uranus  Body = "uranus"
	Neptune Body = "neptune"
	Pluto   Body = "pluto"
)

// TrackedBodies are the seven bodies scanned for aspects, in catalog order.
var TrackedBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn}

// AllBodies includes the outer planets used for signs, dignities and heuristics.
var AllBodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// String returns the string representation of Body.
func (b Body) String() string {
	return string(b)
}

// IsValid checks if the body is a known value.
func (b Body) IsValid() bool {
	for _, known := range AllBodies {
		if b == known {
			return true
		}
	}
	return false
}

// Title returns the capitalized display name ("Sun", "Mercury").
func (b Body) Title() string {
	if b == "" {
		return ""
	}
	return strings.ToUpper(string(b[:1])) + string(b[1:])
}

// Index returns the catalog position of the body, or -1 if unknown.
func (b Body) Index() int {
	for i, known := range AllBodies {
		if b == known {
			return i
		}
	}
	return -1
}

// ParseBody parses a body name case-insensitively.
func ParseBody(s string) (Body, bool) {
	b := Body(strings.ToLower(strings.TrimSpace(s)))
	return b, b.IsValid()
}

// Sign is a tropical zodiac sign.
type Sign string

const (
	Aries       Sign = "aries"
	Taurus      Sign = "taurus"
	Gemini      Sign = "gemini"
	Cancer      Sign = "cancer"
	Leo         Sign = "leo"
	Virgo       Sign = "virgo"
	Libra       Sign = "libra"
	Scorpio     Sign = "scorpio"
	Sagittarius Sign = "sagittarius"
	Capricorn   Sign = "capricorn"
	Aquarius    Sign = "aquarius"
	Pisces      Sign = "pisces"
)

// Signs in zodiacal order starting at 0° Aries.
var Signs = []Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}

// String returns the string representation of Sign.
func (s Sign) String() string {
	return string(s)
}

// IsValid checks if the sign is a known value.
func (s Sign) IsValid() bool {
	for _, known := range Signs {
		if s == known {
			return true
		}
	}
	return false
}

// Title returns the capitalized display name.
func (s Sign) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Element returns "fire", "earth", "air" or "water".
func (s Sign) Element() string {
	switch s {
	case Aries, Leo, Sagittarius:
		return "fire"
	case Taurus, Virgo, Capricorn:
		return "earth"
	case Gemini, Libra, Aquarius:
		return "air"
	case Cancer, Scorpio, Pisces:
		return "water"
	default:
		return ""
	}
}

// ParseSign parses a sign name case-insensitively.
func ParseSign(s string) (Sign, bool) {
	sign := Sign(strings.ToLower(strings.TrimSpace(s)))
	return sign, sign.IsValid()
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	// math.Mod of a tiny negative value can round up to exactly 360.
	if d >= 360 {
		d = 0
	}
	return d
}

// SignOf returns the sign containing the ecliptic longitude.
func SignOf(longitude float64) Sign {
	idx := int(NormalizeDegrees(longitude) / 30)
	if idx > 11 {
		idx = 11
	}
	return Signs[idx]
}

// DegreeInSign returns the offset of the longitude within its sign, in [0, 30).
func DegreeInSign(longitude float64) float64 {
	return math.Mod(NormalizeDegrees(longitude), 30)
}

// Separation returns the shortest angular distance between two longitudes, in [0, 180].
func Separation(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}
