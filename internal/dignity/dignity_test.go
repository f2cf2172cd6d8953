package dignity

import (
	"strings"
	"testing"

	"electional-engine/internal/domain"
)

func TestOf_Total(t *testing.T) {
	valid := map[Dignity]bool{}
	for _, d := range All {
		valid[d] = true
	}

	for _, planet := range domain.AllBodies {
		for _, sign := range domain.Signs {
			d := Of(planet, sign)
			if !valid[d] {
				t.Errorf("Of(%s, %s) = %q, not one of the five categories", planet, sign, d)
			}
		}
	}
}

func TestOf_UnknownInputsAreNeutral(t *testing.T) {
	if d := Of(domain.Body("chiron"), domain.Aries); d != Neutral {
		t.Errorf("unknown planet: got %s", d)
	}
	if d := Of(domain.Sun, domain.Sign("ophiuchus")); d != Neutral {
		t.Errorf("unknown sign: got %s", d)
	}
}

func TestOf_Convention(t *testing.T) {
	tests := []struct {
		planet domain.Body
		sign   domain.Sign
		want   Dignity
	}{
		{domain.Sun, domain.Leo, Rulership},
		{domain.Sun, domain.Aries, Exaltation},
		{domain.Sun, domain.Aquarius, Detriment},
		{domain.Sun, domain.Libra, Fall},
		{domain.Sun, domain.Gemini, Neutral},
		{domain.Moon, domain.Taurus, Exaltation},
		{domain.Moon, domain.Scorpio, Fall},
		{domain.Mercury, domain.Virgo, Rulership}, // rulership wins over exaltation
		{domain.Mercury, domain.Pisces, Detriment},
		{domain.Venus, domain.Pisces, Exaltation},
		{domain.Venus, domain.Virgo, Fall},
		{domain.Mars, domain.Capricorn, Exaltation},
		{domain.Mars, domain.Cancer, Fall},
		{domain.Jupiter, domain.Cancer, Exaltation},
		{domain.Jupiter, domain.Gemini, Detriment},
		{domain.Saturn, domain.Libra, Exaltation},
		{domain.Saturn, domain.Aries, Fall},
		{domain.Neptune, domain.Pisces, Rulership},
		{domain.Pluto, domain.Scorpio, Rulership},
	}

	for _, tt := range tests {
		if got := Of(tt.planet, tt.sign); got != tt.want {
			t.Errorf("Of(%s, %s) = %s, want %s", tt.planet, tt.sign, got, tt.want)
		}
	}
}

func TestDignity_StrengthClasses(t *testing.T) {
	if !Rulership.IsStrong() || !Exaltation.IsStrong() {
		t.Error("rulership and exaltation are strong")
	}
	if !Detriment.IsWeak() || !Fall.IsWeak() {
		t.Error("detriment and fall are weak")
	}
	if Neutral.IsStrong() || Neutral.IsWeak() {
		t.Error("neutral carries no signal")
	}
}

func TestDignity_Multiplier(t *testing.T) {
	want := map[Dignity]float64{Rulership: 1.5, Exaltation: 1.3, Neutral: 1.0, Detriment: 0.7, Fall: 0.5}
	for d, m := range want {
		if got := d.Multiplier(); got != m {
			t.Errorf("%s multiplier = %v, want %v", d, got, m)
		}
	}
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name string
		typ  domain.AspectType
		a, b domain.Body
		want string
	}{
		{"pair", domain.Conjunction, domain.Sun, domain.Moon, "New moon energy - fresh starts and emotional alignment"},
		{"reversed pair", domain.Conjunction, domain.Saturn, domain.Jupiter, "Balanced growth and structured expansion"},
		{"type default", domain.Trine, domain.Sun, domain.Jupiter, "Natural flow of positive energy and effortless harmony"},
		{"generic", domain.Conjunction, domain.Uranus, domain.Pluto, "Uranus and Pluto in conjunction aspect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Interpret(tt.typ, tt.a, tt.b); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(domain.Sun, domain.Aries); !strings.Contains(got, "exalted") {
		t.Errorf("unexpected description %q", got)
	}
}
