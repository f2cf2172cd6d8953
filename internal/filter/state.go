// Package filter applies the calendar filter pipeline over scored events and
// computes per-option match counts.
package filter

import (
	"fmt"
	"net/url"
	"sort"

	"electional-engine/internal/domain"
)

// All disables a dimension.
const All = "all"

// State is the full filter selection of a calendar view.
type State struct {
	HideChallenging bool                `json:"hideChallengingDates"`
	CombosOnly      bool                `json:"showCombosOnly"`
	Method          domain.TimingMethod `json:"timingMethod,omitempty"` // houses, aspects or electional; empty for any

	Mercury       string `json:"mercuryFilter"`
	MoonPhase     string `json:"moonPhaseFilter"`
	MoonSign      string `json:"moonSignFilter"`
	Dignity       string `json:"dignityFilter"`
	Malefic       string `json:"maleficFilter"`
	Score         string `json:"scoreFilter"`
	Electional    string `json:"electionalFilter"`
	JupiterSector string `json:"jupiterSectorFilter"`
	MagicFormula  string `json:"magicFormulaFilter"`
	VoidMoon      string `json:"voidMoonFilter"`
	Ingress       string `json:"ingressFilter"`
	EconomicCycle string `json:"economicCycleFilter"`
}

// AllState selects nothing: the pipeline is the identity.
func AllState() State {
	s := State{}
	for _, d := range dimensions {
		*d.field(&s) = All
	}
	return s
}

// DefaultState is what a fresh calendar view starts with: Mercury must be direct,
// everything else is open.
func DefaultState() State {
	s := AllState()
	s.Mercury = "direct"
	return s
}

// dimension is one advanced filter axis and its options.
type dimension struct {
	key     string // query parameter
	label   string
	field   func(*State) *string
	options map[string]Predicate
}

var dimensions = []dimension{
	{"mercury", "Mercury", func(s *State) *string { return &s.Mercury }, mercuryOptions},
	{"moonPhase", "Moon Phase", func(s *State) *string { return &s.MoonPhase }, moonPhaseOptions},
	{"moonSign", "Moon Sign", func(s *State) *string { return &s.MoonSign }, moonSignOptions},
	{"dignity", "Dignity", func(s *State) *string { return &s.Dignity }, dignityOptions},
	{"malefic", "Malefics", func(s *State) *string { return &s.Malefic }, maleficOptions},
	{"score", "Score", func(s *State) *string { return &s.Score }, scoreOptions},
	{"electional", "Traditional", func(s *State) *string { return &s.Electional }, electionalOptions},
	{"jupiterSector", "Jupiter Sector", func(s *State) *string { return &s.JupiterSector }, jupiterSectorOptions},
	{"magicFormula", "Magic Formula", func(s *State) *string { return &s.MagicFormula }, magicFormulaOptions},
	{"voidMoon", "Void Moon", func(s *State) *string { return &s.VoidMoon }, voidMoonOptions},
	{"ingress", "Ingress", func(s *State) *string { return &s.Ingress }, ingressOptions},
	{"economicCycle", "Economy", func(s *State) *string { return &s.EconomicCycle }, economicCycleOptions},
}

func selected(v string) bool {
	return v != "" && v != All
}

// Validate rejects unknown option values.
func (s State) Validate() error {
	switch s.Method {
	case "", domain.MethodHouses, domain.MethodAspects, domain.MethodElectional:
	default:
		return fmt.Errorf("unknown timing method filter %q", s.Method)
	}
	for _, d := range dimensions {
		v := *d.field(&s)
		if !selected(v) {
			continue
		}
		if _, ok := d.options[v]; !ok {
			return fmt.Errorf("unknown %s filter option %q (allowed: %v)", d.key, v, Options(d.key))
		}
	}
	return nil
}

// Options lists the option values of a dimension, "all" excluded.
func Options(key string) []string {
	for _, d := range dimensions {
		if d.key != key {
			continue
		}
		out := make([]string, 0, len(d.options))
		for o := range d.options {
			out = append(out, o)
		}
		sort.Strings(out)
		return out
	}
	return nil
}

// Active lists human-readable labels of the non-default selections.
func (s State) Active() []string {
	var out []string
	if s.HideChallenging {
		out = append(out, "Hide Challenging")
	}
	if s.CombosOnly {
		out = append(out, "Combos Only")
	}
	switch s.Method {
	case domain.MethodHouses:
		out = append(out, "Houses Only")
	case domain.MethodAspects:
		out = append(out, "Aspects Only")
	case domain.MethodElectional:
		out = append(out, "Electional Only")
	}
	for _, d := range dimensions {
		if v := *d.field(&s); selected(v) {
			out = append(out, d.label+": "+v)
		}
	}
	return out
}

// FromQuery reads a State from query parameters, starting from DefaultState.
// Dimensions use their key (mercury=all, moonPhase=waxing, ...).
func FromQuery(q url.Values) (State, error) {
	s := DefaultState()
	s.HideChallenging = q.Get("hideChallenging") == "true"
	s.CombosOnly = q.Get("combosOnly") == "true"
	s.Method = domain.TimingMethod(q.Get("method"))
	for _, d := range dimensions {
		if v := q.Get(d.key); v != "" {
			*d.field(&s) = v
		}
	}
	if err := s.Validate(); err != nil {
		return State{}, err
	}
	return s, nil
}
