package astrocontext

import (
	"math"
	"sync"
	"testing"
	"time"

	"electional-engine/internal/domain"
)

func TestPhaseAt(t *testing.T) {
	tests := []struct {
		pos       float64
		wantPhase domain.MoonPhase
		wantIllum int
	}{
		{0.5, domain.PhaseNew, 0},
		{3.69, domain.PhaseWaxingCrescent, 25},
		{8.0, domain.PhaseFirstQuarter, 50},
		{11.57, domain.PhaseWaxingGibbous, 75},
		{15.0, domain.PhaseFull, 100},
		{18.95, domain.PhaseWaningGibbous, 75},
		{22.5, domain.PhaseLastQuarter, 50},
		{29.0, domain.PhaseWaningCrescent, 4},
	}

	for _, tt := range tests {
		phase, illum := PhaseAt(tt.pos)
		if phase != tt.wantPhase {
			t.Errorf("PhaseAt(%v) phase = %s, want %s", tt.pos, phase, tt.wantPhase)
		}
		if illum != tt.wantIllum {
			t.Errorf("PhaseAt(%v) illumination = %d, want %d", tt.pos, illum, tt.wantIllum)
		}
	}
}

func TestCompute_FifteenDaysAfterEpochIsFull(t *testing.T) {
	at := NewMoonEpoch.Add(15 * day)
	ctx := Compute(at, DefaultMercuryTable())

	if math.Abs(ctx.CyclePosition-15.0) > 1e-9 {
		t.Fatalf("cycle position = %v, want 15", ctx.CyclePosition)
	}
	if ctx.MoonPhase != domain.PhaseFull {
		t.Errorf("phase = %s, want full", ctx.MoonPhase)
	}
	if ctx.Illumination != 100 {
		t.Errorf("illumination = %d, want 100", ctx.Illumination)
	}
}

func TestCyclePosition_BeforeEpochIsPositive(t *testing.T) {
	pos := CyclePosition(NewMoonEpoch.Add(-2 * day))
	if pos < 0 || pos >= SynodicMonth {
		t.Fatalf("position out of range: %v", pos)
	}
	if math.Abs(pos-(SynodicMonth-2)) > 1e-9 {
		t.Errorf("position = %v, want %v", pos, SynodicMonth-2)
	}
}

func TestWaxingWindow(t *testing.T) {
	waxing := NewMoonEpoch.Add(5 * day)
	w := WaxingWindow(waxing)
	if !w.Start.Equal(NewMoonEpoch) {
		t.Errorf("waxing start = %s, want epoch", w.Start)
	}
	if !w.Contains(waxing) {
		t.Error("window must contain a waxing date")
	}

	waning := NewMoonEpoch.Add(20 * day)
	w = WaxingWindow(waning)
	nextNew := NewMoonEpoch.Add(daysToDuration(SynodicMonth))
	if w.Start.Sub(nextNew).Abs() > time.Second {
		t.Errorf("waning start = %s, want next new moon %s", w.Start, nextNew)
	}
	if got := w.End.Sub(w.Start); (got - daysToDuration(14.76)).Abs() > time.Second {
		t.Errorf("window length = %s", got)
	}
}

func TestDaysToNext(t *testing.T) {
	if got := DaysToNextFull(10); math.Abs(got-4.76) > 1e-9 {
		t.Errorf("DaysToNextFull(10) = %v", got)
	}
	if got := DaysToNextFull(20); math.Abs(got-(SynodicMonth-20+14.76)) > 1e-9 {
		t.Errorf("DaysToNextFull(20) = %v", got)
	}
	if got := DaysToNextNew(20); math.Abs(got-(SynodicMonth-20)) > 1e-9 {
		t.Errorf("DaysToNextNew(20) = %v", got)
	}
}

func TestMercuryTable_Status(t *testing.T) {
	table := DefaultMercuryTable()

	tests := []struct {
		name string
		at   time.Time
		want domain.MercuryStatus
	}{
		{"first day of period", date(2024, time.April, 1), domain.MercuryRetrograde},
		{"last day of period", time.Date(2024, time.April, 25, 18, 0, 0, 0, time.UTC), domain.MercuryRetrograde},
		{"day after period", date(2024, time.April, 26), domain.MercuryDirect},
		{"direct inside horizon", date(2025, time.June, 1), domain.MercuryDirect},
		{"autumn 2026", date(2026, time.October, 30), domain.MercuryRetrograde},
		{"direct in 2027", date(2027, time.August, 15), domain.MercuryDirect},
		{"last day of horizon", date(2027, time.December, 31), domain.MercuryDirect},
		{"beyond horizon", date(2028, time.March, 1), domain.MercuryUnknown},
		{"before horizon", date(2023, time.December, 1), domain.MercuryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Status(tt.at); got != tt.want {
				t.Errorf("Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMercuryTable_NextBoundaries(t *testing.T) {
	table := DefaultMercuryTable()

	inRetro := date(2024, time.April, 10)
	if d := table.NextDirect(inRetro); d == nil || !d.Equal(date(2024, time.April, 25)) {
		t.Errorf("NextDirect = %v", d)
	}
	if r := table.NextRetrograde(inRetro); r == nil || !r.Equal(date(2024, time.August, 5)) {
		t.Errorf("NextRetrograde = %v", r)
	}

	if r := table.NextRetrograde(date(2025, time.December, 1)); r == nil || !r.Equal(date(2026, time.February, 26)) {
		t.Errorf("NextRetrograde across the year = %v", r)
	}

	last := date(2027, time.November, 1)
	if r := table.NextRetrograde(last); r != nil {
		t.Errorf("no retrograde after the table, got %v", r)
	}
}

func TestMercuryTable_Extend(t *testing.T) {
	table := DefaultMercuryTable()
	table.Extend([]RetrogradePeriod{{date(2028, time.January, 24), date(2028, time.February, 14)}}, date(2028, time.December, 31))

	if got := table.Status(date(2028, time.February, 1)); got != domain.MercuryRetrograde {
		t.Errorf("extended status = %s", got)
	}
	if got := table.Status(date(2028, time.June, 1)); got != domain.MercuryDirect {
		t.Errorf("extended horizon status = %s", got)
	}
	if got := table.Horizon().End; !got.Equal(date(2028, time.December, 31)) {
		t.Errorf("horizon end = %s", got)
	}

	table.Extend(nil, date(2027, time.June, 1))
	if got := table.Horizon().End; !got.Equal(date(2028, time.December, 31)) {
		t.Errorf("an earlier end must not shrink the horizon, got %s", got)
	}
}

func TestEvaluator_ExtendDropsCache(t *testing.T) {
	e := NewEvaluator(nil)
	day := date(2028, time.February, 1)

	if got := e.Evaluate(day).MercuryStatus; got != domain.MercuryUnknown {
		t.Fatalf("status before extending = %s, want unknown", got)
	}
	e.Evaluate(date(2028, time.February, 2))

	periods := PeriodsFrom([]domain.DateRange{{
		Start: time.Date(2028, time.January, 24, 9, 30, 0, 0, time.UTC),
		End:   date(2028, time.February, 14),
	}})
	if !periods[0].Start.Equal(date(2028, time.January, 24)) {
		t.Fatalf("period start = %s, want the calendar day", periods[0].Start)
	}
	e.Extend(periods, date(2028, time.December, 31))
	if got := e.CachedDays(); got != 0 {
		t.Errorf("cached days after Extend = %d, want 0", got)
	}
	ctx := e.Evaluate(day)
	if ctx.MercuryStatus != domain.MercuryRetrograde || !ctx.MercuryRetrograde {
		t.Errorf("status after extending = %s", ctx.MercuryStatus)
	}
}

func TestEvaluator_ExtendConcurrentWithEvaluate(t *testing.T) {
	e := NewEvaluator(nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				e.Extend([]RetrogradePeriod{{date(2028, time.January, 24), date(2028, time.February, 14)}}, date(2028, time.December, 31))
				return
			}
			e.Evaluate(date(2028, time.February, 1+i))
			e.Mercury().Status(date(2028, time.February, 1))
		}(i)
	}
	wg.Wait()

	if got := e.Evaluate(date(2028, time.February, 3)).MercuryStatus; got != domain.MercuryRetrograde {
		t.Errorf("status = %s, want retrograde", got)
	}
}

func TestCompute_UnknownMercuryIsNotDirect(t *testing.T) {
	ctx := Compute(date(2028, time.January, 5), DefaultMercuryTable())
	if ctx.MercuryStatus != domain.MercuryUnknown {
		t.Fatalf("status = %s, want unknown", ctx.MercuryStatus)
	}
	if ctx.MercuryRetrograde {
		t.Error("unknown must not report retrograde")
	}
	if ctx.NextRetrograde != nil || ctx.NextDirect != nil {
		t.Error("no boundaries outside the horizon")
	}
}

func TestEvaluator_MonthCache(t *testing.T) {
	e := NewEvaluator(nil)

	e.Evaluate(date(2024, time.May, 1))
	e.Evaluate(date(2024, time.May, 2))
	e.Evaluate(date(2024, time.May, 2))
	if got := e.CachedDays(); got != 2 {
		t.Fatalf("cached days = %d, want 2", got)
	}

	ctx := e.Evaluate(date(2024, time.June, 1))
	if got := e.CachedDays(); got != 1 {
		t.Errorf("cache should reset on month change, got %d", got)
	}
	if ctx.Date.Month() != time.June {
		t.Errorf("unexpected context date %s", ctx.Date)
	}
}

func chartWith(planets ...domain.PlanetPosition) *domain.ChartSnapshot {
	for i := range planets {
		planets[i].Sign = domain.SignOf(planets[i].Longitude)
	}
	return &domain.ChartSnapshot{Planets: planets}
}

func TestVoidMoon(t *testing.T) {
	chart := chartWith(domain.PlanetPosition{Body: domain.Moon, Longitude: 29.5})
	if v := VoidMoon(chart); !v.Void || v.DeclinationSupport {
		t.Errorf("expected void without support, got %+v", v)
	}

	supported := chartWith(domain.PlanetPosition{Body: domain.Moon, Longitude: 28.5})
	if v := VoidMoon(supported); !v.Void || !v.DeclinationSupport {
		t.Errorf("expected void with declination support at 28°, got %+v", v)
	}

	chart.Aspects = []domain.Aspect{{Type: domain.Trine, BodyA: domain.Moon, BodyB: domain.Venus, OrbUsed: 0.5}}
	if v := VoidMoon(chart); v.Void {
		t.Error("tight Moon aspect means the Moon is not void")
	}

	early := chartWith(domain.PlanetPosition{Body: domain.Moon, Longitude: 10})
	if v := VoidMoon(early); v.Void {
		t.Error("moon early in its sign is not void")
	}
}

func TestIngressWindow(t *testing.T) {
	chart := chartWith(
		domain.PlanetPosition{Body: domain.Jupiter, Longitude: 45},
		domain.PlanetPosition{Body: domain.Saturn, Longitude: 358.5},
		domain.PlanetPosition{Body: domain.Mars, Longitude: 61},
	)

	in := IngressWindow(chart)
	if in == nil {
		t.Fatal("expected an ingress window")
	}
	if in.Body != domain.Saturn || in.Days != 3 {
		t.Errorf("got %s %d days, want saturn 3 days", in.Body, in.Days)
	}

	if IngressWindow(chartWith(domain.PlanetPosition{Body: domain.Jupiter, Longitude: 15})) != nil {
		t.Error("mid-sign bodies have no ingress window")
	}
}

func TestEconomicPhaseOf(t *testing.T) {
	expansive := chartWith(
		domain.PlanetPosition{Body: domain.Jupiter, Longitude: 65}, // gemini
		domain.PlanetPosition{Body: domain.Pluto, Longitude: 301},  // aquarius
	)
	if got := EconomicPhaseOf(expansive, 5); got != Expansion {
		t.Errorf("got %s, want expansion", got)
	}

	restrictive := chartWith(
		domain.PlanetPosition{Body: domain.Saturn, Longitude: 275}, // capricorn
		domain.PlanetPosition{Body: domain.Pluto, Longitude: 295},  // capricorn
	)
	if got := EconomicPhaseOf(restrictive, 7); got != Consolidation {
		t.Errorf("got %s, want consolidation", got)
	}

	empty := chartWith()
	if got := EconomicPhaseOf(empty, 5); got != Expansion {
		t.Errorf("tie at score 5 breaks to expansion, got %s", got)
	}
}

func TestSectors(t *testing.T) {
	chart := chartWith(
		domain.PlanetPosition{Body: domain.Jupiter, Longitude: 65}, // gemini
		domain.PlanetPosition{Body: domain.Saturn, Longitude: 345}, // pisces
	)

	if s, ok := FavoredSector(chart, "Mercury trine Jupiter"); !ok || s != "Communication" {
		t.Errorf("favored sector = %q, %v", s, ok)
	}
	if !SaturnRestricted(chart, "good for higher education plans") {
		t.Error("saturn in pisces restricts sagittarius sectors")
	}
	if got := SaturnRestrictedSectors(domain.Aries); got[0] != "Government" {
		t.Errorf("saturn in aries restricts capricorn sectors, got %v", got)
	}
}

func TestDetectMagicFormula(t *testing.T) {
	chart := chartWith(
		domain.PlanetPosition{Body: domain.Sun, Longitude: 10},
		domain.PlanetPosition{Body: domain.Jupiter, Longitude: 12},
		domain.PlanetPosition{Body: domain.Pluto, Longitude: 131},
	)
	chart.Aspects = []domain.Aspect{
		{Type: domain.Conjunction, BodyA: domain.Sun, BodyB: domain.Jupiter, OrbUsed: 2},
		{Type: domain.Trine, BodyA: domain.Jupiter, BodyB: domain.Pluto, OrbUsed: 1},
	}

	mf := DetectMagicFormula(chart)
	if mf.Full || !mf.Partial || !mf.JupiterPlutoOrb {
		t.Errorf("unexpected formula state %+v", mf)
	}
	if mf.JupiterPlutoDegree != 119 {
		t.Errorf("separation = %v, want 119", mf.JupiterPlutoDegree)
	}
}
