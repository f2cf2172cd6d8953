package generator

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"electional-engine/internal/astrocontext"
	"electional-engine/internal/dignity"
	"electional-engine/internal/domain"
	"electional-engine/internal/scoring"
)

const warningMark = scoring.WarningMark

// maxAspectOrb bounds the aspects listed on an event.
const maxAspectOrb = 8.0

// describedAspect matches the aspect phrases written by scoring.Describe.
var describedAspect = regexp.MustCompile(`(sun|moon|mercury|venus|mars|jupiter|saturn) (conjunction|sextile|square|trine|opposition) (sun|moon|mercury|venus|mars|jupiter|saturn)`)

// buildEvent turns a selected candidate into a generated event. variety rotates
// among equally good titles so a day's events read differently.
func buildEvent(c candidate, req Request, variety int) *domain.Event {
	sc := c.scoringChart()
	base := scoring.Describe(c.method, sc, req.Priorities)

	var title string
	if c.method == domain.MethodAspects {
		title = aspectTitle(c.chart, req.Priorities, variety)
	} else {
		title = placementTitle(c.chart, sc, req.Priorities, base, variety)
	}
	title += sectorNotes(c.chart, title+" "+base)

	typ := scoring.ScoreEvent(c.eventInput(req.Priorities), title).Type

	clock := domain.NewClockTime(c.at.Hour(), c.at.Minute())
	window := scoring.TimeWindow(clock, c.score, typ)
	electional := electionalData(c)

	return &domain.Event{
		UserID:             req.UserID,
		Title:              title,
		Date:               c.at.Format(domain.DateLayout),
		Time:               clock.String(),
		Type:               typ,
		Description:        describe(c, base, title, electional.MercuryStatus),
		Aspects:            aspectLabels(c.chart.Aspects),
		PlanetaryPositions: positionLabels(c.chart.Planets),
		Score:              c.score,
		IsGenerated:        true,
		TimingMethod:       c.method,
		TimeWindow:         &window,
		ElectionalData:     electional,
		ChartData:          c.chart,
		Priorities:         priorityTags(req.Priorities),
	}
}

// planetName renders a body with its retrograde and dignity markers,
// e.g. "Venus dignified" or "Mercury Rx weakened".
func planetName(chart *domain.ChartSnapshot, b domain.Body) string {
	name := b.Title()
	p, ok := chart.Planet(b)
	if !ok {
		return name
	}
	if p.Retrograde {
		name += " Rx"
	}
	switch dignity.OfPosition(p) {
	case dignity.Exaltation:
		name += " exalted"
	case dignity.Rulership:
		name += " dignified"
	case dignity.Fall:
		name += " debilitated"
	case dignity.Detriment:
		name += " weakened"
	}
	return name
}

func aspectPhrase(chart *domain.ChartSnapshot, a domain.Aspect) string {
	return planetName(chart, a.BodyA) + " " + a.Type.Title() + " " + planetName(chart, a.BodyB)
}

type weightedAspect struct {
	aspect domain.Aspect
	weight float64
}

// aspectTitle names the most significant aspect between planets the priorities
// favor. A challenging one wins and is marked with a warning.
func aspectTitle(chart *domain.ChartSnapshot, priorities []domain.Priority, variety int) string {
	var favorable, challenging []weightedAspect
	for _, a := range chart.Aspects {
		for _, p := range priorities {
			c, ok := scoring.CriteriaFor(p)
			if !ok || !c.IsFavorablePlanet(a.BodyA) || !c.IsFavorablePlanet(a.BodyB) {
				continue
			}
			w := c.PlanetWeightOf(a.BodyA) + c.PlanetWeightOf(a.BodyB)
			switch {
			case c.IsChallengingAspect(a.Type):
				challenging = append(challenging, weightedAspect{a, w})
			case c.IsFavorableAspect(a.Type):
				favorable = append(favorable, weightedAspect{a, w})
			}
			break
		}
	}

	byWeight := func(s []weightedAspect) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].weight > s[j].weight })
	}
	if len(challenging) > 0 {
		byWeight(challenging)
		return warningMark + " " + aspectPhrase(chart, challenging[0].aspect)
	}
	if len(favorable) > 0 {
		byWeight(favorable)
		top := favorable[:min(3, len(favorable))]
		return aspectPhrase(chart, top[variety%len(top)].aspect)
	}
	return fallbackTitle(priorities, "Aspects")
}

type placement struct {
	planet domain.PlanetPosition
	weight float64
}

// placementTitle names a significant combo, else the best favored planet in a
// favored house, else the aspect the description mentions.
func placementTitle(chart *domain.ChartSnapshot, sc scoring.Chart, priorities []domain.Priority, description string, variety int) string {
	var best *scoring.Combo
	combos := scoring.MatchedCombos(sc, priorities)
	for i := range combos {
		if math.Abs(combos[i].Bonus) < 1 {
			continue
		}
		if combos[i].Challenging() {
			return warningMark + " " + combos[i].Name
		}
		if best == nil || combos[i].Bonus > best.Bonus {
			best = &combos[i]
		}
	}
	if best != nil {
		return best.Name
	}

	var places []placement
	for _, p := range chart.Planets {
		if p.House == 0 {
			continue
		}
		for _, pr := range priorities {
			c, ok := scoring.CriteriaFor(pr)
			if ok && c.IsFavorablePlanet(p.Body) && c.IsFavorableHouse(p.House) {
				places = append(places, placement{p, c.PlanetWeightOf(p.Body) * c.HouseWeightOf(p.House)})
				break
			}
		}
	}
	if len(places) > 0 {
		sort.SliceStable(places, func(i, j int) bool { return places[i].weight > places[j].weight })
		top := places[:min(3, len(places))]
		p := top[variety%len(top)].planet
		title := planetName(chart, p.Body) + " " + ordinal(p.House)
		if (p.Body == domain.Jupiter || p.Body == domain.Venus) && isAngular(p.House) {
			title += " angular"
		}
		return title
	}

	if m := describedAspect.FindStringSubmatch(description); m != nil {
		return domain.Body(m[1]).Title() + " " + domain.AspectType(m[2]).Title() + " " + domain.Body(m[3]).Title()
	}
	return fallbackTitle(priorities, "Timing")
}

func fallbackTitle(priorities []domain.Priority, suffix string) string {
	if len(priorities) == 1 {
		return scoring.Label(priorities[0]) + " " + suffix
	}
	return "Optimal " + suffix
}

// sectorNotes appends the Jupiter favored sector and any ingress window.
func sectorNotes(chart *domain.ChartSnapshot, text string) string {
	var b strings.Builder
	if sector, ok := astrocontext.FavoredSector(chart, text); ok {
		fmt.Fprintf(&b, " (Jupiter favored sector: %s)", sector)
	}
	if in := astrocontext.IngressWindow(chart); in != nil {
		fmt.Fprintf(&b, " (%s ingress window - %d days)", in.Body.Title(), in.Days)
	}
	return b.String()
}

func describe(c candidate, base, title string, mercury domain.MercuryStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Astrologically calculated optimal timing (Score: %d/10). %s.", c.score, base)

	switch astrocontext.EconomicPhaseOf(c.chart, c.score) {
	case astrocontext.Expansion:
		b.WriteString(" Economic expansion phase indicators present.")
	case astrocontext.Consolidation:
		b.WriteString(" Economic consolidation phase - proceed with caution.")
	}

	if v := astrocontext.VoidMoon(c.chart); v.Void {
		b.WriteString(" " + warningMark + " Void of Course Moon - avoid major business decisions.")
		if v.DeclinationSupport {
			b.WriteString(" However, declination aspects provide some support.")
		}
	}

	if mercury == domain.MercuryRetrograde {
		b.WriteString(" " + warningMark + " Mercury retrograde affects communication and contracts.")
	}

	if astrocontext.SaturnRestricted(c.chart, title+" "+base) {
		if saturn, ok := c.chart.Planet(domain.Saturn); ok {
			fmt.Fprintf(&b, " %s Saturn in %s creates restrictions in this sector.", warningMark, saturn.Sign.Title())
		}
	}
	return b.String()
}

// electionalData summarizes the candidate. Mercury follows the retrograde table
// and falls back to the chart's own motion only beyond the table's horizon.
func electionalData(c candidate) *domain.ElectionalData {
	status := c.context.MercuryStatus
	if status == domain.MercuryUnknown || status == "" {
		status = domain.MercuryUnknown
		if m, ok := c.chart.Planet(domain.Mercury); ok {
			status = domain.MercuryDirect
			if m.Retrograde {
				status = domain.MercuryRetrograde
			}
		}
	}

	ed := &domain.ElectionalData{
		MercuryStatus:    status,
		MoonPhase:        c.context.MoonPhase,
		MaleficAspects:   []string{},
		DignifiedPlanets: []domain.DignifiedPlanet{},
	}
	for _, p := range c.chart.Planets {
		if (p.Body == domain.Venus || p.Body == domain.Jupiter) && isAngular(p.House) {
			ed.BeneficsAngular = true
		}
		if d := dignity.OfPosition(p); d != dignity.Neutral {
			ed.DignifiedPlanets = append(ed.DignifiedPlanets, domain.DignifiedPlanet{Planet: p.Body, Dignity: string(d)})
		}
	}
	for _, a := range c.chart.Aspects {
		if a.Type != domain.Square && a.Type != domain.Opposition {
			continue
		}
		if a.Involves(domain.Mars) || a.Involves(domain.Saturn) || a.Involves(domain.Pluto) {
			ed.MaleficAspects = append(ed.MaleficAspects, a.BodyA.Title()+" "+string(a.Type)+" "+a.BodyB.Title())
		}
	}
	ed.ElectionalReady = c.score >= 6 && status == domain.MercuryDirect
	return ed
}

func aspectLabels(list []domain.Aspect) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		if a.OrbUsed <= maxAspectOrb {
			out = append(out, a.Label())
		}
	}
	return out
}

func positionLabels(planets []domain.PlanetPosition) []string {
	out := make([]string, 0, len(planets))
	for _, p := range planets {
		if p.House > 0 {
			out = append(out, fmt.Sprintf("%s in %s (%dH)", p.Body, p.Sign, p.House))
			continue
		}
		out = append(out, fmt.Sprintf("%s in %s", p.Body, p.Sign))
	}
	return out
}

func isAngular(house int) bool {
	return house == 1 || house == 4 || house == 7 || house == 10
}

func ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	}
	return fmt.Sprintf("%dth", n)
}
