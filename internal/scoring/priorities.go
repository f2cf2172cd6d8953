package scoring

import "electional-engine/internal/domain"

// Combo is a multi-planet house placement that adds or subtracts from a priority score.
type Combo struct {
	ID          string
	Name        string
	Description string
	Planets     []domain.Body
	House       int
	Bonus       float64 // negative for challenging combos
}

// Challenging reports a penalizing combo.
func (c Combo) Challenging() bool {
	return c.Bonus < 0
}

// Criteria are the astrological preferences of one priority tag.
type Criteria struct {
	Priority           domain.Priority
	Label              string
	FavorablePlanets   []domain.Body
	FavorableHouses    []int
	FavorableAspects   []domain.AspectType
	ChallengingAspects []domain.AspectType
	PlanetWeight       map[domain.Body]float64
	HouseWeight        map[int]float64
	Combos             []Combo
}

var (
	favorableAspects   = []domain.AspectType{domain.Trine, domain.Sextile, domain.Conjunction}
	challengingAspects = []domain.AspectType{domain.Square, domain.Opposition}
)

var criteria = map[domain.Priority]*Criteria{
	domain.PriorityCareer: {
		Label:            "Career & Business",
		FavorablePlanets: []domain.Body{domain.Jupiter, domain.Saturn, domain.Sun, domain.Mars, domain.Mercury},
		FavorableHouses:  []int{10, 1, 6, 3},
		PlanetWeight:     map[domain.Body]float64{domain.Jupiter: 1.5, domain.Saturn: 1.2, domain.Sun: 1.2, domain.Mars: 1.0, domain.Mercury: 1.8},
		HouseWeight:      map[int]float64{10: 2.0, 1: 1.5, 6: 1.5, 3: 1.3},
	},
	domain.PriorityLove: {
		Label:            "Love & Romance",
		FavorablePlanets: []domain.Body{domain.Venus, domain.Moon, domain.Jupiter},
		FavorableHouses:  []int{7, 5, 11},
		PlanetWeight:     map[domain.Body]float64{domain.Venus: 2.0, domain.Moon: 1.2, domain.Jupiter: 1.2},
		HouseWeight:      map[int]float64{7: 2.0, 5: 1.8, 11: 1.2},
		Combos: []Combo{
			{"venus_jupiter_7th", "Venus & Jupiter in 7th House", "Perfect marriage and partnership energy", []domain.Body{domain.Venus, domain.Jupiter}, 7, 1.2},
			{"venus_moon_5th", "Venus & Moon in 5th House", "Romance, attraction, and emotional connection", []domain.Body{domain.Venus, domain.Moon}, 5, 1.0},
			{"venus_jupiter_5th", "Venus & Jupiter in 5th House", "Joy, romance, and abundant love", []domain.Body{domain.Venus, domain.Jupiter}, 5, 1.1},
			{"mars_saturn_7th", "Mars & Saturn in 7th House", "Relationship conflicts and commitment issues", []domain.Body{domain.Mars, domain.Saturn}, 7, -1.0},
			{"mars_pluto_5th", "Mars & Pluto in 5th House", "Intense, possibly obsessive romantic energy", []domain.Body{domain.Mars, domain.Pluto}, 5, -0.8},
		},
	},
	domain.PriorityCreativity: {
		Label:            "Creative Projects",
		FavorablePlanets: []domain.Body{domain.Venus, domain.Neptune, domain.Moon, domain.Sun},
		FavorableHouses:  []int{5, 3, 11},
		PlanetWeight:     map[domain.Body]float64{domain.Venus: 1.5, domain.Neptune: 1.5, domain.Moon: 1.2, domain.Sun: 1.2},
		HouseWeight:      map[int]float64{5: 2.0, 3: 1.2, 11: 1.2},
	},
	domain.PriorityMoney: {
		Label:            "Financial Gains",
		FavorablePlanets: []domain.Body{domain.Jupiter, domain.Venus, domain.Sun},
		FavorableHouses:  []int{2, 8},
		PlanetWeight:     map[domain.Body]float64{domain.Jupiter: 2.0, domain.Venus: 1.5, domain.Sun: 1.2},
		HouseWeight:      map[int]float64{2: 2.0, 8: 1.8},
		Combos: []Combo{
			{"jupiter_venus_2nd", "Jupiter & Venus in 2nd House", "Ultimate wealth combination - abundance and money together", []domain.Body{domain.Jupiter, domain.Venus}, 2, 1.5},
			{"jupiter_sun_2nd", "Jupiter & Sun in 2nd House", "Success and abundance in personal resources", []domain.Body{domain.Jupiter, domain.Sun}, 2, 1.2},
			{"venus_sun_8th", "Venus & Sun in 8th House", "Success in investments and shared resources", []domain.Body{domain.Venus, domain.Sun}, 8, 1.0},
			{"mars_saturn_2nd", "Mars & Saturn in 2nd House", "Financial restrictions and aggressive spending", []domain.Body{domain.Mars, domain.Saturn}, 2, -1.2},
			{"mars_pluto_8th", "Mars & Pluto in 8th House", "High-risk investment energy, financial power struggles", []domain.Body{domain.Mars, domain.Pluto}, 8, -1.5},
		},
	},
	domain.PriorityHealth: {
		Label:            "Health & Wellness",
		FavorablePlanets: []domain.Body{domain.Sun, domain.Mars, domain.Jupiter},
		FavorableHouses:  []int{1, 6, 12},
		PlanetWeight:     map[domain.Body]float64{domain.Sun: 2.0, domain.Mars: 1.2, domain.Jupiter: 1.2},
		HouseWeight:      map[int]float64{1: 1.8, 6: 2.0, 12: 1.2},
	},
	domain.PrioritySpiritual: {
		Label:            "Spiritual Growth",
		FavorablePlanets: []domain.Body{domain.Neptune, domain.Jupiter, domain.Moon, domain.Pluto},
		FavorableHouses:  []int{12, 9, 4},
		PlanetWeight:     map[domain.Body]float64{domain.Neptune: 2.0, domain.Jupiter: 1.8, domain.Moon: 1.2, domain.Pluto: 1.2},
		HouseWeight:      map[int]float64{12: 2.0, 9: 1.8, 4: 1.2},
	},
	domain.PriorityCommunication: {
		Label:            "Important Talks",
		FavorablePlanets: []domain.Body{domain.Mercury, domain.Jupiter, domain.Venus},
		FavorableHouses:  []int{3, 9, 11},
		PlanetWeight:     map[domain.Body]float64{domain.Mercury: 2.0, domain.Jupiter: 1.2, domain.Venus: 1.2},
		HouseWeight:      map[int]float64{3: 2.0, 9: 1.8, 11: 1.2},
	},
	domain.PriorityTravel: {
		Label:            "Travel & Adventure",
		FavorablePlanets: []domain.Body{domain.Jupiter, domain.Mercury, domain.Sun},
		FavorableHouses:  []int{9, 3, 12},
		PlanetWeight:     map[domain.Body]float64{domain.Jupiter: 2.0, domain.Mercury: 1.2, domain.Sun: 1.2},
		HouseWeight:      map[int]float64{9: 2.0, 3: 1.2, 12: 1.2},
	},
	domain.PriorityHome: {
		Label:            "Home & Family",
		FavorablePlanets: []domain.Body{domain.Moon, domain.Venus, domain.Jupiter},
		FavorableHouses:  []int{4, 2, 10},
		PlanetWeight:     map[domain.Body]float64{domain.Moon: 2.0, domain.Venus: 1.8, domain.Jupiter: 1.2},
		HouseWeight:      map[int]float64{4: 2.0, 2: 1.2, 10: 1.2},
	},
	domain.PriorityLearning: {
		Label:            "Education & Study",
		FavorablePlanets: []domain.Body{domain.Mercury, domain.Jupiter, domain.Uranus},
		FavorableHouses:  []int{3, 9, 11},
		PlanetWeight:     map[domain.Body]float64{domain.Mercury: 2.0, domain.Jupiter: 1.8, domain.Uranus: 1.2},
		HouseWeight:      map[int]float64{3: 1.8, 9: 2.0, 11: 1.2},
	},
}

func init() {
	for p, c := range criteria {
		c.Priority = p
		c.FavorableAspects = favorableAspects
		c.ChallengingAspects = challengingAspects
	}
}

// CriteriaFor returns the criteria of a priority tag.
func CriteriaFor(p domain.Priority) (*Criteria, bool) {
	c, ok := criteria[p]
	return c, ok
}

// Label returns the display label of a priority, or the raw tag when unknown.
func Label(p domain.Priority) string {
	if c, ok := criteria[p]; ok {
		return c.Label
	}
	return string(p)
}

// IsFavorablePlanet reports membership in FavorablePlanets.
func (c *Criteria) IsFavorablePlanet(b domain.Body) bool {
	for _, v := range c.FavorablePlanets {
		if v == b {
			return true
		}
	}
	return false
}

// IsFavorableHouse reports membership in FavorableHouses.
func (c *Criteria) IsFavorableHouse(h int) bool {
	for _, v := range c.FavorableHouses {
		if v == h {
			return true
		}
	}
	return false
}

// IsFavorableAspect reports membership in FavorableAspects.
func (c *Criteria) IsFavorableAspect(t domain.AspectType) bool {
	for _, v := range c.FavorableAspects {
		if v == t {
			return true
		}
	}
	return false
}

// IsChallengingAspect reports membership in ChallengingAspects.
func (c *Criteria) IsChallengingAspect(t domain.AspectType) bool {
	for _, v := range c.ChallengingAspects {
		if v == t {
			return true
		}
	}
	return false
}

// PlanetWeightOf returns the weight of a favorable planet (1 by default) or 0 otherwise.
func (c *Criteria) PlanetWeightOf(b domain.Body) float64 {
	if !c.IsFavorablePlanet(b) {
		return 0
	}
	if w, ok := c.PlanetWeight[b]; ok {
		return w
	}
	return 1
}

// HouseWeightOf returns the weight of a house, 1 by default.
func (c *Criteria) HouseWeightOf(h int) float64 {
	if w, ok := c.HouseWeight[h]; ok {
		return w
	}
	return 1
}

// relevantToChallenge reports a body that counts for challenging aspect penalties.
func (c *Criteria) relevantToChallenge(b domain.Body) bool {
	return c.IsFavorablePlanet(b) || b == domain.Mars || b == domain.Saturn || b == domain.Pluto
}

// ParsePriorities converts tags, dropping unknown values.
func ParsePriorities(tags []string) []domain.Priority {
	out := make([]domain.Priority, 0, len(tags))
	for _, t := range tags {
		p := domain.Priority(t)
		if p.IsValid() {
			out = append(out, p)
		}
	}
	return out
}
