package domain

// Priority is a user-selected life activity that timing is optimized for.
type Priority string

const (
	PriorityCareer        Priority = "career"
	PriorityLove          Priority = "love"
	PriorityCreativity    Priority = "creativity"
	PriorityMoney         Priority = "money"
	PriorityHealth        Priority = "health"
	PrioritySpiritual     Priority = "spiritual"
	PriorityCommunication Priority = "communication"
	PriorityTravel        Priority = "travel"
	PriorityHome          Priority = "home"
	PriorityLearning      Priority = "learning"
)

// Priorities lists every known priority tag.
var Priorities = []Priority{
	PriorityCareer, PriorityLove, PriorityCreativity, PriorityMoney, PriorityHealth,
	PrioritySpiritual, PriorityCommunication, PriorityTravel, PriorityHome, PriorityLearning,
}

// String returns the string representation of Priority.
func (p Priority) String() string {
	return string(p)
}

// IsValid checks if the priority is a known value.
func (p Priority) IsValid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Location is an observer position in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsValid checks the coordinate ranges.
func (l Location) IsValid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}
