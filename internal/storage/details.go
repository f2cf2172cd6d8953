package storage

import (
	"encoding/json"
	"fmt"

	"electional-engine/internal/domain"
)

// details is the nested part of an event that SQL stores keep in a JSON column.
type details struct {
	Aspects            []string               `json:"aspects,omitempty"`
	PlanetaryPositions []string               `json:"planetaryPositions,omitempty"`
	TimeWindow         *domain.TimeWindow     `json:"timeWindow,omitempty"`
	ElectionalData     *domain.ElectionalData `json:"electionalData,omitempty"`
	ChartData          *domain.ChartSnapshot  `json:"chartData,omitempty"`
	Priorities         []string               `json:"priorities,omitempty"`
	State              domain.PersistState    `json:"state,omitempty"`
}

// EncodeDetails serializes the nested fields of an event.
func EncodeDetails(e *domain.Event) ([]byte, error) {
	data, err := json.Marshal(details{
		Aspects:            e.Aspects,
		PlanetaryPositions: e.PlanetaryPositions,
		TimeWindow:         e.TimeWindow,
		ElectionalData:     e.ElectionalData,
		ChartData:          e.ChartData,
		Priorities:         e.Priorities,
		State:              e.State,
	})
	if err != nil {
		return nil, fmt.Errorf("encode event details: %w", err)
	}
	return data, nil
}

// DecodeDetails fills the nested fields of an event.
func DecodeDetails(data []byte, e *domain.Event) error {
	if len(data) == 0 {
		return nil
	}
	var d details
	if err := json.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("decode event details: %w", err)
	}
	e.Aspects = d.Aspects
	e.PlanetaryPositions = d.PlanetaryPositions
	e.TimeWindow = d.TimeWindow
	e.ElectionalData = d.ElectionalData
	e.ChartData = d.ChartData
	e.Priorities = d.Priorities
	e.State = d.State
	return nil
}
