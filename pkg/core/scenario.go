package core

import (
	"time"

	"github.com/google/uuid"
)

// Scenario describes one simulation run for telemetry backends.
type Scenario struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	StartTime time.Time      `json:"startTime"`
	StepSize  float64        `json:"stepSize"` // seconds per slice
	Duration  float64        `json:"duration"` // simulated seconds
	Seed      int64          `json:"seed"`
	Params    map[string]any `json:"params,omitempty"`
}

// NewScenario builds a scenario descriptor with a fresh session ID.
func NewScenario(name string, stepSize, duration float64, seed int64) *Scenario {
	return &Scenario{
		ID:        uuid.New(),
		Name:      name,
		StartTime: time.Now(),
		StepSize:  stepSize,
		Duration:  duration,
		Seed:      seed,
	}
}
