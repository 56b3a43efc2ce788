package telemetry

import (
	"time"

	"gorm.io/datatypes"
)

// ScenarioRow is the scenario metadata table.
type ScenarioRow struct {
	ID        uint   `gorm:"primarykey"`
	SessionID string `gorm:"uniqueIndex;size:36"`
	Name      string
	StartTime time.Time
	StepSize  float64
	Duration  float64
	Seed      int64
	Params    datatypes.JSON
}

func (ScenarioRow) TableName() string { return "scenarios" }

// NodeStateRow is one telemetry sample.
type NodeStateRow struct {
	ID         uint `gorm:"primarykey"`
	ScenarioID uint `gorm:"index"`
	NodeName   string
	SimTime    float64
	X, Y, Z    float64
	Yaw        float64
	Pitch      float64
	ClimbAngle float64
	Speed      float64

	BatteryRemaining  float64
	BatteryPercentage float64
	CommandType       string
	MissionID         string `gorm:"size:36"`

	// WGS84 position, zero unless the backend was given a world anchor.
	Longitude float64
	Latitude  float64
}

func (NodeStateRow) TableName() string { return "node_states" }

// ReservationRow is one charging reservation announcement.
type ReservationRow struct {
	ID         uint   `gorm:"primarykey"`
	ScenarioID uint   `gorm:"index"`
	RequestID  string `gorm:"size:36"`
	NodeName   string

	EstimatedArrival       float64
	ConsumptionTillArrival float64
	TargetPercentage       float64
}

func (ReservationRow) TableName() string { return "reservations" }
