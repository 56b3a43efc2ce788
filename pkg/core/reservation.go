package core

import "github.com/google/uuid"

// ReservationRequest announces a UAV's intent to charge at a station.
// It is sent fire-and-forget before the UAV departs toward the station.
type ReservationRequest struct {
	ID                     uuid.UUID `json:"id"`
	NodeName               string    `json:"nodeName"`
	EstimatedArrival       float64   `json:"estimatedArrival"`       // simulated seconds
	ConsumptionTillArrival float64   `json:"consumptionTillArrival"` // mAh
	TargetPercentage       float64   `json:"targetPercentage"`
}

// NewReservationRequest builds a request with a fresh ID and a full-charge target.
func NewReservationRequest(nodeName string, arrival, consumption float64) ReservationRequest {
	return ReservationRequest{
		ID:                     uuid.New(),
		NodeName:               nodeName,
		EstimatedArrival:       arrival,
		ConsumptionTillArrival: consumption,
		TargetPercentage:       100.0,
	}
}
