package uav

import (
	"github.com/uavops/uavsim/internal/channel"
	"github.com/uavops/uavsim/pkg/core"
)

// reservationBuffer bounds the pending reservations a station can hold.
const reservationBuffer = 16

// ChargingStation is a fixed ground station UAVs can recharge at.
// Admission scheduling is not modeled; the station only receives
// reservation announcements and refills batteries of UAVs charging at it.
type ChargingStation struct {
	Name       string
	Position   core.Position3D
	ChargeRate float64 // mAh per second delivered to a docked UAV

	reservations channel.Channel[core.ReservationRequest]
}

// NewChargingStation creates a station at the given position.
func NewChargingStation(name string, pos core.Position3D, chargeRate float64) *ChargingStation {
	return &ChargingStation{
		Name:         name,
		Position:     pos,
		ChargeRate:   chargeRate,
		reservations: channel.New[core.ReservationRequest](reservationBuffer),
	}
}

// ReservationChannel returns the station's inbound reservation channel.
func (s *ChargingStation) ReservationChannel() channel.Channel[core.ReservationRequest] {
	return s.reservations
}

// PendingReservations returns the number of undelivered reservations.
func (s *ChargingStation) PendingReservations() int {
	return s.reservations.Len()
}
