// Package command defines the immutable parameter bundles consumed by the
// command execution engines. Commands are never mutated after construction;
// the engine only reads them.
package command

import "github.com/uavops/uavsim/internal/uav"

// Waypoint directs a UAV to a 3D target position.
type Waypoint struct {
	x, y, z float64
}

// NewWaypoint creates a waypoint command.
func NewWaypoint(x, y, z float64) *Waypoint {
	return &Waypoint{x: x, y: y, z: z}
}

func (c *Waypoint) X() float64 { return c.x }
func (c *Waypoint) Y() float64 { return c.y }
func (c *Waypoint) Z() float64 { return c.z }

// Takeoff directs a UAV to a target altitude, keeping its horizontal position.
type Takeoff struct {
	z float64
}

// NewTakeoff creates a takeoff command toward the given altitude.
func NewTakeoff(z float64) *Takeoff {
	return &Takeoff{z: z}
}

func (c *Takeoff) Z() float64 { return c.z }

// HoldPosition directs a UAV to hover in place for a fixed duration.
type HoldPosition struct {
	seconds float64
}

// NewHoldPosition creates a hold command for the given duration in seconds.
func NewHoldPosition(seconds float64) *HoldPosition {
	return &HoldPosition{seconds: seconds}
}

func (c *HoldPosition) HoldSeconds() float64 { return c.seconds }

// Charge directs a UAV to recharge at a station until its battery is full.
type Charge struct {
	station *uav.ChargingStation
}

// NewCharge creates a charge command bound to a station.
func NewCharge(station *uav.ChargingStation) *Charge {
	return &Charge{station: station}
}

func (c *Charge) Station() *uav.ChargingStation { return c.station }

// Exchange directs a UAV to exchange mission data with a partner node,
// optionally followed by a recharge detour.
type Exchange struct {
	other             *uav.Node
	rechargeRequested bool
}

// NewExchange creates an exchange command. other may be nil when the
// partner is unknown.
func NewExchange(other *uav.Node, rechargeRequested bool) *Exchange {
	return &Exchange{other: other, rechargeRequested: rechargeRequested}
}

func (c *Exchange) Other() *uav.Node         { return c.other }
func (c *Exchange) OtherKnown() bool         { return c.other != nil }
func (c *Exchange) RechargeRequested() bool  { return c.rechargeRequested }

// Idle is an open-ended placeholder command, ended only externally.
type Idle struct{}

// NewIdle creates an idle command.
func NewIdle() *Idle {
	return &Idle{}
}
