package cee

import (
	"fmt"
	"math"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// Waypoint flies the node in a straight 3-D line from its position at
// construction time to the command's target.
type Waypoint struct {
	Base
	cmd *command.Waypoint
}

// NewWaypoint binds a waypoint command to a node. cmd may be nil, in which
// case Init fails with ErrMissingCommand.
func NewWaypoint(node *uav.Node, cmd *command.Waypoint) *Waypoint {
	to := node.Position()
	if cmd != nil {
		to = core.Position3D{X: cmd.X(), Y: cmd.Y(), Z: cmd.Z()}
	}
	return &Waypoint{
		Base: newBase(TypeWaypoint, node, node.Position(), to),
		cmd:  cmd,
	}
}

// Init derives heading, flight-path angle and speed for the segment and
// draws the per-second consumption rate. The node is not touched.
func (w *Waypoint) Init(now float64) error {
	if w.cmd == nil {
		return fmt.Errorf("%w: waypoint", ErrMissingCommand)
	}
	// Sub-epsilon axis deltas count as zero so float dust cannot tilt the
	// derived angles.
	dx := snapToZero(w.to.X - w.from.X)
	dy := snapToZero(w.to.Y - w.from.Y)
	dz := snapToZero(w.to.Z - w.from.Z)
	horizontal := math.Hypot(dx, dy)

	w.yaw = normalizeYaw(math.Atan2(dy, dx) * 180 / math.Pi)
	w.climbAngle = math.Atan2(dz, horizontal) * 180 / math.Pi
	w.pitch = -w.climbAngle
	w.speed = w.node.SpeedFor(w.climbAngle, uav.MethodDefault)

	if err := w.setConsumptionRate(w.node.SampleConsumptionRate()); err != nil {
		return err
	}
	w.markInitialized()
	return nil
}

// Activate writes the derived pose onto the node.
func (w *Waypoint) Activate(now float64) {
	w.applyPose(now)
}

// Update advances the node along the segment and discharges the battery.
// The step never carries the node past the target.
func (w *Waypoint) Update(step float64) {
	travel := w.speed * step
	remaining := w.node.Position().DistanceTo(w.to)
	if travel >= remaining {
		w.node.X = w.to.X
		w.node.Y = w.to.Y
		w.node.Z = w.to.Z
	} else {
		yawRad := w.yaw * math.Pi / 180
		climbRad := w.climbAngle * math.Pi / 180
		horizontal := travel * math.Cos(climbRad)
		w.node.X += horizontal * math.Cos(yawRad)
		w.node.Y += horizontal * math.Sin(yawRad)
		w.node.Z += travel * math.Sin(climbRad)
	}
	w.discharge(step)
}

// Completed reports arrival at the target within the positional tolerance.
func (w *Waypoint) Completed(now float64) (bool, error) {
	if w.Overridden() {
		return true, nil
	}
	return w.node.Position().ManhattanDistanceTo(w.to) <= Epsilon, nil
}

// OverallDuration forecasts the straight-line flight time in seconds.
func (w *Waypoint) OverallDuration() (float64, error) {
	if !w.Initialized() {
		return 0, fmt.Errorf("%w: waypoint duration", ErrNotActive)
	}
	return w.from.DistanceTo(w.to) / w.speed, nil
}

// OverallDurationQuantile forecasts the flight time using the pessimistic
// speed estimate, for conservative planning margins.
func (w *Waypoint) OverallDurationQuantile() (float64, error) {
	if !w.Initialized() {
		return 0, fmt.Errorf("%w: waypoint duration quantile", ErrNotActive)
	}
	speed := w.node.SpeedFor(w.climbAngle, uav.MethodPessimistic)
	return w.from.DistanceTo(w.to) / speed, nil
}

// RemainingTime forecasts the flight time left from the node's current
// position.
func (w *Waypoint) RemainingTime(now float64) (float64, error) {
	if !w.Initialized() {
		return 0, fmt.Errorf("%w: waypoint remaining time", ErrNotActive)
	}
	return w.node.Position().DistanceTo(w.to) / w.speed, nil
}

// ProbableConsumption forecasts the energy the segment will cost, from the
// node's movement model. Normalized, it returns the mAh/s rate instead of
// the total.
func (w *Waypoint) ProbableConsumption(normalized bool, method int) (float64, error) {
	duration, err := w.OverallDuration()
	if err != nil {
		return 0, err
	}
	if method == uav.MethodPessimistic {
		duration, _ = w.OverallDurationQuantile()
	}
	consumption := w.node.MovementConsumption(w.climbAngle, duration, method)
	if !normalized {
		return consumption, nil
	}
	if duration == 0 {
		return 0, nil
	}
	rate := consumption / duration
	if rate <= 0 || rate >= maxNormalizedConsumption {
		return 0, fmt.Errorf("%w: waypoint forecast rate %g mAh/s", ErrConsumptionModel, rate)
	}
	return rate, nil
}

// snapToZero squashes values within the positional tolerance of zero.
func snapToZero(v float64) float64 {
	if math.Abs(v) < Epsilon {
		return 0
	}
	return v
}

// normalizeYaw maps an angle in degrees onto [0,360).
func normalizeYaw(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
