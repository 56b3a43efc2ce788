package cee

import (
	"fmt"
	"math"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// Takeoff moves the node purely vertically to the command's target
// altitude, in either direction. Horizontal position and heading are kept.
type Takeoff struct {
	Base
	cmd *command.Takeoff
}

// NewTakeoff binds a takeoff command to a node.
func NewTakeoff(node *uav.Node, cmd *command.Takeoff) *Takeoff {
	from := node.Position()
	to := from
	if cmd != nil {
		to = core.Position3D{X: from.X, Y: from.Y, Z: cmd.Z()}
	}
	return &Takeoff{
		Base: newBase(TypeTakeoff, node, from, to),
		cmd:  cmd,
	}
}

// Init derives the vertical flight parameters. The climb angle is exactly
// +90 or -90 depending on the direction of the altitude change.
func (t *Takeoff) Init(now float64) error {
	if t.cmd == nil {
		return fmt.Errorf("%w: takeoff", ErrMissingCommand)
	}
	t.climbAngle = 90
	if t.to.Z < t.from.Z {
		t.climbAngle = -90
	}
	t.pitch = 0
	t.yaw = t.node.Yaw
	t.speed = t.node.SpeedFor(t.climbAngle, uav.MethodDefault)

	if err := t.setConsumptionRate(t.node.SampleConsumptionRate()); err != nil {
		return err
	}
	t.markInitialized()
	return nil
}

func (t *Takeoff) Activate(now float64) {
	t.applyPose(now)
}

// Update moves the vertical coordinate toward the target altitude and
// discharges the battery.
func (t *Takeoff) Update(step float64) {
	travel := t.speed * step
	remaining := math.Abs(t.to.Z - t.node.Z)
	if travel >= remaining {
		t.node.Z = t.to.Z
	} else if t.to.Z > t.node.Z {
		t.node.Z += travel
	} else {
		t.node.Z -= travel
	}
	t.discharge(step)
}

// Completed reports arrival at the target altitude within tolerance.
func (t *Takeoff) Completed(now float64) (bool, error) {
	if t.Overridden() {
		return true, nil
	}
	return math.Abs(t.to.Z-t.node.Z) <= Epsilon, nil
}

// OverallDuration forecasts the climb or descent time in seconds.
func (t *Takeoff) OverallDuration() (float64, error) {
	if !t.Initialized() {
		return 0, fmt.Errorf("%w: takeoff duration", ErrNotActive)
	}
	return math.Abs(t.to.Z-t.from.Z) / t.speed, nil
}

// OverallDurationQuantile forecasts the climb time with the pessimistic
// speed estimate.
func (t *Takeoff) OverallDurationQuantile() (float64, error) {
	if !t.Initialized() {
		return 0, fmt.Errorf("%w: takeoff duration quantile", ErrNotActive)
	}
	speed := t.node.SpeedFor(t.climbAngle, uav.MethodPessimistic)
	return math.Abs(t.to.Z-t.from.Z) / speed, nil
}

// RemainingTime forecasts the climb time left from the current altitude.
func (t *Takeoff) RemainingTime(now float64) (float64, error) {
	if !t.Initialized() {
		return 0, fmt.Errorf("%w: takeoff remaining time", ErrNotActive)
	}
	return math.Abs(t.to.Z-t.node.Z) / t.speed, nil
}

// ProbableConsumption forecasts the energy cost of the vertical leg.
// Unlike horizontal flight a zero rate is tolerated here: a descent can
// cost arbitrarily little.
func (t *Takeoff) ProbableConsumption(normalized bool, method int) (float64, error) {
	duration, err := t.OverallDuration()
	if err != nil {
		return 0, err
	}
	if method == uav.MethodPessimistic {
		duration, _ = t.OverallDurationQuantile()
	}
	consumption := t.node.MovementConsumption(t.climbAngle, duration, method)
	if !normalized {
		return consumption, nil
	}
	if duration == 0 {
		return 0, nil
	}
	rate := consumption / duration
	if rate < 0 || rate >= maxNormalizedConsumption {
		return 0, fmt.Errorf("%w: takeoff forecast rate %g mAh/s", ErrConsumptionModel, rate)
	}
	return rate, nil
}
