package cee

import (
	"fmt"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
)

// HoldPosition hovers in place for a fixed duration. The completion
// deadline is absolute, computed at initialization; polling past it is an
// invariant violation, because the driver loop is required to clamp its
// step so the deadline is hit exactly.
type HoldPosition struct {
	Base
	cmd      *command.HoldPosition
	deadline float64
}

// NewHoldPosition binds a hold command to a node.
func NewHoldPosition(node *uav.Node, cmd *command.HoldPosition) *HoldPosition {
	pos := node.Position()
	return &HoldPosition{
		Base: newBase(TypeHoldPosition, node, pos, pos),
		cmd:  cmd,
	}
}

// Init fixes the completion deadline at now plus the requested hold time
// and draws the hover consumption rate. Orientation is kept as-is.
func (h *HoldPosition) Init(now float64) error {
	if h.cmd == nil {
		return fmt.Errorf("%w: hold position", ErrMissingCommand)
	}
	h.deadline = now + h.cmd.HoldSeconds()
	h.yaw = h.node.Yaw
	h.pitch = h.node.Pitch
	h.climbAngle = h.node.ClimbAngle
	h.speed = 0

	if err := h.setConsumptionRate(h.node.SampleConsumptionRate()); err != nil {
		return err
	}
	h.markInitialized()
	return nil
}

func (h *HoldPosition) Activate(now float64) {
	h.applyPose(now)
}

// Update only discharges the battery; the node does not move.
func (h *HoldPosition) Update(step float64) {
	h.discharge(step)
}

// Completed reports whether the deadline has been reached. Overrunning the
// deadline by more than the tolerance is fatal.
func (h *HoldPosition) Completed(now float64) (bool, error) {
	if h.Overridden() {
		return true, nil
	}
	if now > h.deadline+Epsilon {
		return false, fmt.Errorf("%w: hold deadline %gs polled at %gs", ErrDeadlineExceeded, h.deadline, now)
	}
	return h.deadline-now <= Epsilon, nil
}

// OverallDuration is the requested hold time.
func (h *HoldPosition) OverallDuration() (float64, error) {
	if h.cmd == nil {
		return 0, fmt.Errorf("%w: hold position", ErrMissingCommand)
	}
	return h.cmd.HoldSeconds(), nil
}

// OverallDurationQuantile equals the hold time; hovering has no speed
// uncertainty.
func (h *HoldPosition) OverallDurationQuantile() (float64, error) {
	return h.OverallDuration()
}

// RemainingTime is the time left until the deadline, never negative.
func (h *HoldPosition) RemainingTime(now float64) (float64, error) {
	if !h.Initialized() {
		return 0, fmt.Errorf("%w: hold remaining time", ErrNotActive)
	}
	remaining := h.deadline - now
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// ProbableConsumption forecasts the hover energy cost over the hold time.
func (h *HoldPosition) ProbableConsumption(normalized bool, method int) (float64, error) {
	duration, err := h.OverallDuration()
	if err != nil {
		return 0, err
	}
	consumption := h.node.HoverConsumption(duration, method)
	if !normalized {
		return consumption, nil
	}
	if duration == 0 {
		return 0, nil
	}
	rate := consumption / duration
	if rate <= 0 || rate >= maxNormalizedConsumption {
		return 0, fmt.Errorf("%w: hover forecast rate %g mAh/s", ErrConsumptionModel, rate)
	}
	return rate, nil
}
