package cee

import (
	"fmt"
	"math"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
)

// Charge parks the node at a charging station until its battery is full.
// The engine itself neither moves the node nor charges the battery; the
// station refills docked batteries from outside. The engine only watches
// the battery and accounts for the energy gained.
type Charge struct {
	Base
	cmd *command.Charge

	// Battery level snapshot taken at activation, in mAh.
	remainingAtStart float64
}

// NewCharge binds a charge command to a node. The geometry defaults to the
// node's position; a detour synthesizer may retarget it to the station via
// SetToCoordinates before initialization.
func NewCharge(node *uav.Node, cmd *command.Charge) *Charge {
	pos := node.Position()
	return &Charge{
		Base: newBase(TypeCharge, node, pos, pos),
		cmd:  cmd,
	}
}

// Station returns the station the command is bound to, nil when unknown.
func (c *Charge) Station() *uav.ChargingStation {
	if c.cmd == nil {
		return nil
	}
	return c.cmd.Station()
}

// Init has nothing to derive: no motion, and the charge rate is the
// station's business.
func (c *Charge) Init(now float64) error {
	if c.cmd == nil {
		return fmt.Errorf("%w: charge", ErrMissingCommand)
	}
	c.speed = 0
	c.pitch = 0
	c.climbAngle = 0
	c.markInitialized()
	return nil
}

// Activate snapshots the battery level and scrambles the yaw from the
// charge percentage. The yaw has no physical meaning while docked; the
// scramble just makes charging visible in rendered traces.
func (c *Charge) Activate(now float64) {
	c.yaw = math.Mod(c.node.Battery.RemainingPercentage()/10*360, 360)
	c.remainingAtStart = c.node.Battery.Remaining()
	c.applyPose(now)
}

// Update is a no-op; the station side refills the battery.
func (c *Charge) Update(step float64) {}

// Completed reports a full battery.
func (c *Charge) Completed(now float64) (bool, error) {
	if c.Overridden() {
		return true, nil
	}
	return c.node.Battery.IsFull(), nil
}

// ProbableConsumption is zero: charging draws from the station, not from
// the battery.
func (c *Charge) ProbableConsumption(normalized bool, method int) (float64, error) {
	return 0, nil
}

// ConsumptionTotal returns the net energy gained since activation as a
// negative consumption, in mAh. It fails before activation and when no
// charge was gained, which would mean the station never delivered.
func (c *Charge) ConsumptionTotal() (float64, error) {
	if !c.Active() {
		return 0, fmt.Errorf("%w: charge consumption total", ErrNotActive)
	}
	gained := c.node.Battery.Remaining() - c.remainingAtStart
	if gained <= 0 {
		return 0, fmt.Errorf("%w: charge gained %g mAh", ErrConsumptionModel, gained)
	}
	return -gained, nil
}
