package cee

import (
	"fmt"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
)

// Idle is the open-ended queue terminator. It consumes nothing, moves
// nothing and completes only through the external override, so the driver
// always has a current command to poll after a detour chain.
type Idle struct {
	Base
	cmd *command.Idle
}

// NewIdle binds an idle command to a node.
func NewIdle(node *uav.Node, cmd *command.Idle) *Idle {
	pos := node.Position()
	return &Idle{
		Base: newBase(TypeIdle, node, pos, pos),
		cmd:  cmd,
	}
}

func (i *Idle) Init(now float64) error {
	if i.cmd == nil {
		return fmt.Errorf("%w: idle", ErrMissingCommand)
	}
	i.yaw = i.node.Yaw
	i.pitch = 0
	i.climbAngle = 0
	i.speed = 0
	i.markInitialized()
	return nil
}

func (i *Idle) Activate(now float64) {
	i.applyPose(now)
}

// Update is a no-op; idling costs nothing.
func (i *Idle) Update(step float64) {}

// Completed is true only after an external override.
func (i *Idle) Completed(now float64) (bool, error) {
	return i.Overridden(), nil
}

// ProbableConsumption is zero; idling costs nothing.
func (i *Idle) ProbableConsumption(normalized bool, method int) (float64, error) {
	return 0, nil
}
