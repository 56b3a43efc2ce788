// Package cee implements the command execution engines: one engine instance
// executes one mission command on one UAV, advancing its pose and battery
// over simulated time and deciding when the command has completed.
//
// Every engine passes through the same lifecycle, driven externally:
// Init (pure derivation of kinematics and the stochastic consumption rate),
// EntryActions, Activate (the only point that writes orientation/speed onto
// the node), repeated Update calls per elapsed time slice, a polled
// Completed predicate, and ExitActions. Exit actions may synthesize a chain
// of follow-up engines to prepend to the node's command queue, which makes
// execution a self-extending pipeline rather than a fixed playlist.
package cee

import (
	"fmt"

	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// Epsilon is the absolute tolerance for positional and angular comparisons.
// Accumulated floating error below this bound counts as zero.
const Epsilon = 1e-10

// maxNormalizedConsumption is the sanity ceiling for a forecast consumption
// rate in mAh/s. A value at or above it indicates a modeling defect upstream.
const maxNormalizedConsumption = 1000.0

// Type identifies the engine variant. Set once at construction.
type Type int

const (
	TypeWaypoint Type = iota
	TypeTakeoff
	TypeHoldPosition
	TypeCharge
	TypeExchange
	TypeIdle
)

func (t Type) String() string {
	return [...]string{"Waypoint", "Takeoff", "HoldPosition", "Charge", "Exchange", "Idle"}[t]
}

// CEE is the lifecycle contract shared by all command execution engines.
// Simulated time is threaded explicitly: now is the current simulated time
// in seconds, step a positive slice of elapsed simulated seconds.
type CEE interface {
	Type() Type
	Node() *uav.Node
	From() core.Position3D
	To() core.Position3D

	// Init derives kinematics and draws the stochastic consumption rate.
	// Pure with respect to the node. Fails when no command is bound.
	Init(now float64) error

	// EntryActions runs side effects immediately before activation.
	EntryActions() error

	// Activate writes the derived yaw/pitch/climbAngle/speed onto the node
	// and records the execution start time. Exactly once per engine, after
	// Init and before any Update.
	Activate(now float64)

	// Update advances the node's position where applicable and always
	// discharges the battery by the drawn rate times step.
	Update(step float64)

	// Completed reports logical completion. Monotonic: once true it stays
	// true. The external override short-circuits the variant's own test.
	Completed(now float64) (bool, error)

	// ExitActions runs side effects immediately after completion and
	// returns any follow-up engines to prepend to the node's queue, in
	// execution order.
	ExitActions(now float64) ([]CEE, error)

	// Forecasting queries for planning. Variants without a well-defined
	// end time return ErrUndefinedForecast.
	OverallDuration() (float64, error)
	OverallDurationQuantile() (float64, error)
	RemainingTime(now float64) (float64, error)
	ProbableConsumption(normalized bool, method int) (float64, error)

	// Override marks the engine completed regardless of its own test.
	Override()

	Active() bool
	PartOfMission() bool
	ReplacementNeeded() bool
}

// Base carries the state common to all engine variants and the default
// behavior for hooks and forecasts the variant does not define.
type Base struct {
	ceeType Type
	node    *uav.Node

	from core.Position3D // fixed at construction
	to   core.Position3D

	// Derived kinematics, computed by Init, written onto the node by Activate.
	yaw        float64
	pitch      float64
	climbAngle float64
	speed      float64

	// Stochastic per-second discharge rate, drawn once at Init.
	consumptionPerSecond float64

	timeExecutionStart float64
	initialized        bool
	active             bool

	// Sticky external completion override.
	commandCompleted bool

	partOfMission     bool
	replacementNeeded bool
}

// newBase binds the shared state. Engines are part of the mission and
// eligible for replacement unless flagged otherwise.
func newBase(t Type, node *uav.Node, from, to core.Position3D) Base {
	return Base{
		ceeType:           t,
		node:              node,
		from:              from,
		to:                to,
		partOfMission:     true,
		replacementNeeded: true,
	}
}

func (b *Base) Type() Type            { return b.ceeType }
func (b *Base) Node() *uav.Node       { return b.node }
func (b *Base) From() core.Position3D { return b.from }
func (b *Base) To() core.Position3D   { return b.to }

// Yaw returns the derived heading in degrees, [0,360).
func (b *Base) Yaw() float64 { return b.yaw }

// Pitch returns the derived pitch in degrees.
func (b *Base) Pitch() float64 { return b.pitch }

// ClimbAngle returns the derived flight-path angle in degrees.
func (b *Base) ClimbAngle() float64 { return b.climbAngle }

// Speed returns the derived cruise speed in m/s.
func (b *Base) Speed() float64 { return b.speed }

// ConsumptionPerSecond returns the drawn discharge rate in mAh/s.
func (b *Base) ConsumptionPerSecond() float64 { return b.consumptionPerSecond }

// StartTime returns the simulated time Activate was called at.
func (b *Base) StartTime() float64 { return b.timeExecutionStart }

// Initialized reports whether Init has run.
func (b *Base) Initialized() bool { return b.initialized }

// Active reports whether Activate has run.
func (b *Base) Active() bool { return b.active }

// Override marks the engine completed, short-circuiting its own test.
func (b *Base) Override() { b.commandCompleted = true }

// Overridden reports the sticky external completion flag.
func (b *Base) Overridden() bool { return b.commandCompleted }

// PartOfMission reports whether this engine counts toward mission progress.
func (b *Base) PartOfMission() bool { return b.partOfMission }

// SetPartOfMission flags the engine as a mission step or a detour.
func (b *Base) SetPartOfMission(v bool) { b.partOfMission = v }

// ReplacementNeeded reports whether finishing this engine should trigger
// automatic replacement with the next mission step.
func (b *Base) ReplacementNeeded() bool { return b.replacementNeeded }

// SetNoReplacementNeeded marks the engine as not triggering replacement.
func (b *Base) SetNoReplacementNeeded() { b.replacementNeeded = false }

// SetToCoordinates adjusts the target before initialization. Used when a
// synthesized engine's target differs from the node's position at
// construction time.
func (b *Base) SetToCoordinates(p core.Position3D) { b.to = p }

// SetFromCoordinates adjusts the origin before initialization.
func (b *Base) SetFromCoordinates(p core.Position3D) { b.from = p }

// markInitialized records that kinematics derivation has run.
func (b *Base) markInitialized() { b.initialized = true }

// applyPose writes the derived orientation and speed onto the node and
// records the execution start time. Variants call this from Activate.
func (b *Base) applyPose(now float64) {
	b.node.Yaw = b.yaw
	b.node.Pitch = b.pitch
	b.node.ClimbAngle = b.climbAngle
	b.node.Speed = b.speed
	b.timeExecutionStart = now
	b.active = true
}

// setConsumptionRate stores the drawn discharge rate after a sanity check.
func (b *Base) setConsumptionRate(rate float64) error {
	if rate < 0 || rate >= maxNormalizedConsumption {
		return fmt.Errorf("%w: %s drew %g mAh/s", ErrConsumptionModel, b.ceeType, rate)
	}
	b.consumptionPerSecond = rate
	return nil
}

// discharge drains the battery for one update slice.
func (b *Base) discharge(step float64) {
	b.node.Battery.Discharge(b.consumptionPerSecond * step)
}

// EntryActions is a no-op by default.
func (b *Base) EntryActions() error { return nil }

// ExitActions is a no-op by default.
func (b *Base) ExitActions(now float64) ([]CEE, error) { return nil, nil }

// OverallDuration is undefined unless the variant overrides it.
func (b *Base) OverallDuration() (float64, error) {
	return 0, forecastErr(b.ceeType)
}

// OverallDurationQuantile is undefined unless the variant overrides it.
func (b *Base) OverallDurationQuantile() (float64, error) {
	return 0, forecastErr(b.ceeType)
}

// RemainingTime is undefined unless the variant overrides it.
func (b *Base) RemainingTime(now float64) (float64, error) {
	return 0, forecastErr(b.ceeType)
}

// ProbableConsumption is undefined unless the variant overrides it.
func (b *Base) ProbableConsumption(normalized bool, method int) (float64, error) {
	return 0, forecastErr(b.ceeType)
}
