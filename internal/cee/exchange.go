package cee

import (
	"fmt"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// Exchange represents a data/payload handover with a partner node,
// optionally followed by a recharge detour. The exchange itself has no
// physical motion and no internal notion of how long it takes; an
// external decision ends it through the override flag.
//
// When a recharge was requested, completion triggers the detour synthesis:
// a Waypoint toward the nearest charging station, a Charge and an Idle,
// returned in execution order for atomic front-insertion into the node's
// queue, plus a single fire-and-forget reservation to the station.
type Exchange struct {
	Base
	cmd *command.Exchange
}

// NewExchange binds an exchange command to a node.
func NewExchange(node *uav.Node, cmd *command.Exchange) *Exchange {
	pos := node.Position()
	return &Exchange{
		Base: newBase(TypeExchange, node, pos, pos),
		cmd:  cmd,
	}
}

// Init keeps the pose and draws the hover consumption rate for the time
// spent handing over.
func (e *Exchange) Init(now float64) error {
	if e.cmd == nil {
		return fmt.Errorf("%w: exchange", ErrMissingCommand)
	}
	e.yaw = e.node.Yaw
	e.pitch = e.node.Pitch
	e.climbAngle = e.node.ClimbAngle
	e.speed = 0

	if err := e.setConsumptionRate(e.node.SampleConsumptionRate()); err != nil {
		return err
	}
	e.markInitialized()
	return nil
}

// EntryActions hands the mission data to the partner when a recharge was
// requested. An unknown partner is an anomaly in the plan, not a defect in
// the engine: it is logged and the transfer skipped.
func (e *Exchange) EntryActions() error {
	if !e.cmd.RechargeRequested() {
		return nil
	}
	if !e.cmd.OtherKnown() {
		e.node.Logger().Error("exchange partner unknown, skipping mission data transfer",
			"node", e.node.Name,
		)
		return nil
	}
	e.node.TransferMissionDataTo(e.cmd.Other())
	return nil
}

func (e *Exchange) Activate(now float64) {
	e.applyPose(now)
}

// Update only discharges the battery while the handover runs.
func (e *Exchange) Update(step float64) {
	e.discharge(step)
}

// Completed is true only after an external override; the engine cannot
// forecast how long a handover takes.
func (e *Exchange) Completed(now float64) (bool, error) {
	return e.Overridden(), nil
}

// ExitActions synthesizes the recharge detour. The returned engines are in
// execution order: fly to the station, charge, then idle until the driver
// decides otherwise. The node's mission context is cleared, because the
// detour supersedes it.
func (e *Exchange) ExitActions(now float64) ([]CEE, error) {
	if !e.cmd.RechargeRequested() {
		return nil, nil
	}

	station := e.node.FindNearestChargingStation(e.node.X, e.node.Y, e.node.Z)
	if station == nil {
		e.node.Logger().Error("no charging station known, skipping recharge detour",
			"node", e.node.Name,
		)
		return nil, nil
	}

	toStation := NewWaypoint(e.node, command.NewWaypoint(
		station.Position.X, station.Position.Y, station.Position.Z,
	))
	toStation.SetPartOfMission(false)
	toStation.SetNoReplacementNeeded()
	// Initialized up front purely to read its forecasts; activation stays
	// with the driver.
	if err := toStation.Init(now); err != nil {
		return nil, fmt.Errorf("initializing detour waypoint: %w", err)
	}
	duration, err := toStation.OverallDuration()
	if err != nil {
		return nil, fmt.Errorf("forecasting detour duration: %w", err)
	}
	consumption, err := toStation.ProbableConsumption(false, uav.MethodDefault)
	if err != nil {
		return nil, fmt.Errorf("forecasting detour consumption: %w", err)
	}

	request := core.NewReservationRequest(e.node.Name, now+duration, consumption)
	if !e.node.OutputChannelTo(station).TrySend(request) {
		e.node.Logger().Warn("reservation channel full, request dropped",
			"node", e.node.Name,
			"station", station.Name,
		)
	} else {
		e.node.Logger().Info("charging reservation sent",
			"node", e.node.Name,
			"station", station.Name,
			"estimatedArrival", request.EstimatedArrival,
			"consumptionTillArrival", request.ConsumptionTillArrival,
		)
	}

	charge := NewCharge(e.node, command.NewCharge(station))
	charge.SetPartOfMission(false)
	charge.SetNoReplacementNeeded()
	charge.SetToCoordinates(station.Position)

	idle := NewIdle(e.node, command.NewIdle())
	idle.SetPartOfMission(false)
	idle.SetNoReplacementNeeded()
	idle.SetFromCoordinates(station.Position)
	idle.SetToCoordinates(station.Position)

	e.node.ClearMission()

	return []CEE{toStation, charge, idle}, nil
}

// ProbableConsumption is defined for the normalized form only: the hover
// rate while the handover runs. The total is undefined, like the duration.
func (e *Exchange) ProbableConsumption(normalized bool, method int) (float64, error) {
	if !normalized {
		return 0, forecastErr(TypeExchange)
	}
	rate := e.node.HoverConsumption(1, method)
	if rate <= 0 || rate >= maxNormalizedConsumption {
		return 0, fmt.Errorf("%w: exchange hover rate %g mAh/s", ErrConsumptionModel, rate)
	}
	return rate, nil
}
