// Package uav models the mobile agent the command execution engine acts on:
// its pose, battery, kinematics/energy model and the charging stations it
// can fall back to.
package uav

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/uavops/uavsim/internal/channel"
	"github.com/uavops/uavsim/pkg/core"
)

// Node is one UAV. The command execution engine is the sole mutator of the
// pose fields while a command is active.
type Node struct {
	Name string

	// Pose, written by the active command execution engine.
	X, Y, Z    float64
	Yaw        float64 // degrees, [0,360)
	Pitch      float64 // degrees
	ClimbAngle float64 // degrees, (-90,90]
	Speed      float64 // m/s

	Battery *Battery
	Energy  EnergyModel
	Sampler ConsumptionSampler

	// Stations known to this node for recharge detours.
	Stations []*ChargingStation

	// MissionID identifies the mission the node is flying; uuid.Nil means
	// no mission context (e.g. during a recharge detour).
	MissionID uuid.UUID

	log *slog.Logger

	missionDataReceived int
	missionDataSent     int
}

// NewNode creates a UAV at the given position.
func NewNode(name string, pos core.Position3D, battery *Battery, energy EnergyModel, sampler ConsumptionSampler, logger *slog.Logger) *Node {
	return &Node{
		Name:    name,
		X:       pos.X,
		Y:       pos.Y,
		Z:       pos.Z,
		Battery: battery,
		Energy:  energy,
		Sampler: sampler,
		log:     logger,
	}
}

// Position returns the node's current position.
func (n *Node) Position() core.Position3D {
	return core.Position3D{X: n.X, Y: n.Y, Z: n.Z}
}

// Logger returns the node's logger, falling back to slog.Default.
func (n *Node) Logger() *slog.Logger {
	if n.log == nil {
		return slog.Default()
	}
	return n.log
}

// SpeedFor returns the model cruise speed for a climb angle in degrees.
func (n *Node) SpeedFor(climbAngle float64, method int) float64 {
	return n.Energy.Speed(climbAngle, method)
}

// MovementConsumption returns the forecast energy use for flying at the
// given climb angle for the given duration.
func (n *Node) MovementConsumption(climbAngle, duration float64, method int) float64 {
	return n.Energy.MovementConsumption(climbAngle, duration, method)
}

// HoverConsumption returns the forecast energy use for hovering.
func (n *Node) HoverConsumption(duration float64, method int) float64 {
	return n.Energy.HoverConsumption(duration, method)
}

// SampleConsumptionRate draws the stochastic per-second consumption rate
// fixed at command initialization.
func (n *Node) SampleConsumptionRate() float64 {
	if n.Sampler == nil {
		return 0
	}
	return n.Sampler.Sample()
}

// FindNearestChargingStation returns the station closest to the given
// position, or nil when the node knows no stations.
func (n *Node) FindNearestChargingStation(x, y, z float64) *ChargingStation {
	from := core.Position3D{X: x, Y: y, Z: z}
	var nearest *ChargingStation
	best := 0.0
	for _, s := range n.Stations {
		d := from.DistanceTo(s.Position)
		if nearest == nil || d < best {
			nearest = s
			best = d
		}
	}
	return nearest
}

// OutputChannelTo returns the sender half of the channel toward a station.
func (n *Node) OutputChannelTo(s *ChargingStation) channel.Sender[core.ReservationRequest] {
	return s.ReservationChannel()
}

// TransferMissionDataTo hands the collected mission data to another node,
// e.g. the partner taking over before a recharge detour.
func (n *Node) TransferMissionDataTo(other *Node) {
	n.missionDataSent++
	other.missionDataReceived++
	n.Logger().Info("transferring mission data",
		"from", n.Name,
		"to", other.Name,
	)
}

// MissionDataReceived returns how many transfers this node has received.
func (n *Node) MissionDataReceived() int {
	return n.missionDataReceived
}

// MissionDataSent returns how many transfers this node has initiated.
func (n *Node) MissionDataSent() int {
	return n.missionDataSent
}

// ClearMission drops the node's mission context.
func (n *Node) ClearMission() {
	n.MissionID = uuid.Nil
}
