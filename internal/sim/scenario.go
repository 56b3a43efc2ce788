package sim

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/uavops/uavsim/internal/cee"
	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// ScenarioSpec is the on-disk description of a simulation setup: the world
// anchor, the charging stations and the fleet with its command sequences.
type ScenarioSpec struct {
	Name   string `json:"name"`
	Origin string `json:"origin,omitempty"` // "lon,lat" WGS84 anchor

	Stations []StationSpec `json:"stations"`
	Nodes    []NodeSpec    `json:"nodes"`
}

// StationSpec describes one charging station.
type StationSpec struct {
	Name       string  `json:"name"`
	Position   string  `json:"position"` // "x,y,z" local meters
	ChargeRate float64 `json:"chargeRate"`
}

// NodeSpec describes one UAV and its mission.
type NodeSpec struct {
	Name            string  `json:"name"`
	Position        string  `json:"position"`
	BatteryCapacity float64 `json:"batteryCapacity"`
	BatteryCharge   float64 `json:"batteryCharge,omitempty"` // defaults to capacity
	ConsumptionMean float64 `json:"consumptionMean"`
	ConsumptionStd  float64 `json:"consumptionStd"`

	Commands []CommandSpec `json:"commands"`
}

// CommandSpec describes one command in a node's sequence. Which fields are
// meaningful depends on the type.
type CommandSpec struct {
	Type     string  `json:"type"` // waypoint|takeoff|hold|charge|exchange|idle
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Z        float64 `json:"z,omitempty"`
	Seconds  float64 `json:"seconds,omitempty"`
	Station  string  `json:"station,omitempty"`
	Partner  string  `json:"partner,omitempty"`
	Recharge bool    `json:"recharge,omitempty"`
}

// World is a fully built simulation setup. Origin is nil when the scenario
// declares no geographic anchor.
type World struct {
	Name     string
	Origin   *geo.Origin
	Agents   []*Agent
	Stations []*uav.ChargingStation
}

// LoadScenarioSpec reads and parses a scenario file.
func LoadScenarioSpec(path string) (*ScenarioSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}
	var spec ScenarioSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing scenario file: %w", err)
	}
	return &spec, nil
}

// Build turns a spec into agents and stations. The consumption samplers are
// seeded per node so runs are reproducible.
func (spec *ScenarioSpec) Build(seed int64, log *slog.Logger) (*World, error) {
	w := &World{Name: spec.Name}

	if spec.Origin != "" {
		anchor, err := geo.Position3DFromString(spec.Origin)
		if err != nil {
			return nil, fmt.Errorf("scenario origin: %w", err)
		}
		origin := geo.NewOrigin(anchor.X, anchor.Y)
		w.Origin = &origin
	}

	stationsByName := make(map[string]*uav.ChargingStation, len(spec.Stations))
	for _, ss := range spec.Stations {
		pos, err := geo.Position3DFromString(ss.Position)
		if err != nil {
			return nil, fmt.Errorf("station %s position: %w", ss.Name, err)
		}
		s := uav.NewChargingStation(ss.Name, pos, ss.ChargeRate)
		stationsByName[ss.Name] = s
		w.Stations = append(w.Stations, s)
	}

	nodesByName := make(map[string]*uav.Node, len(spec.Nodes))
	for i, ns := range spec.Nodes {
		pos, err := geo.Position3DFromString(ns.Position)
		if err != nil {
			return nil, fmt.Errorf("node %s position: %w", ns.Name, err)
		}
		charge := ns.BatteryCharge
		if charge == 0 {
			charge = ns.BatteryCapacity
		}
		node := uav.NewNode(ns.Name, pos,
			uav.NewBatteryWithCharge(ns.BatteryCapacity, charge),
			uav.DefaultEnergyModel(),
			uav.NewLogNormalSampler(ns.ConsumptionMean, ns.ConsumptionStd, seed+int64(i)),
			log,
		)
		node.Stations = w.Stations
		nodesByName[ns.Name] = node
		w.Agents = append(w.Agents, NewAgent(node))
	}

	// Second pass so exchange partners can reference any node.
	for i, ns := range spec.Nodes {
		agent := w.Agents[i]
		engines, err := buildCommands(agent.Node, ns.Commands, stationsByName, nodesByName)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", ns.Name, err)
		}
		agent.Enqueue(engines...)
	}
	return w, nil
}

// buildCommands constructs the engine chain for one node. Engines are
// constructed up front, so each one's segment origin is threaded through
// the sequence: a command starts where the previous one ends.
func buildCommands(node *uav.Node, specs []CommandSpec, stations map[string]*uav.ChargingStation, nodes map[string]*uav.Node) ([]cee.CEE, error) {
	cursor := node.Position()
	engines := make([]cee.CEE, 0, len(specs))

	for i, cs := range specs {
		switch cs.Type {
		case "waypoint":
			target := core.Position3D{X: cs.X, Y: cs.Y, Z: cs.Z}
			c := cee.NewWaypoint(node, command.NewWaypoint(target.X, target.Y, target.Z))
			c.SetFromCoordinates(cursor)
			cursor = target
			engines = append(engines, c)

		case "takeoff":
			c := cee.NewTakeoff(node, command.NewTakeoff(cs.Z))
			c.SetFromCoordinates(cursor)
			cursor.Z = cs.Z
			c.SetToCoordinates(cursor)
			engines = append(engines, c)

		case "hold":
			c := cee.NewHoldPosition(node, command.NewHoldPosition(cs.Seconds))
			c.SetFromCoordinates(cursor)
			c.SetToCoordinates(cursor)
			engines = append(engines, c)

		case "charge":
			station, ok := stations[cs.Station]
			if !ok {
				return nil, fmt.Errorf("command %d: unknown station %q", i, cs.Station)
			}
			c := cee.NewCharge(node, command.NewCharge(station))
			c.SetFromCoordinates(cursor)
			c.SetToCoordinates(station.Position)
			engines = append(engines, c)

		case "exchange":
			// The partner may be absent; the engine logs and skips the
			// transfer in that case.
			partner := nodes[cs.Partner]
			c := cee.NewExchange(node, command.NewExchange(partner, cs.Recharge))
			c.SetFromCoordinates(cursor)
			c.SetToCoordinates(cursor)
			engines = append(engines, c)

		case "idle":
			c := cee.NewIdle(node, command.NewIdle())
			c.SetFromCoordinates(cursor)
			c.SetToCoordinates(cursor)
			engines = append(engines, c)

		default:
			return nil, fmt.Errorf("command %d: unknown type %q", i, cs.Type)
		}
	}
	return engines, nil
}
