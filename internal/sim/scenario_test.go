package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavops/uavsim/internal/cee"
	"github.com/uavops/uavsim/pkg/core"
)

const scenarioJSON = `{
  "name": "survey",
  "origin": "13.4,52.5",
  "stations": [
    {"name": "cs[0]", "position": "500,500,0", "chargeRate": 120}
  ],
  "nodes": [
    {
      "name": "uav[0]",
      "position": "0,0,0",
      "batteryCapacity": 5000,
      "consumptionMean": 0.5,
      "consumptionStd": 0.1,
      "commands": [
        {"type": "takeoff", "z": 30},
        {"type": "waypoint", "x": 200, "y": 0, "z": 30},
        {"type": "hold", "seconds": 60},
        {"type": "exchange", "partner": "uav[1]", "recharge": true}
      ]
    },
    {
      "name": "uav[1]",
      "position": "10,0,0",
      "batteryCapacity": 5000,
      "batteryCharge": 2500,
      "consumptionMean": 0.5,
      "consumptionStd": 0.1,
      "commands": [
        {"type": "idle"}
      ]
    }
  ]
}`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndBuildScenario(t *testing.T) {
	spec, err := LoadScenarioSpec(writeScenario(t, scenarioJSON))
	require.NoError(t, err)
	assert.Equal(t, "survey", spec.Name)

	world, err := spec.Build(42, nil)
	require.NoError(t, err)

	require.NotNil(t, world.Origin)
	assert.InDelta(t, 13.4, world.Origin.Longitude, 1e-9)
	assert.InDelta(t, 52.5, world.Origin.Latitude, 1e-9)

	require.Len(t, world.Stations, 1)
	assert.Equal(t, core.Position3D{X: 500, Y: 500}, world.Stations[0].Position)

	require.Len(t, world.Agents, 2)
	a0 := world.Agents[0]
	assert.Equal(t, "uav[0]", a0.Node.Name)
	assert.Equal(t, 4, a0.Queue.Len())
	assert.Len(t, a0.Node.Stations, 1)

	// Partial charge is honored, full charge is the default.
	assert.Equal(t, 5000.0, world.Agents[0].Node.Battery.Remaining())
	assert.Equal(t, 2500.0, world.Agents[1].Node.Battery.Remaining())
}

func TestBuildThreadsSegmentOrigins(t *testing.T) {
	spec, err := LoadScenarioSpec(writeScenario(t, scenarioJSON))
	require.NoError(t, err)
	world, err := spec.Build(42, nil)
	require.NoError(t, err)

	queue := world.Agents[0].Queue

	takeoff := queue.Pop().(*cee.Takeoff)
	assert.Equal(t, core.Position3D{}, takeoff.From())
	assert.Equal(t, core.Position3D{Z: 30}, takeoff.To())

	// The waypoint starts where the takeoff ends, not at the node's
	// position on the ground.
	wp := queue.Pop().(*cee.Waypoint)
	assert.Equal(t, core.Position3D{Z: 30}, wp.From())
	assert.Equal(t, core.Position3D{X: 200, Z: 30}, wp.To())

	hold := queue.Pop().(*cee.HoldPosition)
	assert.Equal(t, core.Position3D{X: 200, Z: 30}, hold.From())
	assert.Equal(t, hold.From(), hold.To())
}

func TestBuildRejectsUnknownReferences(t *testing.T) {
	spec := &ScenarioSpec{
		Nodes: []NodeSpec{{
			Name:            "uav[0]",
			Position:        "0,0",
			BatteryCapacity: 1000,
			ConsumptionMean: 0.5,
			ConsumptionStd:  0.1,
			Commands:        []CommandSpec{{Type: "charge", Station: "nowhere"}},
		}},
	}
	_, err := spec.Build(1, nil)
	assert.ErrorContains(t, err, "unknown station")

	spec.Nodes[0].Commands = []CommandSpec{{Type: "teleport"}}
	_, err = spec.Build(1, nil)
	assert.ErrorContains(t, err, "unknown type")
}
