package telemetry

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/pkg/core"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestGormPersistsScenarioAndSamples(t *testing.T) {
	g := NewGormWithDB(testDB(t), nil)
	require.NoError(t, g.Init())
	defer g.Close()

	s := core.NewScenario("gorm run", 1, 60, 42)
	s.Params = map[string]any{"nodes": 2}
	require.NoError(t, g.StartScenario(s))

	require.NoError(t, g.RecordNodeState(sample("uav[0]", 0, 0)))
	require.NoError(t, g.RecordNodeState(sample("uav[0]", 1, 15)))
	require.NoError(t, g.RecordReservation(core.NewReservationRequest("uav[0]", 120, 55)))
	require.NoError(t, g.EndScenario())

	var scenarios []ScenarioRow
	require.NoError(t, g.db.Find(&scenarios).Error)
	require.Len(t, scenarios, 1)
	assert.Equal(t, "gorm run", scenarios[0].Name)
	assert.Equal(t, s.ID.String(), scenarios[0].SessionID)
	assert.JSONEq(t, `{"nodes":2}`, string(scenarios[0].Params))

	var states []NodeStateRow
	require.NoError(t, g.db.Find(&states).Error)
	require.Len(t, states, 2)
	assert.Equal(t, scenarios[0].ID, states[0].ScenarioID)
	assert.Equal(t, "Waypoint", states[0].CommandType)

	var reservations []ReservationRow
	require.NoError(t, g.db.Find(&reservations).Error)
	require.Len(t, reservations, 1)
	assert.Equal(t, 100.0, reservations[0].TargetPercentage)
}

func TestGormCloseFlushesPending(t *testing.T) {
	g := NewGormWithDB(testDB(t), nil)
	require.NoError(t, g.Init())
	require.NoError(t, g.StartScenario(core.NewScenario("close run", 1, 60, 42)))

	require.NoError(t, g.RecordNodeState(sample("uav[0]", 0, 0)))
	require.NoError(t, g.Close())

	var count int64
	require.NoError(t, g.db.Model(&NodeStateRow{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGormRecordsGeoColumns(t *testing.T) {
	g := NewGormWithDB(testDB(t), nil)
	require.NoError(t, g.Init())
	g.SetOrigin(geo.NewOrigin(13.4, 52.5))
	require.NoError(t, g.StartScenario(core.NewScenario("geo run", 1, 60, 42)))

	// A sample at the local frame's zero sits exactly on the anchor.
	require.NoError(t, g.RecordNodeState(sample("uav[0]", 0, 0)))
	require.NoError(t, g.Close())

	var states []NodeStateRow
	require.NoError(t, g.db.Find(&states).Error)
	require.Len(t, states, 1)
	assert.InDelta(t, 13.4, states[0].Longitude, 1e-6)
	assert.InDelta(t, 52.5, states[0].Latitude, 1e-6)
}
