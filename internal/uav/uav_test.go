package uav

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavops/uavsim/pkg/core"
)

func TestBatteryClamping(t *testing.T) {
	b := NewBatteryWithCharge(1000, 100)

	b.Discharge(150)
	assert.Zero(t, b.Remaining())
	assert.True(t, b.IsEmpty())

	b.Charge(2000)
	assert.Equal(t, 1000.0, b.Remaining())
	assert.True(t, b.IsFull())
	assert.Equal(t, 100.0, b.RemainingPercentage())
}

func TestEnergyModelSpeedBlending(t *testing.T) {
	m := DefaultEnergyModel()

	assert.Equal(t, m.CruiseSpeed, m.Speed(0, MethodDefault))
	assert.Equal(t, m.ClimbSpeed, m.Speed(90, MethodDefault))
	assert.Equal(t, m.ClimbSpeed, m.Speed(-90, MethodDefault))

	mid := m.Speed(45, MethodDefault)
	assert.Greater(t, mid, m.ClimbSpeed)
	assert.Less(t, mid, m.CruiseSpeed)

	// The pessimistic estimate is always slower.
	assert.Less(t, m.Speed(45, MethodPessimistic), mid)
}

func TestEnergyModelConsumption(t *testing.T) {
	m := DefaultEnergyModel()

	hover := m.HoverConsumption(10, MethodDefault)
	assert.InDelta(t, m.HoverRate*10, hover, 1e-9)
	assert.Greater(t, m.HoverConsumption(10, MethodPessimistic), hover)

	climb := m.MovementConsumption(90, 10, MethodDefault)
	descend := m.MovementConsumption(-90, 10, MethodDefault)
	assert.Greater(t, climb, descend, "climbing costs more than descending")
}

func TestLogNormalSamplerIsPositiveAndCentered(t *testing.T) {
	s := NewLogNormalSampler(0.5, 0.1, 42)

	sum := 0.0
	const n = 10000
	for i := 0; i < n; i++ {
		v := s.Sample()
		require.Greater(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 0.5, sum/n, 0.01)
}

func TestLogNormalQuantileMatchesSamples(t *testing.T) {
	d := NewLogNormalFromMeanStd(0.5, 0.1)
	rng := rand.New(rand.NewSource(7))

	q90 := d.Quantile(0.9)
	below := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if d.Sample(rng) < q90 {
			below++
		}
	}
	assert.InDelta(t, 0.9, float64(below)/n, 0.02)
}

func TestFindNearestChargingStation(t *testing.T) {
	n := NewNode("uav[0]", core.Position3D{}, NewBattery(1000), DefaultEnergyModel(), FixedSampler(0.5), nil)
	assert.Nil(t, n.FindNearestChargingStation(0, 0, 0))

	near := NewChargingStation("cs[near]", core.Position3D{X: 10}, 100)
	far := NewChargingStation("cs[far]", core.Position3D{X: 1000}, 100)
	n.Stations = []*ChargingStation{far, near}

	assert.Same(t, near, n.FindNearestChargingStation(0, 0, 0))
	assert.Same(t, far, n.FindNearestChargingStation(900, 0, 0))
}

func TestStationReservationChannelIsBounded(t *testing.T) {
	s := NewChargingStation("cs[0]", core.Position3D{}, 100)
	sender := s.ReservationChannel()

	accepted := 0
	for i := 0; i < 100; i++ {
		if sender.TrySend(core.NewReservationRequest("uav[0]", float64(i), 1)) {
			accepted++
		}
	}
	assert.Equal(t, reservationBuffer, accepted, "overflow must be dropped, not block")
	assert.Equal(t, reservationBuffer, s.PendingReservations())
}

func TestTransferMissionDataCounts(t *testing.T) {
	a := NewNode("uav[0]", core.Position3D{}, NewBattery(1000), DefaultEnergyModel(), FixedSampler(0.5), nil)
	b := NewNode("uav[1]", core.Position3D{}, NewBattery(1000), DefaultEnergyModel(), FixedSampler(0.5), nil)

	a.TransferMissionDataTo(b)
	a.TransferMissionDataTo(b)

	assert.Equal(t, 2, a.MissionDataSent())
	assert.Equal(t, 2, b.MissionDataReceived())
	assert.Zero(t, a.MissionDataReceived())
}

func TestSampleConsumptionRateWithoutSampler(t *testing.T) {
	n := NewNode("uav[0]", core.Position3D{}, NewBattery(1000), DefaultEnergyModel(), nil, nil)
	assert.Zero(t, n.SampleConsumptionRate())

	n.Sampler = FixedSampler(0.75)
	assert.Equal(t, 0.75, n.SampleConsumptionRate())
}

func TestSpeedForNeverNegative(t *testing.T) {
	n := NewNode("uav[0]", core.Position3D{}, NewBattery(1000), DefaultEnergyModel(), nil, nil)
	for angle := -90.0; angle <= 90; angle += 15 {
		assert.Greater(t, n.SpeedFor(angle, MethodDefault), 0.0, "angle %g", angle)
		assert.False(t, math.IsNaN(n.SpeedFor(angle, MethodPessimistic)))
	}
}
