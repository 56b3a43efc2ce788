package cee

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uavops/uavsim/internal/command"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

func testNode(t *testing.T) *uav.Node {
	t.Helper()
	return uav.NewNode("uav[0]",
		core.Position3D{},
		uav.NewBattery(5000),
		uav.DefaultEnergyModel(),
		uav.FixedSampler(0.5),
		nil,
	)
}

func stepUntilDone(t *testing.T, c CEE, step, limit float64) float64 {
	t.Helper()
	now := 0.0
	for now < limit {
		done, err := c.Completed(now)
		require.NoError(t, err)
		if done {
			return now
		}
		remaining, err := c.RemainingTime(now)
		require.NoError(t, err)
		if remaining < step {
			step = remaining
		}
		c.Update(step)
		now += step
	}
	t.Fatalf("command not completed within %g simulated seconds", limit)
	return now
}

func TestWaypointInitDerivesKinematics(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(100, 100, 100*math.Sqrt2))

	require.NoError(t, w.Init(0))

	// Diagonal in the xy-plane, climbing at 45 degrees.
	assert.InDelta(t, 45.0, w.Yaw(), 1e-9)
	assert.InDelta(t, 45.0, w.ClimbAngle(), 1e-9)
	assert.InDelta(t, -w.ClimbAngle(), w.Pitch(), 1e-9)
	assert.Greater(t, w.Speed(), 0.0)
	assert.InDelta(t, 0.5, w.ConsumptionPerSecond(), 1e-12)

	// Init must not touch the node.
	assert.Zero(t, n.Yaw)
	assert.Zero(t, n.Speed)
}

func TestWaypointYawNormalization(t *testing.T) {
	cases := []struct {
		dx, dy float64
		yaw    float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, 270},
		{1, -1, 315},
	}
	for _, tc := range cases {
		n := testNode(t)
		w := NewWaypoint(n, command.NewWaypoint(tc.dx, tc.dy, 0))
		require.NoError(t, w.Init(0))
		assert.InDelta(t, tc.yaw, w.Yaw(), 1e-9, "dx=%g dy=%g", tc.dx, tc.dy)
		assert.GreaterOrEqual(t, w.Yaw(), 0.0)
		assert.Less(t, w.Yaw(), 360.0)
	}
}

func TestWaypointInitSnapsSubEpsilonDeltas(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(1e-12, 100, 1e-12))
	require.NoError(t, w.Init(0))

	// Float dust on X and Z must not tilt the derived angles.
	assert.InDelta(t, 90.0, w.Yaw(), 1e-12)
	assert.Zero(t, w.ClimbAngle())
	assert.Zero(t, w.Pitch())
}

func TestWaypointActivateWritesPoseOnce(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(50, 0, 0))
	require.NoError(t, w.Init(0))
	require.False(t, w.Active())

	w.Activate(10)

	assert.True(t, w.Active())
	assert.Equal(t, w.Yaw(), n.Yaw)
	assert.Equal(t, w.Pitch(), n.Pitch)
	assert.Equal(t, w.ClimbAngle(), n.ClimbAngle)
	assert.Equal(t, w.Speed(), n.Speed)
	assert.Equal(t, 10.0, w.StartTime())
}

func TestWaypointRunsToCompletion(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(150, 0, 0))
	require.NoError(t, w.Init(0))
	w.Activate(0)

	before := n.Battery.Remaining()
	end := stepUntilDone(t, w, 1.0, 100)

	dur, err := w.OverallDuration()
	require.NoError(t, err)
	assert.InDelta(t, dur, end, 1e-9)
	assert.InDelta(t, 150.0, n.X, Epsilon)
	assert.InDelta(t, 0.5*end, before-n.Battery.Remaining(), 1e-9)

	// Monotonic after completion.
	done, err := w.Completed(end + 5)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestWaypointUpdateNeverOvershoots(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(1, 0, 0))
	require.NoError(t, w.Init(0))
	w.Activate(0)

	w.Update(60) // far more than needed

	assert.InDelta(t, 1.0, n.X, Epsilon)
	done, err := w.Completed(60)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestWaypointForecasts(t *testing.T) {
	n := testNode(t)
	w := NewWaypoint(n, command.NewWaypoint(300, 0, 0))
	require.NoError(t, w.Init(0))

	dur, err := w.OverallDuration()
	require.NoError(t, err)
	assert.InDelta(t, 300.0/15.0, dur, 1e-9)

	quant, err := w.OverallDurationQuantile()
	require.NoError(t, err)
	assert.Greater(t, quant, dur, "pessimistic duration must exceed the mean estimate")

	w.Activate(0)
	w.Update(5)
	rem, err := w.RemainingTime(5)
	require.NoError(t, err)
	assert.InDelta(t, dur-5, rem, 1e-9)

	total, err := w.ProbableConsumption(false, uav.MethodDefault)
	require.NoError(t, err)
	rate, err := w.ProbableConsumption(true, uav.MethodDefault)
	require.NoError(t, err)
	assert.InDelta(t, total/dur, rate, 1e-9)
	assert.Positive(t, rate)
	assert.Less(t, rate, 1000.0)
}

func TestWaypointMissingCommand(t *testing.T) {
	w := NewWaypoint(testNode(t), nil)
	assert.ErrorIs(t, w.Init(0), ErrMissingCommand)
}

func TestTakeoffClimbsAndDescends(t *testing.T) {
	n := testNode(t)
	n.Yaw = 123
	up := NewTakeoff(n, command.NewTakeoff(30))
	require.NoError(t, up.Init(0))
	assert.Equal(t, 90.0, up.ClimbAngle())
	assert.Zero(t, up.Pitch())
	assert.Equal(t, 123.0, up.Yaw(), "takeoff keeps the heading")

	up.Activate(0)
	stepUntilDone(t, up, 1.0, 100)
	assert.InDelta(t, 30.0, n.Z, Epsilon)

	down := NewTakeoff(n, command.NewTakeoff(10))
	require.NoError(t, down.Init(0))
	assert.Equal(t, -90.0, down.ClimbAngle())

	down.Activate(0)
	stepUntilDone(t, down, 1.0, 100)
	assert.InDelta(t, 10.0, n.Z, Epsilon)
	assert.Equal(t, 0.0, n.X)
	assert.Equal(t, 0.0, n.Y)
}

func TestHoldPositionDeadline(t *testing.T) {
	n := testNode(t)
	h := NewHoldPosition(n, command.NewHoldPosition(30))
	require.NoError(t, h.Init(100))
	h.Activate(100)

	done, err := h.Completed(115)
	require.NoError(t, err)
	assert.False(t, done)

	rem, err := h.RemainingTime(115)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, rem, 1e-9)

	done, err = h.Completed(130)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHoldPositionOverrunIsFatal(t *testing.T) {
	n := testNode(t)
	h := NewHoldPosition(n, command.NewHoldPosition(30))
	require.NoError(t, h.Init(0))
	h.Activate(0)

	_, err := h.Completed(30.5)
	assert.ErrorIs(t, err, ErrDeadlineExceeded)
}

func TestHoldPositionDischargesWithoutMoving(t *testing.T) {
	n := testNode(t)
	n.X, n.Y, n.Z = 5, 6, 7
	h := NewHoldPosition(n, command.NewHoldPosition(10))
	require.NoError(t, h.Init(0))
	h.Activate(0)

	before := n.Battery.Remaining()
	h.Update(10)

	assert.Equal(t, core.Position3D{X: 5, Y: 6, Z: 7}, n.Position())
	assert.InDelta(t, 5.0, before-n.Battery.Remaining(), 1e-9)

	total, err := h.ProbableConsumption(false, uav.MethodDefault)
	require.NoError(t, err)
	assert.InDelta(t, 9.3, total, 1e-9)
}

func TestChargeCompletesWhenFull(t *testing.T) {
	n := testNode(t)
	n.Battery = uav.NewBatteryWithCharge(5000, 2000)
	station := uav.NewChargingStation("cs[0]", core.Position3D{}, 100)
	c := NewCharge(n, command.NewCharge(station))
	require.NoError(t, c.Init(0))
	c.Activate(0)

	done, err := c.Completed(0)
	require.NoError(t, err)
	assert.False(t, done)

	n.Battery.Charge(3000)
	done, err = c.Completed(1)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestChargeConsumptionTotal(t *testing.T) {
	n := testNode(t)
	n.Battery = uav.NewBatteryWithCharge(5000, 2000)
	c := NewCharge(n, command.NewCharge(uav.NewChargingStation("cs[0]", core.Position3D{}, 100)))
	require.NoError(t, c.Init(0))

	_, err := c.ConsumptionTotal()
	assert.ErrorIs(t, err, ErrNotActive)

	c.Activate(0)
	n.Battery.Charge(750)

	total, err := c.ConsumptionTotal()
	require.NoError(t, err)
	assert.InDelta(t, -750.0, total, 1e-9)
}

func TestChargeForecastsUndefined(t *testing.T) {
	n := testNode(t)
	c := NewCharge(n, command.NewCharge(uav.NewChargingStation("cs[0]", core.Position3D{}, 100)))
	require.NoError(t, c.Init(0))

	_, err := c.OverallDuration()
	assert.ErrorIs(t, err, ErrUndefinedForecast)
	_, err = c.RemainingTime(0)
	assert.ErrorIs(t, err, ErrUndefinedForecast)
}

func TestChargeAndIdleForecastZeroConsumption(t *testing.T) {
	n := testNode(t)
	engines := []CEE{
		NewCharge(n, command.NewCharge(uav.NewChargingStation("cs[0]", core.Position3D{}, 100))),
		NewIdle(n, command.NewIdle()),
	}
	for _, e := range engines {
		require.NoError(t, e.Init(0))
		for _, normalized := range []bool{false, true} {
			got, err := e.ProbableConsumption(normalized, uav.MethodDefault)
			require.NoError(t, err, "%s normalized=%v", e.Type(), normalized)
			assert.Zero(t, got, "%s normalized=%v", e.Type(), normalized)
		}
	}
}

func TestIdleCompletesOnlyByOverride(t *testing.T) {
	n := testNode(t)
	i := NewIdle(n, command.NewIdle())
	require.NoError(t, i.Init(0))
	i.Activate(0)

	before := n.Battery.Remaining()
	for now := 1.0; now <= 1000; now += 1 {
		i.Update(1)
		done, err := i.Completed(now)
		require.NoError(t, err)
		require.False(t, done)
	}
	assert.Equal(t, before, n.Battery.Remaining(), "idling must not consume")

	i.Override()
	done, err := i.Completed(2000)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestOverrideShortCircuitsEveryVariant(t *testing.T) {
	n := testNode(t)
	engines := []CEE{
		NewWaypoint(n, command.NewWaypoint(1000, 0, 0)),
		NewTakeoff(n, command.NewTakeoff(500)),
		NewHoldPosition(n, command.NewHoldPosition(3600)),
		NewCharge(n, command.NewCharge(uav.NewChargingStation("cs[0]", core.Position3D{}, 1))),
		NewExchange(n, command.NewExchange(nil, false)),
		NewIdle(n, command.NewIdle()),
	}
	for _, e := range engines {
		require.NoError(t, e.Init(0))
		e.Override()
		done, err := e.Completed(0)
		require.NoError(t, err, "%s", e.Type())
		assert.True(t, done, "%s", e.Type())
	}
}

func TestExchangeEntryTransfersData(t *testing.T) {
	n := testNode(t)
	partner := uav.NewNode("uav[1]", core.Position3D{X: 10}, uav.NewBattery(5000),
		uav.DefaultEnergyModel(), uav.FixedSampler(0.5), nil)

	e := NewExchange(n, command.NewExchange(partner, true))
	require.NoError(t, e.Init(0))
	require.NoError(t, e.EntryActions())

	assert.Equal(t, 1, n.MissionDataSent())
	assert.Equal(t, 1, partner.MissionDataReceived())
}

func TestExchangeUnknownPartnerIsNonFatal(t *testing.T) {
	n := testNode(t)
	e := NewExchange(n, command.NewExchange(nil, true))
	require.NoError(t, e.Init(0))
	assert.NoError(t, e.EntryActions())
	assert.Zero(t, n.MissionDataSent())
}

func TestExchangeExitSynthesizesDetourChain(t *testing.T) {
	n := testNode(t)
	n.MissionID = uuid.New()
	near := uav.NewChargingStation("cs[near]", core.Position3D{X: 30, Y: 40}, 100)
	far := uav.NewChargingStation("cs[far]", core.Position3D{X: 300, Y: 400}, 100)
	n.Stations = []*uav.ChargingStation{far, near}

	e := NewExchange(n, command.NewExchange(nil, true))
	require.NoError(t, e.Init(0))
	e.Activate(0)
	e.Override()

	chain, err := e.ExitActions(500)
	require.NoError(t, err)
	require.Len(t, chain, 3)

	wp, ok := chain[0].(*Waypoint)
	require.True(t, ok, "detour chain must start with the flight to the station")
	assert.Equal(t, TypeCharge, chain[1].Type())
	assert.Equal(t, TypeIdle, chain[2].Type())

	for _, c := range chain {
		assert.False(t, c.PartOfMission(), "%s must be flagged as detour", c.Type())
		assert.False(t, c.ReplacementNeeded(), "%s must not trigger replacement", c.Type())
	}

	// The waypoint targets the nearest station and is pre-initialized for
	// its forecasts, but not yet activated.
	assert.Equal(t, near.Position, wp.To())
	assert.True(t, wp.Initialized())
	assert.False(t, wp.Active())

	// Exactly one reservation, arrival consistent with the flight forecast.
	require.Equal(t, 1, near.PendingReservations())
	assert.Zero(t, far.PendingReservations())
	req := <-near.ReservationChannel().Receive()
	dur, err := wp.OverallDuration()
	require.NoError(t, err)
	assert.Equal(t, "uav[0]", req.NodeName)
	assert.InDelta(t, 500+dur, req.EstimatedArrival, 1e-9)
	assert.Positive(t, req.ConsumptionTillArrival)
	assert.Equal(t, 100.0, req.TargetPercentage)

	// The detour supersedes the mission.
	assert.Equal(t, uuid.Nil, n.MissionID, "mission id must be cleared")
}

func TestExchangeWithoutRechargeHasNoExitChain(t *testing.T) {
	n := testNode(t)
	e := NewExchange(n, command.NewExchange(nil, false))
	require.NoError(t, e.Init(0))
	e.Activate(0)
	e.Override()

	chain, err := e.ExitActions(0)
	require.NoError(t, err)
	assert.Empty(t, chain)
}

func TestExchangeForecastSurface(t *testing.T) {
	n := testNode(t)
	e := NewExchange(n, command.NewExchange(nil, false))
	require.NoError(t, e.Init(0))

	_, err := e.OverallDuration()
	assert.ErrorIs(t, err, ErrUndefinedForecast)
	_, err = e.ProbableConsumption(false, uav.MethodDefault)
	assert.ErrorIs(t, err, ErrUndefinedForecast)

	rate, err := e.ProbableConsumption(true, uav.MethodDefault)
	require.NoError(t, err)
	assert.InDelta(t, 0.93, rate, 1e-9)
}

func TestConsumptionModelSanityBound(t *testing.T) {
	n := testNode(t)
	n.Sampler = uav.FixedSampler(1000)
	w := NewWaypoint(n, command.NewWaypoint(10, 0, 0))
	assert.ErrorIs(t, w.Init(0), ErrConsumptionModel)
}
