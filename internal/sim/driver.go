// Package sim drives command execution over simulated time. The driver
// owns the per-agent command queues, runs every engine through its
// lifecycle, lets charging stations refill docked agents and feeds
// telemetry to the configured sinks. Execution is single-threaded and
// cooperatively stepped: time only advances when the driver says so.
package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/uavops/uavsim/internal/cee"
	"github.com/uavops/uavsim/internal/config"
	"github.com/uavops/uavsim/internal/influx"
	"github.com/uavops/uavsim/internal/telemetry"
	"github.com/uavops/uavsim/internal/uav"
	"github.com/uavops/uavsim/pkg/core"
)

// defaultExchangeDuration is how long a data handover takes before the
// driver ends it, in simulated seconds. Exchange engines cannot end
// themselves.
const defaultExchangeDuration = 30.0

// dockingRadius is the maximum distance in meters at which a station can
// feed a charging agent.
const dockingRadius = 1.0

// Dependencies holds the collaborators of a Driver. Telemetry and Influx
// are optional.
type Dependencies struct {
	Config    config.SimConfig
	Scenario  *core.Scenario
	Logger    *slog.Logger
	Telemetry telemetry.Backend
	Influx    *influx.Manager
}

// Driver steps a set of agents through their command queues.
type Driver struct {
	cfg      config.SimConfig
	scenario *core.Scenario
	log      *slog.Logger
	backend  telemetry.Backend
	flux     *influx.Manager

	agents   []*Agent
	stations []*uav.ChargingStation

	exchangeDuration float64

	now        float64
	nextSample float64
	metrics    Metrics

	stepsCounter     metric.Int64Counter
	completedCounter metric.Int64Counter
}

// New creates a driver. Returns an error when the step size is not
// positive or the metric instruments cannot be created.
func New(deps Dependencies) (*Driver, error) {
	if deps.Config.StepSize <= 0 {
		return nil, fmt.Errorf("step size must be positive, got %g", deps.Config.StepSize)
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	d := &Driver{
		cfg:              deps.Config,
		scenario:         deps.Scenario,
		log:              log,
		backend:          deps.Telemetry,
		flux:             deps.Influx,
		exchangeDuration: defaultExchangeDuration,
	}

	// Instruments come from the global OTel provider; without a configured
	// provider they are no-ops.
	m := meter()
	var err error
	d.stepsCounter, err = m.Int64Counter(
		"sim.steps",
		metric.WithDescription("Simulation steps executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}
	d.completedCounter, err = m.Int64Counter(
		"sim.commands.completed",
		metric.WithDescription("Commands completed, by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating completed counter: %w", err)
	}
	return d, nil
}

// AddAgent registers an agent before the run.
func (d *Driver) AddAgent(a *Agent) {
	d.agents = append(d.agents, a)
}

// AddStation registers a charging station before the run.
func (d *Driver) AddStation(s *uav.ChargingStation) {
	d.stations = append(d.stations, s)
}

// SetExchangeDuration overrides how long data handovers take.
func (d *Driver) SetExchangeDuration(seconds float64) {
	d.exchangeDuration = seconds
}

// Now returns the current simulated time in seconds.
func (d *Driver) Now() float64 {
	return d.now
}

// Metrics returns the counters accumulated so far.
func (d *Driver) Metrics() Metrics {
	return d.metrics
}

// Run steps the simulation until the configured duration is reached, the
// context is cancelled, or an engine reports a fatal error.
func (d *Driver) Run(ctx context.Context) (Metrics, error) {
	d.log.Info("simulation starting",
		"agents", len(d.agents),
		"stations", len(d.stations),
		"duration", d.cfg.Duration,
		"stepSize", d.cfg.StepSize,
	)

	for d.now < d.cfg.Duration {
		select {
		case <-ctx.Done():
			return d.metrics, ctx.Err()
		default:
		}

		for _, a := range d.agents {
			if a.failed {
				continue
			}
			if err := d.stepAgent(ctx, a); err != nil {
				return d.metrics, err
			}
		}
		d.chargeDockedAgents()
		d.drainReservations(ctx)

		d.now += d.cfg.StepSize
		d.metrics.Steps++
		d.metrics.SimTime = d.now
		d.stepsCounter.Add(ctx, 1)

		if d.cfg.SampleEvery > 0 && d.now >= d.nextSample {
			d.sample(ctx)
			d.nextSample += d.cfg.SampleEvery
		}
	}

	d.log.Info("simulation finished",
		"simTime", d.metrics.SimTime,
		"commandsCompleted", d.metrics.CommandsCompleted,
		"detoursTriggered", d.metrics.DetoursTriggered,
	)
	return d.metrics, nil
}

// stepAgent advances one agent by one step: select the next engine if
// none is running, update, poll completion, run exit actions and prepend
// any detour chain.
func (d *Driver) stepAgent(ctx context.Context, a *Agent) error {
	if a.current == nil {
		if a.Queue.Empty() {
			return nil
		}
		c := a.Queue.Pop()
		if err := c.Init(d.now); err != nil {
			return fmt.Errorf("%s: initializing %s: %w", a.Node.Name, c.Type(), err)
		}
		if err := c.EntryActions(); err != nil {
			return fmt.Errorf("%s: entry actions of %s: %w", a.Node.Name, c.Type(), err)
		}
		c.Activate(d.now)
		a.current = c
		d.log.Debug("command activated",
			"node", a.Node.Name,
			"type", c.Type().String(),
			"simTime", d.now,
		)
	}
	c := a.current

	// Clamp the step so timed commands are hit exactly at their deadline;
	// variants without a defined remaining time run the full step.
	step := d.cfg.StepSize
	if remaining, err := c.RemainingTime(d.now); err == nil && remaining < step {
		step = remaining
	}

	before := a.Node.Position()
	if step > 0 {
		c.Update(step)
	}
	d.metrics.DistanceFlown += before.DistanceTo(a.Node.Position())
	pollTime := d.now + step

	if a.Node.Battery.IsEmpty() && c.Type() != cee.TypeCharge {
		d.log.Error("battery exhausted, agent lost",
			"node", a.Node.Name,
			"type", c.Type().String(),
			"simTime", pollTime,
		)
		a.fail()
		d.metrics.CommandsFailed++
		d.metrics.AgentsFailed++
		return nil
	}

	// Handovers cannot end themselves; the driver decides when they are over.
	if c.Type() == cee.TypeExchange && pollTime-c.(*cee.Exchange).StartTime() >= d.exchangeDuration {
		c.Override()
	}

	done, err := c.Completed(pollTime)
	if err != nil {
		return fmt.Errorf("%s: completion of %s: %w", a.Node.Name, c.Type(), err)
	}
	if !done {
		return nil
	}

	chain, err := c.ExitActions(pollTime)
	if err != nil {
		return fmt.Errorf("%s: exit actions of %s: %w", a.Node.Name, c.Type(), err)
	}
	if len(chain) > 0 {
		a.Queue.PushFront(chain...)
		d.metrics.DetoursTriggered++
		d.log.Info("detour chain prepended",
			"node", a.Node.Name,
			"length", len(chain),
			"simTime", pollTime,
		)
	}

	if c.PartOfMission() {
		d.metrics.CommandsCompleted++
	} else {
		d.metrics.DetourCommandsDone++
	}
	d.completedCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", c.Type().String()),
		attribute.Bool("mission", c.PartOfMission()),
	))
	d.log.Debug("command completed",
		"node", a.Node.Name,
		"type", c.Type().String(),
		"simTime", pollTime,
	)
	a.current = nil
	return nil
}

// chargeDockedAgents lets every station refill the agents charging within
// docking range.
func (d *Driver) chargeDockedAgents() {
	for _, a := range d.agents {
		charge, ok := a.current.(*cee.Charge)
		if !ok {
			continue
		}
		station := charge.Station()
		if station == nil {
			continue
		}
		if a.Node.Position().DistanceTo(station.Position) > dockingRadius {
			continue
		}
		a.Node.Battery.Charge(station.ChargeRate * d.cfg.StepSize)
	}
}

// drainReservations empties every station's reservation channel. Admission
// scheduling is out of scope; the announcements are counted, logged and
// recorded.
func (d *Driver) drainReservations(ctx context.Context) {
	for _, s := range d.stations {
	drain:
		for {
			select {
			case r := <-s.ReservationChannel().Receive():
				d.metrics.ReservationsSeen++
				d.log.Info("reservation received",
					"station", s.Name,
					"node", r.NodeName,
					"estimatedArrival", r.EstimatedArrival,
				)
				if d.backend != nil {
					if err := d.backend.RecordReservation(r); err != nil {
						d.log.Error("recording reservation failed", "error", err)
					}
				}
				if d.flux != nil {
					if err := d.flux.WriteReservation(ctx, d.scenarioName(), r); err != nil {
						d.log.Error("writing reservation to influx failed", "error", err)
					}
				}
			default:
				break drain
			}
		}
	}
}

// sample snapshots every agent into the telemetry sinks.
func (d *Driver) sample(ctx context.Context) {
	for _, a := range d.agents {
		st := d.snapshot(a)
		if d.backend != nil {
			if err := d.backend.RecordNodeState(st); err != nil {
				d.log.Error("recording node state failed", "error", err)
			}
		}
		if d.flux != nil {
			if err := d.flux.WriteNodeState(ctx, d.scenarioName(), st); err != nil {
				d.log.Error("writing node state to influx failed", "error", err)
			}
		}
	}
}

func (d *Driver) snapshot(a *Agent) core.NodeState {
	st := core.NodeState{
		NodeName:          a.Node.Name,
		SimTime:           d.now,
		Position:          a.Node.Position(),
		Yaw:               a.Node.Yaw,
		Pitch:             a.Node.Pitch,
		ClimbAngle:        a.Node.ClimbAngle,
		Speed:             a.Node.Speed,
		BatteryRemaining:  a.Node.Battery.Remaining(),
		BatteryPercentage: a.Node.Battery.RemainingPercentage(),
	}
	if a.current != nil {
		st.CommandType = a.current.Type().String()
	}
	if a.Node.MissionID != uuid.Nil {
		st.MissionID = a.Node.MissionID.String()
	}
	return st
}

func (d *Driver) scenarioName() string {
	if d.scenario == nil {
		return ""
	}
	return d.scenario.Name
}
