package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/uavops/uavsim/internal/config"
	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/internal/queue"
	"github.com/uavops/uavsim/pkg/core"
)

// flushInterval bounds how long a sample may sit in the write queue.
const flushInterval = 500 * time.Millisecond

// batchSize is the row count per bulk insert.
const batchSize = 500

// Gorm writes telemetry through GORM. Samples are queued and flushed to the
// database in batches by a background writer, so recording never blocks the
// stepping loop on I/O.
type Gorm struct {
	db  *gorm.DB
	log *slog.Logger

	origin     *geo.Origin
	scenarioID uint

	states       *queue.Deque[NodeStateRow]
	reservations *queue.Deque[ReservationRow]

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewSQLite creates a gorm backend on an SQLite file database.
func NewSQLite(cfg config.SQLiteConfig, log *slog.Logger) (*Gorm, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	return newGorm(db, log), nil
}

// NewPostgres creates a gorm backend on a Postgres database.
func NewPostgres(cfg config.PostgresConfig, log *slog.Logger) (*Gorm, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}
	return newGorm(db, log), nil
}

// NewGormWithDB wraps an existing connection; tests use this with an
// in-memory SQLite database.
func NewGormWithDB(db *gorm.DB, log *slog.Logger) *Gorm {
	return newGorm(db, log)
}

func newGorm(db *gorm.DB, log *slog.Logger) *Gorm {
	if log == nil {
		log = slog.Default()
	}
	return &Gorm{
		db:           db,
		log:          log,
		states:       queue.New[NodeStateRow](),
		reservations: queue.New[ReservationRow](),
	}
}

// Init migrates the schema and starts the background writer.
func (g *Gorm) Init() error {
	if err := g.db.AutoMigrate(&ScenarioRow{}, &NodeStateRow{}, &ReservationRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	g.stopChan = make(chan struct{})
	g.doneChan = make(chan struct{})
	go g.writer()
	return nil
}

// Close flushes pending rows and stops the writer.
func (g *Gorm) Close() error {
	if g.stopChan != nil {
		close(g.stopChan)
		<-g.doneChan
		g.stopChan = nil
	}
	return nil
}

// StartScenario inserts the scenario row and keys subsequent samples to it.
func (g *Gorm) StartScenario(s *core.Scenario) error {
	params, err := json.Marshal(s.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario params: %w", err)
	}
	row := ScenarioRow{
		SessionID: s.ID.String(),
		Name:      s.Name,
		StartTime: s.StartTime,
		StepSize:  s.StepSize,
		Duration:  s.Duration,
		Seed:      s.Seed,
		Params:    params,
	}
	if err := g.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert scenario: %w", err)
	}
	g.scenarioID = row.ID
	return nil
}

// EndScenario flushes everything still queued.
func (g *Gorm) EndScenario() error {
	return g.flush()
}

// SetOrigin anchors subsequent samples geographically; without it the
// longitude/latitude columns stay zero. Set before the run starts.
func (g *Gorm) SetOrigin(origin geo.Origin) {
	g.origin = &origin
}

// RecordNodeState queues one sample for the background writer.
func (g *Gorm) RecordNodeState(st core.NodeState) error {
	row := NodeStateRow{
		ScenarioID:        g.scenarioID,
		NodeName:          st.NodeName,
		SimTime:           st.SimTime,
		X:                 st.Position.X,
		Y:                 st.Position.Y,
		Z:                 st.Position.Z,
		Yaw:               st.Yaw,
		Pitch:             st.Pitch,
		ClimbAngle:        st.ClimbAngle,
		Speed:             st.Speed,
		BatteryRemaining:  st.BatteryRemaining,
		BatteryPercentage: st.BatteryPercentage,
		CommandType:       st.CommandType,
		MissionID:         st.MissionID,
	}
	if g.origin != nil {
		row.Longitude, row.Latitude = g.origin.ToWGS84(st.Position)
	}
	g.states.Push(row)
	return nil
}

// RecordReservation queues one reservation announcement.
func (g *Gorm) RecordReservation(r core.ReservationRequest) error {
	g.reservations.Push(ReservationRow{
		ScenarioID:             g.scenarioID,
		RequestID:              r.ID.String(),
		NodeName:               r.NodeName,
		EstimatedArrival:       r.EstimatedArrival,
		ConsumptionTillArrival: r.ConsumptionTillArrival,
		TargetPercentage:       r.TargetPercentage,
	})
	return nil
}

// writer drains the queues on a fixed interval until stopped.
func (g *Gorm) writer() {
	defer close(g.doneChan)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := g.flush(); err != nil {
				g.log.Error("telemetry flush failed", "error", err)
			}
		case <-g.stopChan:
			if err := g.flush(); err != nil {
				g.log.Error("final telemetry flush failed", "error", err)
			}
			return
		}
	}
}

// flush bulk-inserts everything queued so far.
func (g *Gorm) flush() error {
	if states := g.states.GetAndEmpty(); len(states) > 0 {
		if err := g.db.CreateInBatches(states, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert node states: %w", err)
		}
	}
	if reservations := g.reservations.GetAndEmpty(); len(reservations) > 0 {
		if err := g.db.CreateInBatches(reservations, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert reservations: %w", err)
		}
	}
	return nil
}
