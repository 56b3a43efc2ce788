// Package telemetry persists simulation runs: scenario metadata, per-node
// state samples and the reservation traffic. Backends are selected by
// configuration; the memory backend exports a JSON file at scenario end,
// the gorm backends write rows as they arrive.
package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/uavops/uavsim/internal/config"
	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/pkg/core"
)

// Backend is the interface all telemetry implementations satisfy.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Scenario management
	StartScenario(s *core.Scenario) error
	EndScenario() error

	// Recording
	RecordNodeState(st core.NodeState) error
	RecordReservation(r core.ReservationRequest) error
}

// Exportable is an optional interface for backends that produce an output
// file at scenario end.
type Exportable interface {
	ExportedFilePath() string
}

// GeoAware is an optional interface for backends that annotate records with
// geographic coordinates once the world anchor is known.
type GeoAware interface {
	SetOrigin(origin geo.Origin)
}

// New creates a telemetry backend based on configuration.
func New(cfg config.StorageConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case "memory":
		return NewMemory(cfg.Memory, log), nil
	case "sqlite":
		return NewSQLite(cfg.SQLite, log)
	case "postgres":
		return NewPostgres(cfg.Postgres, log)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
