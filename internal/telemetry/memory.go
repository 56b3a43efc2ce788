package telemetry

import (
	"log/slog"
	"sync"

	"github.com/uavops/uavsim/internal/config"
	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/pkg/core"
)

// NodeTrack groups one node's time-series samples.
type NodeTrack struct {
	NodeName string           `json:"nodeName"`
	States   []core.NodeState `json:"states"`
}

// Memory buffers a scenario in memory and exports it to a JSON file when
// the scenario ends.
type Memory struct {
	cfg config.MemoryConfig
	log *slog.Logger

	origin       *geo.Origin
	scenario     *core.Scenario
	tracks       map[string]*NodeTrack
	reservations []core.ReservationRequest

	lastExportPath string
	mu             sync.Mutex
}

// NewMemory creates a memory backend.
func NewMemory(cfg config.MemoryConfig, log *slog.Logger) *Memory {
	if log == nil {
		log = slog.Default()
	}
	return &Memory{
		cfg:    cfg,
		log:    log,
		tracks: make(map[string]*NodeTrack),
	}
}

func (m *Memory) Init() error { return nil }

// SetOrigin anchors exported tracks geographically; without it the export
// stays in the local frame.
func (m *Memory) SetOrigin(origin geo.Origin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origin = &origin
}

func (m *Memory) Close() error { return nil }

// StartScenario resets all collections and begins recording.
func (m *Memory) StartScenario(s *core.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scenario = s
	m.tracks = make(map[string]*NodeTrack)
	m.reservations = nil
	return nil
}

// EndScenario exports the buffered run to disk.
func (m *Memory) EndScenario() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scenario == nil {
		return nil
	}
	return m.exportJSON()
}

// RecordNodeState appends one sample to the node's track.
func (m *Memory) RecordNodeState(st core.NodeState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	track, ok := m.tracks[st.NodeName]
	if !ok {
		track = &NodeTrack{NodeName: st.NodeName}
		m.tracks[st.NodeName] = track
	}
	track.States = append(track.States, st)
	return nil
}

// RecordReservation appends one reservation announcement.
func (m *Memory) RecordReservation(r core.ReservationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reservations = append(m.reservations, r)
	return nil
}

// ExportedFilePath returns the path of the last export, empty before the
// first one.
func (m *Memory) ExportedFilePath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastExportPath
}

// SampleCount returns the number of recorded samples for a node.
func (m *Memory) SampleCount(nodeName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if track, ok := m.tracks[nodeName]; ok {
		return len(track.States)
	}
	return 0
}
