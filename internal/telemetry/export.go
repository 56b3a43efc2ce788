package telemetry

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/uavops/uavsim/internal/geo"
	"github.com/uavops/uavsim/pkg/core"
)

// runExport is the root JSON structure written by the memory backend.
type runExport struct {
	Scenario     *core.Scenario            `json:"scenario"`
	Origin       *originRef                `json:"origin,omitempty"`
	Tracks       []nodeTrackExport         `json:"tracks"`
	Reservations []core.ReservationRequest `json:"reservations"`
}

// originRef is the world anchor echoed into the export.
type originRef struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// nodeTrackExport is one node's track plus its geographic rendering, which
// is present only when an origin was set.
type nodeTrackExport struct {
	NodeTrack
	TrackWKT   string `json:"trackWKT,omitempty"`
	LastFixWKT string `json:"lastFixWKT,omitempty"`
}

// exportJSON writes the buffered run to <outputDir>/<scenario>_<timestamp>.json,
// gzipped when configured. Caller holds the mutex.
func (m *Memory) exportJSON() error {
	export := runExport{
		Scenario:     m.scenario,
		Tracks:       make([]nodeTrackExport, 0, len(m.tracks)),
		Reservations: m.reservations,
	}
	if m.origin != nil {
		export.Origin = &originRef{Longitude: m.origin.Longitude, Latitude: m.origin.Latitude}
	}
	for _, track := range m.tracks {
		export.Tracks = append(export.Tracks, m.exportTrack(track))
	}
	// Map iteration order is not stable; exports should be diffable.
	sort.Slice(export.Tracks, func(i, j int) bool {
		return export.Tracks[i].NodeName < export.Tracks[j].NodeName
	})

	name := strings.ReplaceAll(m.scenario.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := m.scenario.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	if m.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(m.cfg.OutputDir, filename)

	if err := os.MkdirAll(m.cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if m.cfg.CompressOutput {
		if err := writeGzipJSON(outputPath, export); err != nil {
			return err
		}
	} else {
		if err := writeJSON(outputPath, export); err != nil {
			return err
		}
	}

	m.lastExportPath = outputPath
	m.log.Info("telemetry exported", "path", outputPath, "tracks", len(export.Tracks))
	return nil
}

// exportTrack renders one track for export. With an origin set, the flight
// path becomes a WebMercator WKT LINESTRING and the last sample a POINT, so
// the file can be dropped onto a map without post-processing.
func (m *Memory) exportTrack(track *NodeTrack) nodeTrackExport {
	te := nodeTrackExport{NodeTrack: *track}
	if m.origin == nil || len(track.States) == 0 {
		return te
	}

	last := track.States[len(track.States)-1]
	te.LastFixWKT = m.origin.Point3857(last.Position).AsText()

	if wkt, err := geo.TrackWKT(*m.origin, track.States); err == nil {
		te.TrackWKT = wkt
	} else {
		// Single-sample tracks have no line to render.
		m.log.Debug("track not rendered", "node", track.NodeName, "error", err)
	}
	return te
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

func writeGzipJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(v); err != nil {
		gz.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gz.Close()
}
