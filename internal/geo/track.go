package geo

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/uavops/uavsim/pkg/core"
)

// TrackLineString builds a WebMercator polyline from a recorded flight
// track. At least two samples are required for a valid line.
func TrackLineString(origin Origin, states []core.NodeState) (geom.LineString, error) {
	if len(states) < 2 {
		return geom.LineString{}, fmt.Errorf("track needs at least 2 samples, got %d", len(states))
	}
	flat := make([]float64, 0, len(states)*2)
	for _, s := range states {
		flat = append(flat, origin.mercX+s.Position.X, origin.mercY+s.Position.Y)
	}
	seq := geom.NewSequence(flat, geom.DimXY)
	return geom.NewLineString(seq), nil
}

// TrackWKT renders a flight track as a WKT LINESTRING for storage backends
// without spatial awareness.
func TrackWKT(origin Origin, states []core.NodeState) (string, error) {
	ls, err := TrackLineString(origin, states)
	if err != nil {
		return "", err
	}
	return ls.AsText(), nil
}
