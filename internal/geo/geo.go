// Package geo converts the simulation's local Cartesian frame into
// geographic coordinates for export. The simulation runs in a flat
// meter-based frame; an Origin anchors that frame at a WGS84 position so
// flight tracks can be rendered on a map.
package geo

import (
	"errors"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/uavops/uavsim/pkg/core"
)

// ErrInvalidCoordinates is returned when a coordinate string cannot be parsed.
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Origin anchors the local Cartesian frame at a WGS84 position. Local X
// grows eastward, local Y northward, both in meters.
type Origin struct {
	Longitude float64
	Latitude  float64

	// Origin position projected into WebMercator, cached at construction.
	mercX, mercY float64
}

// NewOrigin creates an anchor at the given WGS84 position.
func NewOrigin(longitude, latitude float64) Origin {
	to3857 := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ := to3857(longitude, latitude, 0)
	return Origin{
		Longitude: longitude,
		Latitude:  latitude,
		mercX:     x,
		mercY:     y,
	}
}

// ToWGS84 converts a local position into longitude/latitude. Local meters
// are applied as WebMercator offsets around the origin, which is accurate
// enough at simulation scale (a few kilometers) away from the poles.
func (o Origin) ToWGS84(pos core.Position3D) (longitude, latitude float64) {
	to4326 := wgs84.EPSG().Transform(3857, 4326)
	longitude, latitude, _ = to4326(o.mercX+pos.X, o.mercY+pos.Y, 0)
	return longitude, latitude
}

// Point3857 returns the local position as a WebMercator point with the
// altitude carried in Z.
func (o Origin) Point3857(pos core.Position3D) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: o.mercX + pos.X, Y: o.mercY + pos.Y},
		Z:    pos.Z,
		Type: geom.DimXYZ,
	})
}

// Position3DFromString parses an "x,y" or "x,y,z" string into a local
// position. Used for station and start positions in scenario files.
func Position3DFromString(coords string) (core.Position3D, error) {
	parts := strings.Split(coords, ",")
	if len(parts) < 2 {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Position3D{}, ErrInvalidCoordinates
	}
	var z float64
	if len(parts) > 2 {
		z, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
	}
	return core.Position3D{X: x, Y: y, Z: z}, nil
}
