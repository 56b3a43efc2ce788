// Package core defines the domain value types shared between the command
// execution engine, the stepping driver and the telemetry backends.
package core

import "math"

// Position3D represents a 3D coordinate in the local Cartesian frame.
type Position3D struct {
	X float64 `json:"x"` // easting, meters
	Y float64 `json:"y"` // northing, meters
	Z float64 `json:"z"` // altitude above ground, meters
}

// DistanceTo returns the straight-line distance to other in meters.
func (p Position3D) DistanceTo(other Position3D) float64 {
	dx := other.X - p.X
	dy := other.Y - p.Y
	dz := other.Z - p.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// ManhattanDistanceTo returns the sum of the absolute per-axis differences.
func (p Position3D) ManhattanDistanceTo(other Position3D) float64 {
	return math.Abs(other.X-p.X) + math.Abs(other.Y-p.Y) + math.Abs(other.Z-p.Z)
}
