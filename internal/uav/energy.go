package uav

import "math"

// Estimation method for speed and consumption queries.
const (
	MethodDefault     = 1 // mean estimate
	MethodPessimistic = 2 // conservative estimate for planning margins
)

// EnergyModel maps flight geometry to cruise speed and energy consumption.
// Speeds are in m/s, consumption in mAh.
type EnergyModel struct {
	CruiseSpeed  float64 // level flight
	ClimbSpeed   float64 // pure vertical ascent/descent
	SpeedDerate  float64 // multiplier applied by the pessimistic method, in (0,1]

	HoverRate     float64 // mAh per second while hovering
	ClimbFactor   float64 // consumption multiplier at +90 deg
	DescendFactor float64 // consumption multiplier at -90 deg
	CruiseFactor  float64 // consumption multiplier in level flight
	SafetyFactor  float64 // consumption multiplier applied by the pessimistic method
}

// DefaultEnergyModel returns a model for a small quadcopter.
func DefaultEnergyModel() EnergyModel {
	return EnergyModel{
		CruiseSpeed:   15.0,
		ClimbSpeed:    3.0,
		SpeedDerate:   0.8,
		HoverRate:     0.93,
		ClimbFactor:   2.5,
		DescendFactor: 0.8,
		CruiseFactor:  1.5,
		SafetyFactor:  1.2,
	}
}

// Speed returns the cruise speed for a climb angle in degrees.
// The speed blends linearly between level cruise and the vertical climb
// speed as the flight path steepens. Method 2 derates the estimate for
// conservative planning.
func (m EnergyModel) Speed(climbAngle float64, method int) float64 {
	frac := math.Abs(climbAngle) / 90.0
	if frac > 1 {
		frac = 1
	}
	speed := m.CruiseSpeed*(1-frac) + m.ClimbSpeed*frac
	if method == MethodPessimistic {
		speed *= m.SpeedDerate
	}
	return speed
}

// consumptionRate returns mAh/s for a given climb angle.
func (m EnergyModel) consumptionRate(climbAngle float64) float64 {
	frac := math.Abs(climbAngle) / 90.0
	if frac > 1 {
		frac = 1
	}
	var factor float64
	if climbAngle >= 0 {
		factor = m.CruiseFactor*(1-frac) + m.ClimbFactor*frac
	} else {
		factor = m.CruiseFactor*(1-frac) + m.DescendFactor*frac
	}
	return m.HoverRate * factor
}

// MovementConsumption returns the expected energy use for flying at the
// given climb angle for the given duration in seconds.
func (m EnergyModel) MovementConsumption(climbAngle, duration float64, method int) float64 {
	consumption := m.consumptionRate(climbAngle) * duration
	if method == MethodPessimistic {
		consumption *= m.SafetyFactor
	}
	return consumption
}

// HoverConsumption returns the expected energy use for hovering in place
// for the given duration in seconds.
func (m EnergyModel) HoverConsumption(duration float64, method int) float64 {
	consumption := m.HoverRate * duration
	if method == MethodPessimistic {
		consumption *= m.SafetyFactor
	}
	return consumption
}
