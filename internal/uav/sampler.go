package uav

import "math/rand"

// ConsumptionSampler draws the per-activation normalized consumption rate
// (mAh per second) applied while a command executes. It is injected so that
// tests can supply deterministic values.
type ConsumptionSampler interface {
	Sample() float64
}

// LogNormalSampler draws consumption rates from a LogNormal distribution,
// which keeps every draw strictly positive.
type LogNormalSampler struct {
	dist LogNormalDist
	rng  *rand.Rand
}

// NewLogNormalSampler creates a sampler around the given mean and std
// consumption rate, seeded for reproducible runs.
func NewLogNormalSampler(mean, std float64, seed int64) *LogNormalSampler {
	return &LogNormalSampler{
		dist: NewLogNormalFromMeanStd(mean, std),
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Sample draws one consumption rate in mAh/s.
func (s *LogNormalSampler) Sample() float64 {
	return s.dist.Sample(s.rng)
}

// FixedSampler always returns the same consumption rate. Used in tests.
type FixedSampler float64

// Sample returns the fixed rate.
func (s FixedSampler) Sample() float64 {
	return float64(s)
}
