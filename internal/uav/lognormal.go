package uav

import (
	"math"
	"math/rand"
)

// LogNormalDist represents a LogNormal distribution.
// If X ~ LogNormal(μ, σ), then ln(X) ~ Normal(μ, σ).
type LogNormalDist struct {
	Mu    float64 // Location parameter (mean of ln(X))
	Sigma float64 // Scale parameter (std dev of ln(X))
}

// NewLogNormalFromMeanStd creates a LogNormal from mean and std of X (not ln(X)).
func NewLogNormalFromMeanStd(mean, std float64) LogNormalDist {
	if mean <= 0 || std < 0 {
		return LogNormalDist{Mu: 0, Sigma: 0}
	}

	// E[X] = exp(μ + σ²/2)
	// Var[X] = exp(2μ + σ²)(exp(σ²) - 1)
	variance := std * std
	sigma2 := math.Log(1 + variance/(mean*mean))
	sigma := math.Sqrt(sigma2)
	mu := math.Log(mean) - sigma2/2

	return LogNormalDist{Mu: mu, Sigma: sigma}
}

// Mean returns E[X] for X ~ LogNormal(μ, σ).
func (d LogNormalDist) Mean() float64 {
	return math.Exp(d.Mu + d.Sigma*d.Sigma/2)
}

// Sample generates a random sample from the distribution.
func (d LogNormalDist) Sample(rng *rand.Rand) float64 {
	// Generate Normal(μ, σ) then exponentiate
	normal := rng.NormFloat64()*d.Sigma + d.Mu
	return math.Exp(normal)
}

// Quantile returns x such that P(X <= x) = p.
func (d LogNormalDist) Quantile(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return math.Inf(1)
	}

	z := normalQuantile(p)
	return math.Exp(d.Mu + d.Sigma*z)
}

// normalQuantile computes the inverse standard normal CDF (probit function).
// Uses Abramowitz and Stegun approximation.
func normalQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}
	if p == 0.5 {
		return 0
	}

	if p < 0.5 {
		return -rationalApproxForNormalQuantile(math.Sqrt(-2 * math.Log(p)))
	}
	return rationalApproxForNormalQuantile(math.Sqrt(-2 * math.Log(1-p)))
}

func rationalApproxForNormalQuantile(t float64) float64 {
	// Coefficients from Abramowitz and Stegun
	c := []float64{2.515517, 0.802853, 0.010328}
	d := []float64{1.432788, 0.189269, 0.001308}

	return t - (c[0]+c[1]*t+c[2]*t*t)/(1+d[0]*t+d[1]*t*t+d[2]*t*t*t)
}
