package acquisition

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// ExpectedImprovement scores a point by the expected magnitude of
// improvement over the best observed value.
type ExpectedImprovement struct {
	// Best observed objective value so far.
	bestObserved float64
	// Exploration-exploitation trade-off parameter.
	xi float64
}

// NewExpectedImprovement creates an EI function for a minimizing search.
func NewExpectedImprovement(bestObserved, xi float64) *ExpectedImprovement {
	return &ExpectedImprovement{
		bestObserved: bestObserved,
		xi:           xi,
	}
}

// Compute returns EI at a point with posterior mean mu and standard
// deviation sigma. The result is always non-negative.
func (ei *ExpectedImprovement) Compute(mu, sigma float64) float64 {
	improvement := ei.bestObserved - mu - ei.xi
	if improvement <= 0 {
		return 0
	}

	// With a near-certain prediction the expectation collapses to the
	// plain improvement.
	if sigma <= 1e-10 {
		return improvement
	}

	stdNormal := distuv.UnitNormal
	z := improvement / sigma

	// EI = improvement * Φ(z) + sigma * φ(z)
	return improvement*stdNormal.CDF(z) + sigma*stdNormal.Prob(z)
}

// UpdateBest records the best observed objective value.
func (ei *ExpectedImprovement) UpdateBest(best float64) {
	ei.bestObserved = best
}

// SetXi sets the exploration-exploitation trade-off parameter.
func (ei *ExpectedImprovement) SetXi(xi float64) {
	ei.xi = xi
}

// BestObserved returns the best observed objective value.
func (ei *ExpectedImprovement) BestObserved() float64 {
	return ei.bestObserved
}
