// Package acquisition provides the functions that score candidate points
// during Bayesian optimization, trading off predicted improvement against
// model uncertainty.
package acquisition

// Function scores a candidate from the posterior mean and standard
// deviation at that point. Higher is more promising. Implementations assume
// the outer search minimizes its objective.
type Function interface {
	// Compute returns the acquisition value for a posterior (mu, sigma).
	Compute(mu, sigma float64) float64

	// UpdateBest informs the function of the best observed objective
	// value so far.
	UpdateBest(best float64)
}
