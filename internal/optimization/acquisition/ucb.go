package acquisition

// UpperConfidenceBound scores a point by its optimistic posterior bound.
// For a minimizing search the most promising points are those whose lower
// confidence bound undercuts the best observed value, so Compute returns
// the negated bound: higher means more promising.
type UpperConfidenceBound struct {
	// Beta weighs the uncertainty term; larger values explore more.
	beta float64
}

// NewUpperConfidenceBound creates a UCB function with the given exploration
// weight. Beta around 2 is a reasonable default.
func NewUpperConfidenceBound(beta float64) *UpperConfidenceBound {
	return &UpperConfidenceBound{beta: beta}
}

// Compute returns -(mu - beta*sigma).
func (u *UpperConfidenceBound) Compute(mu, sigma float64) float64 {
	return -(mu - u.beta*sigma)
}

// UpdateBest is a no-op: UCB does not depend on the incumbent.
func (u *UpperConfidenceBound) UpdateBest(best float64) {}

// SetBeta sets the exploration weight.
func (u *UpperConfidenceBound) SetBeta(beta float64) {
	u.beta = beta
}
