// Package optimization defines the shared contract between search
// strategies and their callers.
package optimization

import (
	"context"
	"fmt"
)

// Optimizer is the interface implemented by sequential search strategies.
type Optimizer interface {
	// Optimize runs the search to completion under the given config.
	Optimize(ctx context.Context, config Config) (*Result, error)

	// Best returns the best candidate found so far.
	Best() *Candidate

	// History returns every evaluation made so far, in order.
	History() []Evaluation

	// Stop cancels a running search.
	Stop()
}

// ObjectiveFunction is the minimization target supplied to an optimizer.
type ObjectiveFunction func(x []float64) (float64, error)

// Config parameterizes a single optimization run. Every knob is explicit;
// nothing is read from ambient state.
type Config struct {
	// Objective is the function to minimize.
	Objective ObjectiveFunction

	// Bounds holds [min, max] for each input dimension.
	Bounds [][2]float64

	// Budget is the total number of objective evaluations, initial design
	// included. The run terminates after exactly this many.
	Budget int

	// InitialPoints is the size of the space-filling initial design drawn
	// from the budget.
	InitialPoints int

	// Seed controls the initial design and any stochastic proposal step.
	Seed int64
}

// Validate rejects configurations that cannot produce a run. Bound
// violations are fatal at configuration time, never retried.
func (c Config) Validate() error {
	if c.Objective == nil {
		return NewError("objective function is required")
	}
	if len(c.Bounds) == 0 {
		return NewError("at least one dimension is required")
	}
	for i, b := range c.Bounds {
		if b[0] >= b[1] {
			return NewErrorf("dimension %d: lower bound %g must be strictly below upper bound %g", i, b[0], b[1])
		}
	}
	if c.Budget < 1 {
		return NewError("evaluation budget must be positive")
	}
	if c.InitialPoints < 1 || c.InitialPoints > c.Budget {
		return NewErrorf("initial design size %d must be in [1, budget=%d]", c.InitialPoints, c.Budget)
	}
	return nil
}

// Candidate is one evaluated point in the search space. Value is on the
// minimization scale.
type Candidate struct {
	Params []float64
	Value  float64
}

// Score returns the candidate's value on the caller's maximization scale.
func (c Candidate) Score() float64 {
	return -c.Value
}

// Evaluation records a single objective evaluation.
type Evaluation struct {
	Iteration int
	Candidate Candidate
}

// Result is the immutable outcome of a completed run.
type Result struct {
	// Best is the evaluated candidate with the lowest objective value.
	Best Candidate

	// Trace holds the best score seen up to and including each
	// evaluation, on the maximization scale. Its length equals the
	// budget and it is non-decreasing.
	Trace []float64

	// History is every evaluation in order.
	History []Evaluation

	// Evaluations is the number of objective calls made.
	Evaluations int
}

// String formats the result for logs.
func (r *Result) String() string {
	return fmt.Sprintf("best=%v score=%g evaluations=%d", r.Best.Params, r.Best.Score(), r.Evaluations)
}
