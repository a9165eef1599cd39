package bayesian

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/crucible-opt/crucible/internal/optimization/acquisition"
)

// Proposer selects the next point to evaluate by maximizing an acquisition
// function over the bounded search space. Maximization is itself a small
// embedded optimization problem, so the strategy is pluggable.
type Proposer interface {
	Propose(gp *GP, acq acquisition.Function, bounds [][2]float64, incumbent []float64, rng *rand.Rand) ([]float64, error)
}

// posterior evaluates the GP at a single point.
func posterior(gp *GP, x []float64) (mu, sigma float64, err error) {
	X := mat.NewDense(1, len(x), x)
	mean, variance, err := gp.Predict(X)
	if err != nil {
		return 0, 0, err
	}
	return mean.AtVec(0), math.Sqrt(variance.AtVec(0)), nil
}

func clampToBounds(x []float64, bounds [][2]float64) {
	for i := range x {
		x[i] = math.Max(bounds[i][0], math.Min(x[i], bounds[i][1]))
	}
}

func randomPoint(bounds [][2]float64, rng *rand.Rand) []float64 {
	x := make([]float64, len(bounds))
	for i, b := range bounds {
		x[i] = b[0] + rng.Float64()*(b[1]-b[0])
	}
	return x
}

// NelderMeadProposer maximizes the acquisition with multistart Nelder-Mead.
// Derivative-free local search from the incumbent plus random restarts.
type NelderMeadProposer struct{}

// Propose returns the point with the highest acquisition value across all
// restarts.
func (NelderMeadProposer) Propose(gp *GP, acq acquisition.Function, bounds [][2]float64, incumbent []float64, rng *rand.Rand) ([]float64, error) {
	nDims := len(bounds)

	// Minimize the negated acquisition; out-of-bounds queries are clamped.
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clampToBounds(x, bounds)
			mu, sigma, err := posterior(gp, x)
			if err != nil {
				return math.Inf(1)
			}
			return -acq.Compute(mu, sigma)
		},
	}

	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-6,
			Relative:   1e-6,
			Iterations: 100,
		},
	}

	nStarts := 5 + int(5*math.Sqrt(float64(nDims)))
	starts := make([][]float64, nStarts)
	if incumbent != nil {
		starts[0] = append([]float64(nil), incumbent...)
	}
	for i := range starts {
		if starts[i] == nil {
			starts[i] = randomPoint(bounds, rng)
		}
	}

	bestX := append([]float64(nil), starts[0]...)
	bestVal := math.Inf(1)

	for _, start := range starts {
		method := &optimize.NelderMead{
			Reflection:  1.0,
			Expansion:   2.0,
			Contraction: 0.5,
			Shrink:      0.5,
			SimplexSize: 0.2,
		}

		result, err := optimize.Minimize(problem, start, settings, method)
		if err == nil && result.F < bestVal {
			bestVal = result.F
			copy(bestX, result.X)
		}
	}

	clampToBounds(bestX, bounds)
	return bestX, nil
}

// RandomCandidateProposer scores a fixed batch of uniformly drawn candidates
// and keeps the best. Cheaper and coarser than Nelder-Mead; useful when the
// acquisition surface is noisy.
type RandomCandidateProposer struct {
	// Candidates per proposal. Zero means the default of 256.
	Candidates int
}

// Propose returns the highest-scoring candidate in the batch.
func (p RandomCandidateProposer) Propose(gp *GP, acq acquisition.Function, bounds [][2]float64, incumbent []float64, rng *rand.Rand) ([]float64, error) {
	n := p.Candidates
	if n <= 0 {
		n = 256
	}

	var bestX []float64
	bestVal := math.Inf(-1)

	for i := 0; i < n; i++ {
		x := randomPoint(bounds, rng)
		mu, sigma, err := posterior(gp, x)
		if err != nil {
			return nil, err
		}
		if v := acq.Compute(mu, sigma); v > bestVal {
			bestVal = v
			bestX = x
		}
	}

	return bestX, nil
}
