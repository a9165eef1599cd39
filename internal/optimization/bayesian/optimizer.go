// Package bayesian implements sample-efficient sequential search using a
// Gaussian process surrogate and an acquisition function.
package bayesian

import (
	"context"
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/crucible-opt/crucible/internal/optimization"
	"github.com/crucible-opt/crucible/internal/optimization/acquisition"
	"github.com/crucible-opt/crucible/internal/optimization/kernels"
)

// Optimizer runs Bayesian optimization: a space-filling initial design
// followed by acquisition-guided sequential evaluations, for an exact
// evaluation budget.
type Optimizer struct {
	config optimization.Config

	gp       *GP
	acq      acquisition.Function
	proposer Proposer
	rng      *rand.Rand
	logger   *zap.Logger

	best    *optimization.Candidate
	history []optimization.Evaluation
	trace   []float64

	cancel context.CancelFunc
}

// Option customizes an Optimizer.
type Option func(*Optimizer)

// WithKernel replaces the default Matern 5/2 GP kernel.
func WithKernel(k kernels.Kernel) Option {
	return func(o *Optimizer) { o.gp = NewGP(k, 1e-6) }
}

// WithAcquisition replaces the default expected-improvement acquisition.
func WithAcquisition(a acquisition.Function) Option {
	return func(o *Optimizer) { o.acq = a }
}

// WithProposer replaces the default Nelder-Mead acquisition maximizer.
func WithProposer(p Proposer) Option {
	return func(o *Optimizer) { o.proposer = p }
}

// WithLogger routes GP fit logs through the given logger instead of a
// standalone development logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Optimizer) { o.logger = l }
}

// New creates an Optimizer for the given run configuration. The config is
// validated up front; invalid bounds or budgets are fatal here, not at run
// time.
func New(config optimization.Config, opts ...Option) (*Optimizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &Optimizer{
		config:   config,
		gp:       NewGP(kernels.NewMatern52(1.0, 1.0), 1e-6),
		acq:      acquisition.NewExpectedImprovement(math.Inf(1), 0.01),
		proposer: NelderMeadProposer{},
		rng:      rand.New(rand.NewSource(config.Seed)),
		history:  make([]optimization.Evaluation, 0, config.Budget),
		trace:    make([]float64, 0, config.Budget),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger != nil {
		o.gp.logger = o.logger.Named("gaussian_process")
	}
	return o, nil
}

// Optimize runs the search to completion: exactly Budget evaluations, no
// early stopping.
func (o *Optimizer) Optimize(ctx context.Context, config optimization.Config) (*optimization.Result, error) {
	if config.Objective != nil {
		if err := config.Validate(); err != nil {
			return nil, err
		}
		o.config = config
	}

	ctx, o.cancel = context.WithCancel(ctx)
	defer o.cancel()

	// Space-filling initial design.
	for i, x := range o.latinHypercubeSample(o.config.InitialPoints) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := o.evaluate(i, x); err != nil {
			return nil, err
		}
	}

	// Sequential acquisition-guided loop. Each iteration refits the GP on
	// everything observed so far, so the loop is inherently serial.
	for i := o.config.InitialPoints; i < o.config.Budget; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		X, y := o.trainingData()
		if err := o.gp.Fit(X, y); err != nil {
			return nil, optimization.WrapError(err, "fitting GP surrogate")
		}

		o.acq.UpdateBest(o.best.Value)

		next, err := o.proposer.Propose(o.gp, o.acq, o.config.Bounds, o.best.Params, o.rng)
		if err != nil {
			return nil, optimization.WrapError(err, "proposing next point")
		}

		if err := o.evaluate(i, next); err != nil {
			return nil, err
		}
	}

	return &optimization.Result{
		Best:        *o.best,
		Trace:       append([]float64(nil), o.trace...),
		History:     append([]optimization.Evaluation(nil), o.history...),
		Evaluations: o.config.Budget,
	}, nil
}

// Best returns the best candidate found so far.
func (o *Optimizer) Best() *optimization.Candidate {
	return o.best
}

// History returns every evaluation made so far.
func (o *Optimizer) History() []optimization.Evaluation {
	return o.history
}

// Stop cancels a running search.
func (o *Optimizer) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// evaluate calls the objective at x, records the evaluation, and extends
// the best-so-far trace on the maximization scale.
func (o *Optimizer) evaluate(iteration int, x []float64) error {
	value, err := o.config.Objective(x)
	if err != nil {
		return optimization.WrapError(err, "evaluating objective")
	}

	if o.best == nil || value < o.best.Value {
		o.best = &optimization.Candidate{
			Params: append([]float64(nil), x...),
			Value:  value,
		}
	}

	o.history = append(o.history, optimization.Evaluation{
		Iteration: iteration,
		Candidate: optimization.Candidate{
			Params: append([]float64(nil), x...),
			Value:  value,
		},
	})
	o.trace = append(o.trace, o.best.Score())
	return nil
}

// trainingData assembles the evaluation history into GP training matrices.
func (o *Optimizer) trainingData() (*mat.Dense, *mat.VecDense) {
	nSamples := len(o.history)
	nDims := len(o.config.Bounds)

	X := mat.NewDense(nSamples, nDims, nil)
	y := mat.NewVecDense(nSamples, nil)
	for i, eval := range o.history {
		for j, val := range eval.Candidate.Params {
			X.Set(i, j, val)
		}
		y.SetVec(i, eval.Candidate.Value)
	}
	return X, y
}

// latinHypercubeSample draws n stratified points inside the bounds: each
// dimension is split into n bins, with exactly one sample per bin.
func (o *Optimizer) latinHypercubeSample(n int) [][]float64 {
	nDims := len(o.config.Bounds)
	samples := make([][]float64, n)
	for j := range samples {
		samples[j] = make([]float64, nDims)
	}

	perm := make([]float64, n)
	for i := 0; i < nDims; i++ {
		for j := 0; j < n; j++ {
			perm[j] = (float64(j) + o.rng.Float64()) / float64(n)
		}
		o.rng.Shuffle(n, func(k, l int) {
			perm[k], perm[l] = perm[l], perm[k]
		})

		lo, hi := o.config.Bounds[i][0], o.config.Bounds[i][1]
		for j := 0; j < n; j++ {
			samples[j][i] = lo + perm[j]*(hi-lo)
		}
	}

	return samples
}
