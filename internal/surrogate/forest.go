// Package surrogate provides the regression model that stands in for the
// expensive true objective. The model is fit once on sampled observations and
// is read-only for the remainder of a run.
package surrogate

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/crucible-opt/crucible/internal/optimization"
)

// Observation is one labeled sample: an input vector and its measured score.
// Observations are immutable once created; their order carries no meaning.
type Observation struct {
	X []float64
	Y float64
}

// Config holds the forest hyperparameters. All stochastic elements are
// controlled by Seed so that a fixed training set yields reproducible
// predictions.
type Config struct {
	// Trees is the ensemble size.
	Trees int
	// MinLeaf is the minimum number of samples per leaf.
	MinLeaf int
	// MaxDepth caps tree depth.
	MaxDepth int
	// Seed drives bootstrap resampling.
	Seed int64
}

// DefaultConfig returns the standard forest hyperparameters.
func DefaultConfig() Config {
	return Config{
		Trees:    100,
		MinLeaf:  2,
		MaxDepth: 12,
	}
}

func (c *Config) applyDefaults() {
	if c.Trees < 1 {
		c.Trees = 100
	}
	if c.MinLeaf < 1 {
		c.MinLeaf = 2
	}
	if c.MaxDepth < 1 {
		c.MaxDepth = 12
	}
}

// Forest is a bagged ensemble of regression trees. It supports nonlinear
// interactions between input dimensions, which a linear model would miss.
type Forest struct {
	cfg    Config
	trees  []*treeNode
	logger *zap.Logger
}

// NewForest creates an unfitted forest with the given hyperparameters.
func NewForest(cfg Config) *Forest {
	cfg.applyDefaults()
	logger, _ := zap.NewDevelopment()

	return &Forest{
		cfg:    cfg,
		logger: logger.Named("random_forest"),
	}
}

// SetLogger replaces the forest's logger, typically to route fit logs
// through the service log stream.
func (f *Forest) SetLogger(logger *zap.Logger) {
	f.logger = logger.Named("random_forest")
}

// Fit trains the ensemble on the observation set. Fitting with zero
// observations is fatal; there is no fallback model. Refitting replaces the
// previous ensemble entirely.
func (f *Forest) Fit(observations []Observation) error {
	const op = "Forest.Fit"

	if len(observations) == 0 {
		err := errors.New("training set is empty")
		return optimization.WrapError(err, "surrogate: "+op)
	}

	nFeatures := len(observations[0].X)
	if nFeatures == 0 {
		err := errors.New("observations have no input dimensions")
		return optimization.WrapError(err, "surrogate: "+op)
	}
	for i, obs := range observations {
		if len(obs.X) != nFeatures {
			err := fmt.Errorf("observation %d has %d dimensions, expected %d", i, len(obs.X), nFeatures)
			return optimization.WrapError(err, "surrogate: "+op)
		}
	}

	f.logger.Debug("Fitting random forest",
		zap.Int("observations", len(observations)),
		zap.Int("features", nFeatures),
		zap.Int("trees", f.cfg.Trees),
		zap.Int64("seed", f.cfg.Seed),
	)

	n := len(observations)
	xs := make([][]float64, n)
	ys := make([]float64, n)
	for i, obs := range observations {
		xs[i] = append([]float64(nil), obs.X...)
		ys[i] = obs.Y
	}

	rng := rand.New(rand.NewSource(f.cfg.Seed))
	trees := make([]*treeNode, f.cfg.Trees)

	for t := 0; t < f.cfg.Trees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		trees[t] = buildTree(xs, ys, idx, 0, f.cfg.MaxDepth, f.cfg.MinLeaf)
	}

	f.trees = trees
	return nil
}

// Fitted reports whether Fit has completed successfully.
func (f *Forest) Fitted() bool {
	return len(f.trees) > 0
}

// Predict returns the ensemble mean at x. The forest must be fitted first;
// after fitting, Predict is a pure function of its input.
func (f *Forest) Predict(x []float64) float64 {
	sum := 0.0
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}
