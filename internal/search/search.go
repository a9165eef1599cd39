// Package search wires the full pipeline: fit the surrogate on observations,
// wrap it in the constrained objective, and run the sequential optimizer.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/crucible-opt/crucible/internal/composition"
	"github.com/crucible-opt/crucible/internal/optimization"
	"github.com/crucible-opt/crucible/internal/optimization/bayesian"
	"github.com/crucible-opt/crucible/internal/surrogate"
)

// Params are the explicit knobs of one search run.
type Params struct {
	// Space bounds the two independent fractions.
	Space composition.SearchSpace
	// Budget is the total number of objective evaluations.
	Budget int
	// InitialPoints is the initial-design size, drawn from the budget.
	InitialPoints int
	// Seed controls the optimizer's stochastic elements.
	Seed int64
	// Penalty replaces the predicted score for infeasible blends.
	Penalty float64
	// Logger, when set, routes surrogate and GP fit logs through the
	// service log stream.
	Logger *zap.Logger
}

// DefaultParams returns the standard run settings.
func DefaultParams() Params {
	return Params{
		Space:         composition.DefaultSearchSpace(),
		Budget:        30,
		InitialPoints: 5,
		Seed:          42,
		Penalty:       composition.DefaultPenalty,
	}
}

// Run executes one complete search: surrogate fit, objective construction,
// sequential optimization. The whole run is a single sequential unit of
// work; ctx cancels it between evaluations.
func Run(ctx context.Context, observations []surrogate.Observation, forestCfg surrogate.Config, p Params, opts ...bayesian.Option) (*optimization.Result, error) {
	if err := p.Space.Validate(); err != nil {
		return nil, err
	}

	model := surrogate.NewForest(forestCfg)
	if p.Logger != nil {
		model.SetLogger(p.Logger)
		opts = append(opts, bayesian.WithLogger(p.Logger))
	}
	if err := model.Fit(observations); err != nil {
		return nil, err
	}

	objective := composition.NewObjective(model, p.Penalty)

	cfg := optimization.Config{
		Objective:     objective.Func(),
		Bounds:        p.Space.Rect(),
		Budget:        p.Budget,
		InitialPoints: p.InitialPoints,
		Seed:          p.Seed,
	}

	opt, err := bayesian.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return opt.Optimize(ctx, cfg)
}
