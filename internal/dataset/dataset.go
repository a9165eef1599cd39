// Package dataset synthesizes labeled composition samples. The core treats
// it as an opaque upstream source of observations; any loader with the same
// output shape can replace it.
package dataset

import (
	"math/rand"

	"github.com/crucible-opt/crucible/internal/composition"
	"github.com/crucible-opt/crucible/internal/surrogate"
)

// Config controls synthetic sample generation.
type Config struct {
	// Samples is the number of observations to produce.
	Samples int
	// Seed drives both input placement and measurement noise.
	Seed int64
	// Noise is the standard deviation of the additive measurement noise.
	Noise float64
	// Space bounds the sampled input fractions.
	Space composition.SearchSpace
}

// DefaultConfig returns the standard generation settings.
func DefaultConfig() Config {
	return Config{
		Samples: 200,
		Noise:   0.5,
		Space:   composition.DefaultSearchSpace(),
	}
}

// TrueScore is the hidden generative relationship the surrogate has to
// approximate. The a*b term makes the interaction between the two inputs
// nonlinear, so a linear regressor would under-fit it.
func TrueScore(a, b float64) float64 {
	c := composition.Total - a - b
	return 60 +
		0.012*a*b +
		0.05*c -
		0.030*(a-42)*(a-42) -
		0.040*(b-33)*(b-33)
}

// Generate produces a fixed-size set of observations, uniform over the
// search space with noisy labels. Output is reproducible for a fixed seed.
func Generate(cfg Config) ([]surrogate.Observation, error) {
	if cfg.Samples < 1 {
		cfg.Samples = DefaultConfig().Samples
	}
	if err := cfg.Space.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	obs := make([]surrogate.Observation, cfg.Samples)

	for i := range obs {
		a := cfg.Space.A.Lo + rng.Float64()*(cfg.Space.A.Hi-cfg.Space.A.Lo)
		b := cfg.Space.B.Lo + rng.Float64()*(cfg.Space.B.Hi-cfg.Space.B.Lo)
		y := TrueScore(a, b) + cfg.Noise*rng.NormFloat64()
		obs[i] = surrogate.Observation{X: []float64{a, b}, Y: y}
	}

	return obs, nil
}
