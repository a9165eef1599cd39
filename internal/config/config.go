package config

import (
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/crucible-opt/crucible/internal/composition"
	"github.com/crucible-opt/crucible/internal/dataset"
	"github.com/crucible-opt/crucible/internal/surrogate"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Search struct {
		BoundALo      float64 `env:"SEARCH_BOUND_A_LO" envDefault:"20"`
		BoundAHi      float64 `env:"SEARCH_BOUND_A_HI" envDefault:"60"`
		BoundBLo      float64 `env:"SEARCH_BOUND_B_LO" envDefault:"20"`
		BoundBHi      float64 `env:"SEARCH_BOUND_B_HI" envDefault:"50"`
		Budget        int     `env:"SEARCH_BUDGET" envDefault:"30"`
		InitialPoints int     `env:"SEARCH_INITIAL_POINTS" envDefault:"5"`
		Seed          int64   `env:"SEARCH_SEED" envDefault:"42"`
		Penalty       float64 `env:"SEARCH_PENALTY" envDefault:"100000"`
	}
	Surrogate struct {
		Trees    int   `env:"SURROGATE_TREES" envDefault:"100"`
		MinLeaf  int   `env:"SURROGATE_MIN_LEAF" envDefault:"2"`
		MaxDepth int   `env:"SURROGATE_MAX_DEPTH" envDefault:"12"`
		Seed     int64 `env:"SURROGATE_SEED" envDefault:"7"`
	}
	Dataset struct {
		Samples int     `env:"DATASET_SAMPLES" envDefault:"200"`
		Noise   float64 `env:"DATASET_NOISE" envDefault:"0.5"`
		Seed    int64   `env:"DATASET_SEED" envDefault:"1"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

// SearchSpace assembles the configured bounds. Validation happens where the
// space is used.
func (c *Config) SearchSpace() composition.SearchSpace {
	return composition.SearchSpace{
		A: composition.Bounds{Lo: c.Search.BoundALo, Hi: c.Search.BoundAHi},
		B: composition.Bounds{Lo: c.Search.BoundBLo, Hi: c.Search.BoundBHi},
	}
}

// SurrogateConfig assembles the forest hyperparameters.
func (c *Config) SurrogateConfig() surrogate.Config {
	return surrogate.Config{
		Trees:    c.Surrogate.Trees,
		MinLeaf:  c.Surrogate.MinLeaf,
		MaxDepth: c.Surrogate.MaxDepth,
		Seed:     c.Surrogate.Seed,
	}
}

// DatasetConfig assembles the synthetic sampling settings.
func (c *Config) DatasetConfig() dataset.Config {
	return dataset.Config{
		Samples: c.Dataset.Samples,
		Noise:   c.Dataset.Noise,
		Seed:    c.Dataset.Seed,
		Space:   c.SearchSpace(),
	}
}
