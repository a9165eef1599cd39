// Command search runs one composition search end to end: synthesize a
// dataset, fit the surrogate, optimize, and print the result.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/crucible-opt/crucible/internal/config"
	"github.com/crucible-opt/crucible/internal/dataset"
	"github.com/crucible-opt/crucible/internal/logging"
	"github.com/crucible-opt/crucible/internal/report"
	"github.com/crucible-opt/crucible/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	budget := flag.Int("budget", cfg.Search.Budget, "total objective evaluations")
	initial := flag.Int("initial", cfg.Search.InitialPoints, "initial design size")
	seed := flag.Int64("seed", cfg.Search.Seed, "optimizer random seed")
	penalty := flag.Float64("penalty", cfg.Search.Penalty, "infeasibility penalty")
	samples := flag.Int("samples", cfg.Dataset.Samples, "synthetic dataset size")
	traceOnly := flag.Bool("trace", false, "print only the convergence trace")
	flag.Parse()

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	params := search.Params{
		Space:         cfg.SearchSpace(),
		Budget:        *budget,
		InitialPoints: *initial,
		Seed:          *seed,
		Penalty:       *penalty,
		Logger:        logging.NewZapLogger(logger),
	}

	dsCfg := cfg.DatasetConfig()
	dsCfg.Samples = *samples

	observations, err := dataset.Generate(dsCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate dataset: %v\n", err)
		os.Exit(1)
	}

	result, err := search.Run(context.Background(), observations, cfg.SurrogateConfig(), params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	reporter := report.New(os.Stdout)
	if *traceOnly {
		err = reporter.WriteTrace(result)
	} else {
		err = reporter.Write(result)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
		os.Exit(1)
	}
}
