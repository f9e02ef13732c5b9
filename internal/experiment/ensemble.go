package experiment

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/befsim/internal/config"
)

// Ensemble runs independent copies of an experiment, seeded seedStart,
// seedStart+1, and so on. Runs share no mutable state.
type Ensemble struct {
	base      *config.Config
	numRuns   int
	seedStart int64
	limit     int
	log       *slog.Logger
}

func NewEnsemble(base *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		base:      base,
		numRuns:   numRuns,
		seedStart: seedStart,
		limit:     runtime.GOMAXPROCS(0),
		log:       slog.Default(),
	}
}

// SetLimit bounds the number of concurrent runs.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

func (e *Ensemble) SetLogger(l *slog.Logger) { e.log = l }

// Run executes every run. A failing run is logged and reported in its
// Outcome; only cancellation aborts the ensemble.
func (e *Ensemble) Run(ctx context.Context) ([]*Outcome, error) {
	results := make([]*Outcome, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			cfg := e.base.Clone()
			cfg.Simulation.Seed = e.seedStart + int64(idx)

			exp := New(cfg)
			exp.SetLogger(e.log)
			out, err := exp.Run(gctx)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.log.Error("run failed", "run", idx, "seed", cfg.Simulation.Seed, "err", err)
				out = &Outcome{Seed: cfg.Simulation.Seed, Err: err}
			}
			results[idx] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
