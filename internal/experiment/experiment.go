package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/befsim/internal/config"
	"github.com/san-kum/befsim/internal/foodweb"
	"github.com/san-kum/befsim/internal/integrators"
	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/sim"
)

// Outcome is everything one seeded run produced.
type Outcome struct {
	Seed    int64
	Web     *foodweb.FoodWeb
	Params  *params.Parameters
	Initial []float64
	Result  *sim.Result
	Summary metrics.Summary
	Err     error
}

// Experiment generates a web, builds its parameters and runs it, all from
// one seeded random source.
type Experiment struct {
	cfg        *config.Config
	randSource *rand.Rand
	log        *slog.Logger
	metrics    []string
	observers  []sim.Observer
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Simulation.Seed)),
		log:        slog.Default(),
		metrics:    DefaultMetrics,
	}
}

func (e *Experiment) SetLogger(l *slog.Logger) { e.log = l }

// SetMetrics selects registered metrics by name.
func (e *Experiment) SetMetrics(names []string) { e.metrics = names }

func (e *Experiment) AddObserver(o sim.Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	cfg := e.cfg
	out := &Outcome{Seed: cfg.Simulation.Seed}

	web, err := cfg.FoodWeb(e.randSource)
	if err != nil {
		return nil, fmt.Errorf("food web: %w", err)
	}
	out.Web = web

	p, err := params.BuildWeb(web, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	out.Params = p

	out.Initial, err = cfg.InitialBiomass(e.randSource, p.S)
	if err != nil {
		return nil, err
	}

	integ, err := integrators.Get(cfg.Simulation.Integrator)
	if err != nil {
		return nil, err
	}
	driver := sim.New(integ, cfg.DriverConfig(),
		sim.WithRand(e.randSource),
		sim.WithLogger(e.log.With("seed", cfg.Simulation.Seed)))

	ms, err := NewRegistry().Metrics(e.metrics, p.ExtinctionThreshold)
	if err != nil {
		return nil, err
	}
	for _, m := range ms {
		driver.AddMetric(m)
	}
	for _, o := range e.observers {
		driver.AddObserver(o)
	}

	s := cfg.Simulation
	out.Result, err = driver.Run(ctx, p, out.Initial, s.Start, s.Stop, s.Steps)
	if err != nil {
		return nil, err
	}
	out.Summary = metrics.Summarize(out.Result, s.Last, p.ExtinctionThreshold)
	return out, nil
}
