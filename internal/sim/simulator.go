// Package sim drives a food web simulation between evenly spaced
// checkpoints, consulting the extinction engine at each one.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/san-kum/befsim/internal/dynamics"
	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rewire"
)

type Option func(*Driver)

func WithLogger(l *slog.Logger) Option { return func(d *Driver) { d.log = l } }

// WithRand sets the source used by stochastic rewiring.
func WithRand(rng *rand.Rand) Option { return func(d *Driver) { d.rng = rng } }

// WithEngineOptions passes options through to the rewiring engine.
func WithEngineOptions(opts ...rewire.Option) Option {
	return func(d *Driver) { d.engineOpts = append(d.engineOpts, opts...) }
}

type Driver struct {
	integrator dynamo.Integrator
	cfg        dynamo.Config
	rng        *rand.Rand
	log        *slog.Logger
	engineOpts []rewire.Option
	metrics    []Metric
	observers  []Observer
}

func New(integrator dynamo.Integrator, cfg dynamo.Config, opts ...Option) *Driver {
	d := &Driver{
		integrator: integrator,
		cfg:        cfg,
		log:        slog.Default(),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rng == nil {
		d.rng = rand.New(rand.NewSource(1))
	}
	return d
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

// Checkpoints returns the evenly spaced recording times of a run.
func Checkpoints(t0, tEnd float64, steps int) []float64 {
	if steps <= 1 || t0 == tEnd {
		return []float64{t0}
	}
	times := make([]float64, steps)
	span := tEnd - t0
	for k := range times {
		times[k] = t0 + float64(k)*span/float64(steps-1)
	}
	times[steps-1] = tEnd
	return times
}

// Run integrates p from b0 over [t0, tEnd], recording steps checkpoints.
// Collapse and divergence end the run early and are reported in the result's
// Status; only invalid arguments and cancellation return an error.
func (d *Driver) Run(ctx context.Context, p *params.Parameters, b0 []float64, t0, tEnd float64, steps int) (*Result, error) {
	if err := d.validate(p, b0, t0, tEnd, steps); err != nil {
		return nil, err
	}

	times := Checkpoints(t0, tEnd, steps)
	result := &Result{
		Times:   make([]float64, 0, len(times)),
		Biomass: make([][]float64, 0, len(times)),
		Metrics: make(map[string]float64),
		Status:  StatusCompleted,
	}
	for _, m := range d.metrics {
		m.Reset()
	}

	net := p.InitialNetwork()
	engine := rewire.NewEngine(p, d.rng, append([]rewire.Option{rewire.WithLogger(d.log)}, d.engineOpts...)...)
	sys := dynamics.NewSystem(p, net)
	extinct := make([]bool, p.S)
	x := dynamo.State(b0).Clone()

	d.log.Info("run started", "species", p.S, "t0", t0, "tEnd", tEnd, "checkpoints", len(times))

	for k, tk := range times {
		select {
		case <-ctx.Done():
			result.Final = net
			return result, &dynamo.SimulationError{
				Step:    k,
				Time:    tk,
				State:   x.Clone(),
				Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()),
			}
		default:
		}

		if k > 0 {
			x = d.advance(sys, x, extinct, times[k-1], tk)
		}
		if !x.IsValid() {
			result.Status = StatusDiverged
			result.Cause = &dynamo.SimulationError{Step: k, Time: tk, State: x, Wrapped: dynamo.ErrInvalidState}
			d.log.Warn("biomass diverged", "t", tk, "err", result.Cause)
			break
		}

		out := engine.Checkpoint(tk, x, net)
		net = out.Network
		extinct = engine.Extinct()
		sys.SetNetwork(net)
		sys.SetExtinct(extinct)
		x = out.Biomass

		result.Times = append(result.Times, tk)
		result.Biomass = append(result.Biomass, x.Clone())
		for _, m := range d.metrics {
			m.Observe(x, tk)
		}
		for _, o := range d.observers {
			o.OnCheckpoint(k, len(times), tk, x)
		}

		if engine.AllExtinct() {
			result.Status = StatusCollapsed
			break
		}
	}

	result.Final = net
	result.Extinctions = engine.Extinctions()
	result.Rewirings = engine.Rewirings()
	for _, m := range d.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	d.log.Info("run finished", "status", result.Status, "checkpoints", len(result.Times),
		"extinctions", len(result.Extinctions), "rewirings", result.Rewirings)
	return result, nil
}

func (d *Driver) validate(p *params.Parameters, b0 []float64, t0, tEnd float64, steps int) error {
	if p == nil {
		return dynamo.Paramf("parameters", "nil parameters")
	}
	if len(b0) != p.S {
		return dynamo.Paramf("biomass", "length %d does not match %d species", len(b0), p.S)
	}
	for i, v := range b0 {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return dynamo.Paramf("biomass", "species %d has invalid initial biomass %g", i, v)
		}
	}
	if steps < 1 {
		return dynamo.Paramf("steps", "need at least one checkpoint, got %d", steps)
	}
	if math.IsNaN(t0) || math.IsNaN(tEnd) || tEnd < t0 {
		return dynamo.Paramf("stop", "end time %g before start %g", tEnd, t0)
	}
	if !(d.cfg.MaxDt > 0) {
		return dynamo.Paramf("max_dt", "must be positive, got %g", d.cfg.MaxDt)
	}
	if d.cfg.Adaptive {
		if d.cfg.Tolerance < 0 || d.cfg.AbsTolerance < 0 || !(d.cfg.Tolerance+d.cfg.AbsTolerance > 0) {
			return dynamo.Paramf("tolerance", "need non-negative tolerances, at least one positive")
		}
	}
	return nil
}

// advance integrates from t0 to t1 in substeps no longer than MaxDt,
// clipping negatives and holding extinct species at zero after each one.
func (d *Driver) advance(sys dynamo.System, x dynamo.State, extinct []bool, t0, t1 float64) dynamo.State {
	settle := func(x dynamo.State) {
		x.ClipNegative()
		for i, gone := range extinct {
			if gone {
				x[i] = 0
			}
		}
	}

	if adaptive, ok := d.integrator.(dynamo.AdaptiveIntegrator); ok && d.cfg.Adaptive {
		t, dt := t0, d.cfg.MaxDt
		tol := d.cfg.Tol()
		for t1-t > 1e-12*math.Max(1, math.Abs(t1)) {
			dt = math.Min(dt, t1-t)
			next, suggested, ok := adaptive.StepAdaptive(sys, x, t, dt, tol)
			if !ok && dt > d.cfg.MinDt {
				dt = math.Max(suggested, d.cfg.MinDt)
				continue
			}
			x = next
			settle(x)
			if !x.IsValid() {
				return x
			}
			t += dt
			dt = math.Min(math.Max(suggested, d.cfg.MinDt), d.cfg.MaxDt)
		}
		return x
	}

	n := int(math.Ceil((t1-t0)/d.cfg.MaxDt - 1e-9))
	if n < 1 {
		n = 1
	}
	h := (t1 - t0) / float64(n)
	for s := 0; s < n; s++ {
		x = d.integrator.Step(sys, x, t0+float64(s)*h, h)
		settle(x)
		if !x.IsValid() {
			return x
		}
	}
	return x
}
