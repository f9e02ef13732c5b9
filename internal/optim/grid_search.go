package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/befsim/internal/config"
	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/experiment"
	"github.com/san-kum/befsim/internal/metrics"
)

// Setters maps sweepable parameter names onto a configuration.
var Setters = map[string]func(c *config.Config, v float64){
	"T":                    func(c *config.Config, v float64) { c.Model.T = v },
	"K":                    func(c *config.Config, v float64) { c.Model.K = v },
	"Z":                    func(c *config.Config, v float64) { c.Model.Z = v },
	"r":                    func(c *config.Config, v float64) { c.Model.R = v },
	"c":                    func(c *config.Config, v float64) { c.Model.C = v },
	"h":                    func(c *config.Config, v float64) { c.Model.H = v },
	"alpha":                func(c *config.Config, v float64) { c.Model.Alpha = v },
	"gamma":                func(c *config.Config, v float64) { c.Model.Gamma = v },
	"extinction_threshold": func(c *config.Config, v float64) { c.Model.ExtinctionThreshold = v },
	"cost":                 func(c *config.Config, v float64) { c.Model.Gilljam.Cost = v },
	"stop":                 func(c *config.Config, v float64) { c.Simulation.Stop = v },
	"species": func(c *config.Config, v float64) {
		c.Network.Species = int(math.Round(v))
		c.Network.Matrix = nil
		c.Network.File = ""
	},
	"connectance": func(c *config.Config, v float64) {
		c.Network.Connectance = v
		c.Network.Links = 0
	},
}

// SetterNames lists Setters keys in order.
func SetterNames() []string {
	names := make([]string, 0, len(Setters))
	for k := range Setters {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=v1,v2,..." or "name=lo:hi:step".
func ParseAxis(s string) (Axis, error) {
	name, raw, ok := strings.Cut(s, "=")
	if !ok || name == "" || raw == "" {
		return Axis{}, dynamo.Paramf("sweep", "want name=values, got %q", s)
	}
	if _, ok := Setters[name]; !ok {
		return Axis{}, dynamo.Paramf("sweep", "cannot sweep %q (have %s)", name, strings.Join(SetterNames(), ", "))
	}

	if parts := strings.Split(raw, ":"); len(parts) == 3 {
		var bounds [3]float64
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return Axis{}, dynamo.Paramf("sweep", "%s: %v", name, err)
			}
			bounds[i] = v
		}
		lo, hi, step := bounds[0], bounds[1], bounds[2]
		if !(step > 0) || hi < lo {
			return Axis{}, dynamo.Paramf("sweep", "%s: bad range %s", name, raw)
		}
		var values []float64
		for i := 0; ; i++ {
			v := lo + float64(i)*step
			if v > hi+step*1e-9 {
				break
			}
			values = append(values, v)
		}
		return Axis{Name: name, Values: values}, nil
	}

	var values []float64
	for _, p := range strings.Split(raw, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Axis{}, dynamo.Paramf("sweep", "%s: %v", name, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

// Point is the ensemble averaged summary at one grid point.
type Point struct {
	Values map[string]float64
	Runs   int
	Failed int
	Means  map[string]float64
	Err    error
}

// GridSearch runs an ensemble at every combination of axis values.
type GridSearch struct {
	base  *config.Config
	axes  []Axis
	runs  int
	limit int
	log   *slog.Logger
}

func NewGridSearch(base *config.Config, axes []Axis, runs int) (*GridSearch, error) {
	if runs < 1 {
		return nil, dynamo.Paramf("runs", "need at least one run per point, got %d", runs)
	}
	for _, a := range axes {
		if _, ok := Setters[a.Name]; !ok {
			return nil, dynamo.Paramf("sweep", "cannot sweep %q", a.Name)
		}
		if len(a.Values) == 0 {
			return nil, dynamo.Paramf("sweep", "%s has no values", a.Name)
		}
	}
	return &GridSearch{base: base, axes: axes, runs: runs, log: slog.Default()}, nil
}

// SetLimit bounds concurrent runs inside each point's ensemble.
func (g *GridSearch) SetLimit(n int) { g.limit = n }

func (g *GridSearch) SetLogger(l *slog.Logger) { g.log = l }

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search visits the grid in axis order, last axis fastest. A point whose
// configuration is invalid is reported with Err set; only cancellation
// stops the search.
func (g *GridSearch) Search(ctx context.Context) ([]Point, error) {
	points := make([]Point, 0, g.Size())
	err := g.searchRecursive(ctx, 0, make(map[string]float64), &points)
	if err != nil {
		return nil, err
	}
	return points, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, points *[]Point) error {
	if depth == len(g.axes) {
		p, err := g.evaluate(ctx, current)
		if err != nil {
			return err
		}
		*points = append(*points, p)
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val
		if err := g.searchRecursive(ctx, depth+1, next, points); err != nil {
			return err
		}
	}
	return nil
}

func (g *GridSearch) evaluate(ctx context.Context, values map[string]float64) (Point, error) {
	p := Point{Values: values, Means: make(map[string]float64)}

	cfg := g.base.Clone()
	for _, a := range g.axes {
		Setters[a.Name](cfg, values[a.Name])
	}
	if err := cfg.Validate(); err != nil {
		g.log.Warn("skipping grid point", "values", values, "err", err)
		p.Err = err
		return p, nil
	}

	ens := experiment.NewEnsemble(cfg, g.runs, cfg.Simulation.Seed)
	ens.SetLimit(g.limit)
	ens.SetLogger(g.log)
	outcomes, err := ens.Run(ctx)
	if err != nil {
		return Point{}, err
	}

	for _, out := range outcomes {
		if out.Err != nil {
			p.Failed++
			continue
		}
		p.Runs++
		for _, name := range metrics.SummaryFields {
			v, _ := out.Summary.Get(name)
			p.Means[name] += v
		}
	}
	if p.Runs > 0 {
		for k := range p.Means {
			p.Means[k] /= float64(p.Runs)
		}
	}
	g.log.Info("grid point done", "values", values, "runs", p.Runs, "failed", p.Failed)
	return p, nil
}

// Best returns the point with the largest (or smallest) mean of field.
// Points without successful runs are ignored.
func Best(points []Point, field string, maximize bool) (Point, bool) {
	var (
		best  Point
		found bool
	)
	for _, p := range points {
		if p.Runs == 0 {
			continue
		}
		v, ok := p.Means[field]
		if !ok {
			continue
		}
		if !found || (maximize && v > best.Means[field]) || (!maximize && v < best.Means[field]) {
			best, found = p, true
		}
	}
	return best, found
}

func (p Point) String() string {
	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, p.Values[k])
	}
	return strings.Join(parts, " ")
}
