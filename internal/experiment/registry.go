package experiment

import (
	"sort"

	"github.com/san-kum/befsim/internal/dynamo"
	"github.com/san-kum/befsim/internal/metrics"
	"github.com/san-kum/befsim/internal/sim"
)

var DefaultMetrics = []string{"richness", "mean_biomass"}

// Registry maps metric names to constructors taking the extinction
// threshold.
type Registry struct {
	metrics map[string]func(threshold float64) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(float64) sim.Metric),
	}

	r.metrics["richness"] = func(threshold float64) sim.Metric { return metrics.NewRichness(threshold) }
	r.metrics["mean_biomass"] = func(float64) sim.Metric { return metrics.NewMeanBiomass() }
	r.metrics["min_biomass"] = func(float64) sim.Metric { return metrics.NewMinBiomass() }

	return r
}

func (r *Registry) GetMetric(name string, threshold float64) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, dynamo.Paramf("metrics", "unknown metric %q (available: %v)", name, r.ListMetrics())
	}
	return fn(threshold), nil
}

func (r *Registry) Metrics(names []string, threshold float64) ([]sim.Metric, error) {
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, threshold)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
