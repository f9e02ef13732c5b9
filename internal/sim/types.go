package sim

import (
	"github.com/san-kum/befsim/internal/params"
	"github.com/san-kum/befsim/internal/rewire"
)

// Status is how a run ended.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCollapsed Status = "collapsed"
	StatusDiverged  Status = "diverged"
)

// Metric accumulates a scalar over the recorded checkpoints of a run.
type Metric interface {
	Name() string
	Observe(b []float64, t float64)
	Value() float64
	Reset()
}

// Observer sees every recorded checkpoint. k counts from zero up to total-1.
type Observer interface {
	OnCheckpoint(k, total int, t float64, b []float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(k, total int, t float64, b []float64)

func (f ObserverFunc) OnCheckpoint(k, total int, t float64, b []float64) { f(k, total, t, b) }

type Result struct {
	Times   []float64
	Biomass [][]float64
	Final   *params.Network
	Status  Status
	// Cause explains a diverged run.
	Cause       error
	Extinctions []rewire.Extinction
	Rewirings   int
	Metrics     map[string]float64
}

// FinalBiomass is the last recorded snapshot, or nil for an empty result.
func (r *Result) FinalBiomass() []float64 {
	if len(r.Biomass) == 0 {
		return nil
	}
	return r.Biomass[len(r.Biomass)-1]
}

// Series returns the trajectory of species i.
func (r *Result) Series(i int) []float64 {
	out := make([]float64, len(r.Biomass))
	for k, row := range r.Biomass {
		out[k] = row[i]
	}
	return out
}
