package dynamo

import "math"

// State is a biomass vector, one entry per species.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

// ClipNegative sets every negative entry to zero in place.
func (s State) ClipNegative() {
	for i, v := range s {
		if v < 0 {
			s[i] = 0
		}
	}
}

// System is an autonomous-in-structure ODE dB/dt = f(B, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Tolerance bounds the local error of an adaptive step: component i may err
// by Abs + Rel*|x_i|.
type Tolerance struct {
	Rel float64
	Abs float64
}

type AdaptiveIntegrator interface {
	Integrator
	// StepAdaptive proposes a step of size dt, a size for the next attempt,
	// and whether the proposal met tol.
	StepAdaptive(dyn System, x State, t, dt float64, tol Tolerance) (State, float64, bool)
}

type Config struct {
	MaxDt     float64
	MinDt     float64
	Tolerance float64
	// AbsTolerance is the absolute error floor for adaptive stepping.
	AbsTolerance float64
	Adaptive     bool
}

func DefaultConfig() Config {
	return Config{
		MaxDt:        0.01,
		MinDt:        1e-8,
		Tolerance:    1e-6,
		AbsTolerance: 1e-8,
		Adaptive:     false,
	}
}

// Tol is the adaptive error tolerance of c.
func (c Config) Tol() Tolerance {
	return Tolerance{Rel: c.Tolerance, Abs: c.AbsTolerance}
}
