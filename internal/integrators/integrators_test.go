package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/befsim/internal/dynamo"
)

// logistic is dB/dt = r B (1 - B/K), which has a closed form solution.
type logistic struct {
	r, k float64
}

func (l *logistic) StateDim() int { return 1 }

func (l *logistic) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{l.r * x[0] * (1 - x[0]/l.k)}
}

func (l *logistic) exact(b0, t float64) float64 {
	return l.k / (1 + (l.k-b0)/b0*math.Exp(-l.r*t))
}

// decay reuses its output buffer, like the food web system does.
type decay struct {
	out dynamo.State
}

func (d *decay) StateDim() int { return 2 }

func (d *decay) Derive(x dynamo.State, t float64) dynamo.State {
	if d.out == nil {
		d.out = make(dynamo.State, 2)
	}
	d.out[0] = -x[0]
	d.out[1] = -2 * x[1]
	return d.out
}

func integrate(integ dynamo.Integrator, dyn dynamo.System, x dynamo.State, dt float64, steps int) dynamo.State {
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}
	return x
}

func TestLogisticAccuracy(t *testing.T) {
	dyn := &logistic{r: 1.0, k: 1.0}
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 1e-2},
		{"rk4", NewRK4(), 1e-8},
		{"rk45", NewRK45(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := integrate(tt.integ, dyn, dynamo.State{0.1}, 0.01, 500)
			expected := dyn.exact(0.1, 5.0)
			if math.Abs(x[0]-expected) > tt.tol {
				t.Errorf("got %.10f, expected %.10f", x[0], expected)
			}
		})
	}
}

func TestBufferReuse(t *testing.T) {
	dyn := &decay{}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			x := integrate(MustGet(name), dyn, dynamo.State{1, 1}, 0.001, 1000)
			if math.Abs(x[0]-math.Exp(-1)) > 1e-3 {
				t.Errorf("x0 = %.6f, expected %.6f", x[0], math.Exp(-1))
			}
			if math.Abs(x[1]-math.Exp(-2)) > 1e-3 {
				t.Errorf("x1 = %.6f, expected %.6f", x[1], math.Exp(-2))
			}
		})
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45()
	dyn := &logistic{r: 1.0, k: 1.0}
	tol := dynamo.Tolerance{Rel: 1e-6, Abs: 1e-8}

	x, newDt, ok := integrator.StepAdaptive(dyn, dynamo.State{0.5}, 0, 0.01, tol)
	if !ok {
		t.Error("StepAdaptive rejected a smooth step")
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}

	_, retry, ok := integrator.StepAdaptive(dyn, dynamo.State{0.5}, 0, 5, tol)
	if ok {
		t.Error("StepAdaptive accepted a step far beyond tolerance")
	}
	if retry >= 5 {
		t.Errorf("rejected step suggested dt %f, want below 5", retry)
	}
}

// fastDecay is dB/dt = -rate B.
type fastDecay struct{ rate float64 }

func (f *fastDecay) StateDim() int { return 1 }

func (f *fastDecay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-f.rate * x[0]}
}

func TestRK45_AbsoluteFloor(t *testing.T) {
	dyn := &fastDecay{rate: 20}
	x := dynamo.State{1e-9}

	if _, _, ok := NewRK45().StepAdaptive(dyn, x, 0, 0.1, dynamo.Tolerance{Rel: 1e-6}); ok {
		t.Error("purely relative tolerance accepted a step on a vanishing species")
	}
	if _, _, ok := NewRK45().StepAdaptive(dyn, x, 0, 0.1, dynamo.Tolerance{Rel: 1e-6, Abs: 1e-8}); !ok {
		t.Error("step rejected although its error is below the absolute floor")
	}
}

func TestZeroDimensionalState(t *testing.T) {
	for _, name := range Names() {
		x := MustGet(name).Step(&empty{}, dynamo.State{}, 0, 0.1)
		if len(x) != 0 {
			t.Errorf("%s: got %v", name, x)
		}
	}
}

type empty struct{}

func (empty) StateDim() int                                 { return 0 }
func (empty) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{} }

func TestRegistry(t *testing.T) {
	if _, err := Get("verlet"); !errors.Is(err, dynamo.ErrParameter) {
		t.Errorf("expected parameter error for unknown integrator, got %v", err)
	}
	if len(Names()) != 3 {
		t.Errorf("expected 3 integrators, got %v", Names())
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	dyn := &logistic{r: 1, k: 1}
	x := dynamo.State{0.1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	dyn := &logistic{r: 1, k: 1}
	x := dynamo.State{0.1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}
