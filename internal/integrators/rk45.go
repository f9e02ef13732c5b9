package integrators

import (
	"math"

	"github.com/san-kum/befsim/internal/dynamo"
)

// RK45 is the Dormand-Prince 5(4) pair. Step takes a plain fifth order step;
// StepAdaptive also checks the embedded error against a tolerance.
type RK45 struct {
	rk       explicitRK
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		rk:       newExplicitRK(dormandPrince),
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.rk.step(dyn, x, t, dt)
}

// StepAdaptive takes one step and reports whether its error norm is within
// tol. Component i may err by tol.Abs + tol.Rel*max(|x_i|, |next_i|); the
// absolute part keeps species near the extinction threshold from forcing
// tiny steps. The proposed state is returned even when rejected.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, tol dynamo.Tolerance) (dynamo.State, float64, bool) {
	next := r.rk.step(dyn, x, t, dt)

	norm := r.errorNorm(x, next, dt, tol)
	accepted := norm <= 1

	var factor float64
	switch {
	case norm == 0:
		factor = r.maxScale
	case math.IsInf(norm, 1) || math.IsNaN(norm):
		factor = r.minScale
	default:
		factor = r.safety * math.Pow(norm, -0.2)
		factor = math.Min(r.maxScale, math.Max(r.minScale, factor))
	}
	if !accepted {
		factor = math.Min(factor, 1)
	}
	return next, dt * factor, accepted
}

// errorNorm is the root mean square of the scaled local errors.
func (r *RK45) errorNorm(x, next dynamo.State, dt float64, tol dynamo.Tolerance) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		e := r.rk.localError(i, dt)
		if e == 0 {
			continue
		}
		sc := tol.Abs + tol.Rel*math.Max(math.Abs(x[i]), math.Abs(next[i]))
		if !(sc > 0) {
			return math.Inf(1)
		}
		sum += (e / sc) * (e / sc)
	}
	return math.Sqrt(sum / float64(n))
}
