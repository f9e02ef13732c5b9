package integrators

import "github.com/san-kum/befsim/internal/dynamo"

// tableau is an explicit Runge-Kutta scheme. Row s of a holds the weights of
// the earlier stages used to build stage s. errw, when present, is b minus
// the weights of the embedded lower order solution.
type tableau struct {
	c    []float64
	a    [][]float64
	b    []float64
	errw []float64
}

func (tb *tableau) stages() int { return len(tb.c) }

var eulerTableau = &tableau{
	c: []float64{0},
	a: [][]float64{{}},
	b: []float64{1},
}

var classicTableau = &tableau{
	c: []float64{0, 0.5, 0.5, 1},
	a: [][]float64{
		{},
		{0.5},
		{0, 0.5},
		{0, 0, 1},
	},
	b: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
}

// dormandPrince is the 5(4) pair. Its last stage is the derivative at the new
// state and only feeds the error estimate.
var dormandPrince = &tableau{
	c: []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	a: [][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	b:    []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
	errw: []float64{71.0 / 57600, 0, -71.0 / 16695, 71.0 / 1920, -17253.0 / 339200, 22.0 / 525, -1.0 / 40},
}

// explicitRK runs a tableau with per-instance stage buffers. Stage values are
// copied out of the system's return value, so systems may reuse their output
// buffer between calls.
type explicitRK struct {
	tab *tableau
	k   []dynamo.State
	arg dynamo.State
}

func newExplicitRK(tb *tableau) explicitRK {
	return explicitRK{tab: tb}
}

func (r *explicitRK) ensure(n int) {
	if r.k != nil && len(r.arg) == n {
		return
	}
	r.k = make([]dynamo.State, r.tab.stages())
	for s := range r.k {
		r.k[s] = make(dynamo.State, n)
	}
	r.arg = make(dynamo.State, n)
}

// step fills the stage buffers and returns the new state in a fresh slice.
func (r *explicitRK) step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensure(n)
	tb := r.tab

	copy(r.k[0], dyn.Derive(x, t))

	for s := 1; s < tb.stages(); s++ {
		for i := 0; i < n; i++ {
			acc := 0.0
			for j, w := range tb.a[s] {
				acc += w * r.k[j][i]
			}
			r.arg[i] = x[i] + dt*acc
		}
		copy(r.k[s], dyn.Derive(r.arg, t+tb.c[s]*dt))
	}

	next := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for s, w := range tb.b {
			acc += w * r.k[s][i]
		}
		next[i] = x[i] + dt*acc
	}
	return next
}

// localError is the embedded error estimate of the last step for component i.
func (r *explicitRK) localError(i int, dt float64) float64 {
	acc := 0.0
	for s, w := range r.tab.errw {
		acc += w * r.k[s][i]
	}
	return dt * acc
}
