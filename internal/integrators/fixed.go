package integrators

import "github.com/san-kum/befsim/internal/dynamo"

// Euler is the first order forward method.
type Euler struct{ rk explicitRK }

func NewEuler() *Euler {
	return &Euler{rk: newExplicitRK(eulerTableau)}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return e.rk.step(dyn, x, t, dt)
}

// RK4 is the classic fourth order Runge-Kutta method.
type RK4 struct{ rk explicitRK }

func NewRK4() *RK4 {
	return &RK4{rk: newExplicitRK(classicTableau)}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return r.rk.step(dyn, x, t, dt)
}
