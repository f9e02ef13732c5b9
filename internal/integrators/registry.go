package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/befsim/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

// Get returns a fresh integrator by name. Integrators keep scratch buffers,
// so each run needs its own instance.
func Get(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, dynamo.Paramf("integrator", "unknown integrator %q (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MustGet is Get for names known at compile time.
func MustGet(name string) dynamo.Integrator {
	integ, err := Get(name)
	if err != nil {
		panic(fmt.Sprintf("integrators: %v", err))
	}
	return integ
}
