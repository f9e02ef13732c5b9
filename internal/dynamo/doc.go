// Package dynamo provides the core primitives shared by the food web
// simulator.
//
// The package defines the fundamental interfaces and types for numerical
// integration of biomass dynamics:
//
//   - [State]: biomass vector, one entry per species
//   - [System]: interface for ODE systems (dB/dt = f(B, t))
//   - [Integrator]: numerical step interface
//   - [AdaptiveIntegrator]: step interface with error control
//
// It also carries the error taxonomy used across the module:
// [ValidationError], [GenerationError] and [ParameterError] each unwrap to a
// package sentinel so callers can test with errors.Is.
//
//	if errors.Is(err, dynamo.ErrParameter) {
//	    var pe *dynamo.ParameterError
//	    errors.As(err, &pe)
//	    fmt.Println("bad field:", pe.Field)
//	}
package dynamo
