package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for network, parameter and simulation operations.
var (
	// ErrValidation indicates a malformed food web (shape, values or diet cycles).
	ErrValidation = errors.New("dynamo: invalid food web")

	// ErrGeneration indicates a random network could not meet its target.
	ErrGeneration = errors.New("dynamo: network generation failed")

	// ErrParameter indicates a missing, mismatched or unknown parameter.
	ErrParameter = errors.New("dynamo: invalid parameter")

	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// ValidationError describes why a food web matrix was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "dynamo: invalid food web: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalidf builds a ValidationError from a format string.
func Invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// GenerationError is returned when the niche model exhausts its retry budget.
type GenerationError struct {
	Attempts int
	Target   float64
	Best     float64
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("dynamo: network generation failed after %d attempts (target connectance %.4f, closest %.4f)",
		e.Attempts, e.Target, e.Best)
}

func (e *GenerationError) Unwrap() error { return ErrGeneration }

// ParameterError names the offending field.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("dynamo: invalid parameter %q: %s", e.Field, e.Reason)
}

func (e *ParameterError) Unwrap() error { return ErrParameter }

// Paramf builds a ParameterError for field from a format string.
func Paramf(field, format string, args ...any) error {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SimulationError places an error at a checkpoint of a run. State is the
// biomass at that point.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("checkpoint %d (t=%g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
