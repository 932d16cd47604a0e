package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a ball whose kinematic state became NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidStep indicates a negative or non-finite frame time.
	ErrInvalidStep = errors.New("dynamo: invalid frame time")

	// ErrStepInProgress indicates a collection mutation attempted mid-step.
	ErrStepInProgress = errors.New("dynamo: simulation step in progress")

	// ErrNoCurrent indicates Remove was called without a current element.
	ErrNoCurrent = errors.New("dynamo: remove without current element")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Frame   int
	Time    float64
	Ball    int
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.1fms) ball %d: %v", e.Frame, e.Time, e.Ball, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
