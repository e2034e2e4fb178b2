package autodiff

import (
	"errors"
	"fmt"
)

// Recoverable errors. They are reported as ErrorMessage events and the run
// continues.
var (
	// ErrUnassigned is reported for a variable without an input value.
	ErrUnassigned = errors.New("not assigned, interpreted as zero")

	// ErrNoDerivative is reported for a node with neither an accumulated
	// derivative nor a seed.
	ErrNoDerivative = errors.New("no derivative provided")

	// ErrNotScalar is reported for a non-1×1 input in scalar mode.
	ErrNotScalar = errors.New("scalar mode requires 1×1 values")
)

// AlgorithmError is a recoverable error at a node.
type AlgorithmError struct {
	Index int
	Name  string
	Err   error
}

// Error returns the error message.
func (e *AlgorithmError) Error() string {
	return fmt.Sprintf("autodiff: node %d %q: %v", e.Index, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *AlgorithmError) Unwrap() error {
	return e.Err
}
