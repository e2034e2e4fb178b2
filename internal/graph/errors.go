package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction. All of them are fatal: Build
// returns no graph.
var (
	// ErrUnknownOperation is returned for a symbol missing from the registry.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrUnsupportedNode is returned for a source of unknown kind.
	ErrUnsupportedNode = errors.New("unsupported node")

	// ErrRuleOnVariable is returned when a rule's content is a bare variable.
	ErrRuleOnVariable = errors.New("rule content must not be a bare variable")

	// ErrArity is returned when an operation has the wrong operand count.
	ErrArity = errors.New("wrong number of operands")

	// ErrOperandOrder is returned when an operand has not been built yet.
	ErrOperandOrder = errors.New("operand used before definition")

	// ErrScalarUnsupported is returned for scalar-unsafe operators in a
	// scalar graph.
	ErrScalarUnsupported = errors.New("operation not supported in scalar mode")
)

// NodeError wraps an error with the source that caused it.
type NodeError struct {
	Position int
	Name     string
	Err      error
}

// Error returns the error message.
func (e *NodeError) Error() string {
	return fmt.Sprintf("graph: source %d %q: %v", e.Position, e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// NewNodeError creates a NodeError.
func NewNodeError(position int, name string, err error) *NodeError {
	return &NodeError{
		Position: position,
		Name:     name,
		Err:      err,
	}
}
