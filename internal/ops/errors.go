package ops

import "errors"

// Registration errors.
var (
	// ErrDuplicateOperator is returned when a symbol is registered twice.
	ErrDuplicateOperator = errors.New("ops: duplicate operator")

	// ErrIncompleteOperator is returned when an operator misses a behaviour
	// or has an arity that does not fit its fixity.
	ErrIncompleteOperator = errors.New("ops: incomplete operator")

	// ErrOperandCount is returned by built-ins called with the wrong number
	// of operands.
	ErrOperandCount = errors.New("ops: wrong operand count")
)
