package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors for the matrix package.
var (
	// ErrShapeMismatch is returned when operand shapes are incompatible.
	ErrShapeMismatch = errors.New("matrix: shape mismatch")

	// ErrEmpty is returned when constructing a matrix without rows or columns.
	ErrEmpty = errors.New("matrix: empty data")

	// ErrRagged is returned when rows have different lengths.
	ErrRagged = errors.New("matrix: ragged rows")
)

// ShapeError describes a binary operation rejected because of operand shapes.
type ShapeError struct {
	Op    string
	Left  Shape
	Right Shape
}

// Error returns the error message.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("matrix: invalid shapes for %s: %s and %s", e.Op, e.Left, e.Right)
}

// Unwrap returns ErrShapeMismatch so callers can match with errors.Is.
func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeError(op string, left, right Shape) error {
	return &ShapeError{Op: op, Left: left, Right: right}
}
