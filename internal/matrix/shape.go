package matrix

import "fmt"

// Shape represents the dimensions of a matrix.
type Shape struct {
	Rows int
	Cols int
}

// zeroShape is the shape reported by the zero sentinel.
var zeroShape = Shape{Rows: 1, Cols: 0}

// NumElements returns the total number of elements.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks that both dimensions are positive.
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("invalid shape %s (dimensions must be > 0)", s)
	}
	return nil
}

// Transposed returns the shape with rows and columns swapped.
func (s Shape) Transposed() Shape {
	return Shape{Rows: s.Cols, Cols: s.Rows}
}

// IsScalar reports whether the shape is 1×1.
func (s Shape) IsScalar() bool {
	return s.Rows == 1 && s.Cols == 1
}

// String renders the shape as [rows, cols].
func (s Shape) String() string {
	return fmt.Sprintf("[%d, %d]", s.Rows, s.Cols)
}
