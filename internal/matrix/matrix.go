// Package matrix implements the dense 2-D matrix algebra used by the
// computation graph.
//
// A Matrix is an immutable value: every operation returns a new Matrix and
// never modifies its operands. Storage and kernels are provided by gonum's
// mat.Dense.
//
// The zero value of Matrix is the zero sentinel (see Zero). It stands for
// "no value yet" and propagates through every operation: any operation with
// a sentinel operand returns the sentinel without looking at the other
// operand. It is distinct from a matrix whose entries are all 0.
package matrix

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Matrix is an immutable dense matrix of float64 values.
type Matrix struct {
	dense *mat.Dense // nil for the zero sentinel
}

// Zero is the zero sentinel. It is also the zero value of Matrix.
var Zero = Matrix{}

// New creates a matrix from row-major data. The data is copied.
func New(rows [][]float64) (Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Zero, ErrEmpty
	}

	cols := len(rows[0])
	flat := make([]float64, 0, len(rows)*cols)
	for _, row := range rows {
		if len(row) != cols {
			return Zero, ErrRagged
		}
		flat = append(flat, row...)
	}

	return Matrix{dense: mat.NewDense(len(rows), cols, flat)}, nil
}

// MustNew is like New but panics on invalid data.
func MustNew(rows [][]float64) Matrix {
	m, err := New(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// Filled creates a rows×cols matrix with every entry set to v.
func Filled(rows, cols int, v float64) (Matrix, error) {
	shape := Shape{Rows: rows, Cols: cols}
	if err := shape.Validate(); err != nil {
		return Zero, err
	}

	flat := make([]float64, rows*cols)
	for i := range flat {
		flat[i] = v
	}
	return Matrix{dense: mat.NewDense(rows, cols, flat)}, nil
}

// Scalar creates a 1×1 matrix.
func Scalar(v float64) Matrix {
	return Matrix{dense: mat.NewDense(1, 1, []float64{v})}
}

// IsZero reports whether m is the zero sentinel.
func (m Matrix) IsZero() bool {
	return m.dense == nil
}

// Shape returns the matrix dimensions. The zero sentinel reports (1, 0).
func (m Matrix) Shape() Shape {
	if m.IsZero() {
		return zeroShape
	}
	r, c := m.dense.Dims()
	return Shape{Rows: r, Cols: c}
}

// At returns the element at (row, col). It panics on the zero sentinel or
// out of range indices.
func (m Matrix) At(row, col int) float64 {
	if m.IsZero() {
		panic("matrix: At on zero sentinel")
	}
	return m.dense.At(row, col)
}

// Rows returns a copy of the data as row slices. The sentinel returns nil.
func (m Matrix) Rows() [][]float64 {
	if m.IsZero() {
		return nil
	}
	shape := m.Shape()
	out := make([][]float64, shape.Rows)
	for i := range out {
		out[i] = append([]float64(nil), m.dense.RawRowView(i)...)
	}
	return out
}

// Map applies f to every element, preserving the shape.
func (m Matrix) Map(f func(row, col int, v float64) float64) Matrix {
	if m.IsZero() {
		return Zero
	}
	var out mat.Dense
	out.Apply(f, m.dense)
	return Matrix{dense: &out}
}

// Add returns the elementwise sum. Both operands must have the same shape.
func (m Matrix) Add(other Matrix) (Matrix, error) {
	if m.IsZero() || other.IsZero() {
		return Zero, nil
	}
	if m.Shape() != other.Shape() {
		return Zero, shapeError("add", m.Shape(), other.Shape())
	}
	var out mat.Dense
	out.Add(m.dense, other.dense)
	return Matrix{dense: &out}, nil
}

// Hadamard returns the elementwise product. Both operands must have the same
// shape.
func (m Matrix) Hadamard(other Matrix) (Matrix, error) {
	if m.IsZero() || other.IsZero() {
		return Zero, nil
	}
	if m.Shape() != other.Shape() {
		return Zero, shapeError("hadamard", m.Shape(), other.Shape())
	}
	var out mat.Dense
	out.MulElem(m.dense, other.dense)
	return Matrix{dense: &out}, nil
}

// MatMul returns the matrix product m·other. It requires m.Cols == other.Rows.
func (m Matrix) MatMul(other Matrix) (Matrix, error) {
	if m.IsZero() || other.IsZero() {
		return Zero, nil
	}
	left, right := m.Shape(), other.Shape()
	if left.Cols != right.Rows {
		return Zero, shapeError("matmul", left, right)
	}
	var out mat.Dense
	out.Mul(m.dense, other.dense)
	return Matrix{dense: &out}, nil
}

// Transpose returns the transposed matrix.
func (m Matrix) Transpose() Matrix {
	if m.IsZero() {
		return Zero
	}
	return Matrix{dense: mat.DenseCopyOf(m.dense.T())}
}

// Equal reports whether both matrices have the same shape and elements.
// Two sentinels are equal; a sentinel never equals a real matrix.
func (m Matrix) Equal(other Matrix) bool {
	if m.IsZero() || other.IsZero() {
		return m.IsZero() && other.IsZero()
	}
	return mat.Equal(m.dense, other.dense)
}

// EqualApprox is like Equal with an absolute tolerance per element.
func (m Matrix) EqualApprox(other Matrix, tol float64) bool {
	if m.IsZero() || other.IsZero() {
		return m.IsZero() && other.IsZero()
	}
	return mat.EqualApprox(m.dense, other.dense, tol)
}

// String renders rows as space-joined values separated by newlines. Integral
// values are printed as is, other values with three decimals. The zero
// sentinel renders as an empty string.
func (m Matrix) String() string {
	if m.IsZero() {
		return ""
	}
	shape := m.Shape()
	lines := make([]string, shape.Rows)
	for i := range lines {
		row := m.dense.RawRowView(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatValue(v)
		}
		lines[i] = strings.Join(cells, " ")
	}
	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	if v == 0 {
		return "0"
	}
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
