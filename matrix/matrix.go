// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides the immutable dense matrices used as graph values.
//
// The zero value of Matrix is the zero sentinel, meaning "no value yet". It
// propagates through every operation and is distinct from a matrix of zeros.
package matrix

import "github.com/born-ml/gradgraph/internal/matrix"

// Matrix is an immutable dense matrix of float64 values.
type Matrix = matrix.Matrix

// Shape holds matrix dimensions.
type Shape = matrix.Shape

// ShapeError reports incompatible operand shapes.
type ShapeError = matrix.ShapeError

// Zero is the zero sentinel.
var Zero = matrix.Zero

// Errors.
var (
	ErrShapeMismatch = matrix.ErrShapeMismatch
	ErrEmpty         = matrix.ErrEmpty
	ErrRagged        = matrix.ErrRagged
)

// New creates a matrix from row-major data.
func New(rows [][]float64) (Matrix, error) {
	return matrix.New(rows)
}

// MustNew is like New but panics on invalid data.
func MustNew(rows [][]float64) Matrix {
	return matrix.MustNew(rows)
}

// Filled creates a rows×cols matrix with every entry set to v.
func Filled(rows, cols int, v float64) (Matrix, error) {
	return matrix.Filled(rows, cols, v)
}

// Scalar creates a 1×1 matrix.
func Scalar(v float64) Matrix {
	return matrix.Scalar(v)
}
