package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// tanhOperator is the elementwise hyperbolic tangent.
//
// For out = tanh(x):
// d(tanh(x))/dx = 1 - tanh²(x)
//
// The node value is tanh(x) already, so dx = df ⊙ (1 - out²).
func tanhOperator() Operator {
	return Operator{
		Symbol:   "tanh",
		Fixity:   Function,
		Arity:    1,
		Forward:  tanh,
		Backward: tanhBackward,
		Symbolic: tanhSymbolic,
	}
}

func tanh(operands []matrix.Matrix) (matrix.Matrix, error) {
	if len(operands) != 1 {
		return matrix.Zero, fmt.Errorf("%w: tanh takes 1 operand, got %d", ErrOperandCount, len(operands))
	}
	return operands[0].Map(func(_, _ int, v float64) float64 {
		return math.Tanh(v)
	}), nil
}

func tanhBackward(df, out matrix.Matrix, _ []matrix.Matrix) ([]matrix.Matrix, error) {
	local := out.Map(func(_, _ int, v float64) float64 {
		return 1 - v*v
	})
	grad, err := df.Hadamard(local)
	if err != nil {
		return nil, err
	}
	return []matrix.Matrix{grad}, nil
}

// tanhSymbolic yields df / (1 - x * x) with x standing for the operand.
func tanhSymbolic(_ bool, df symbolic.Term, operands []symbolic.Term) []symbolic.Term {
	x := operands[0]
	return []symbolic.Term{
		symbolic.Div(df, symbolic.Sub(symbolic.One, symbolic.Mul(x, x))),
	}
}
