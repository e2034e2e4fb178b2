package ops

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// matMulOperator is the matrix product: out = A·B.
//
// Backward pass:
//   - d(A·B)/dA = df·Bᵀ
//   - d(A·B)/dB = Aᵀ·df
func matMulOperator() Operator {
	return Operator{
		Symbol:     "*",
		Fixity:     Infix,
		Precedence: 2,
		Arity:      2,
		Forward:    matMul,
		Backward:   matMulBackward,
		Symbolic:   matMulSymbolic,
	}
}

func matMul(operands []matrix.Matrix) (matrix.Matrix, error) {
	if len(operands) != 2 {
		return matrix.Zero, fmt.Errorf("%w: * takes 2 operands, got %d", ErrOperandCount, len(operands))
	}
	return operands[0].MatMul(operands[1])
}

func matMulBackward(df, _ matrix.Matrix, operands []matrix.Matrix) ([]matrix.Matrix, error) {
	a, b := operands[0], operands[1]

	gradA, err := df.MatMul(b.Transpose())
	if err != nil {
		return nil, err
	}
	gradB, err := a.Transpose().MatMul(df)
	if err != nil {
		return nil, err
	}
	return []matrix.Matrix{gradA, gradB}, nil
}

func matMulSymbolic(scalar bool, df symbolic.Term, operands []symbolic.Term) []symbolic.Term {
	a, b := operands[0], operands[1]
	if scalar {
		return []symbolic.Term{symbolic.Mul(df, b), symbolic.Mul(a, df)}
	}
	return []symbolic.Term{
		symbolic.Mul(df, symbolic.Transpose(b)),
		symbolic.Mul(symbolic.Transpose(a), df),
	}
}
