package ops

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// hadamardOperator is the n-ary elementwise product: out = a₁ ⊙ ... ⊙ aₙ.
//
// Backward pass:
//   - d/daᵢ = df ⊙ Π_{j≠i} aⱼ
//
// It has no meaning in scalar mode, where it collapses into "*".
func hadamardOperator() Operator {
	return Operator{
		Symbol:       "had",
		Fixity:       Function,
		Arity:        Variadic,
		Forward:      hadamard,
		Backward:     hadamardBackward,
		Symbolic:     hadamardSymbolic,
		ScalarUnsafe: true,
	}
}

func hadamard(operands []matrix.Matrix) (matrix.Matrix, error) {
	if len(operands) == 0 {
		return matrix.Zero, fmt.Errorf("%w: had needs at least one operand", ErrOperandCount)
	}
	out := operands[0]
	for _, v := range operands[1:] {
		var err error
		if out, err = out.Hadamard(v); err != nil {
			return matrix.Zero, err
		}
	}
	return out, nil
}

func hadamardBackward(df, _ matrix.Matrix, operands []matrix.Matrix) ([]matrix.Matrix, error) {
	grads := make([]matrix.Matrix, len(operands))
	for i := range operands {
		grad := df
		for j, v := range operands {
			if j == i {
				continue
			}
			var err error
			if grad, err = grad.Hadamard(v); err != nil {
				return nil, err
			}
		}
		grads[i] = grad
	}
	return grads, nil
}

// hadamardSymbolic replaces operand i by df: d/daᵢ = had(a₁, ..., df, ..., aₙ).
func hadamardSymbolic(_ bool, df symbolic.Term, operands []symbolic.Term) []symbolic.Term {
	terms := make([]symbolic.Term, len(operands))
	for i := range operands {
		args := make([]symbolic.Term, len(operands))
		copy(args, operands)
		args[i] = df
		terms[i] = symbolic.Named("had", args...)
	}
	return terms
}
