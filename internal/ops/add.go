package ops

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// plusOperator is binary addition: out = a + b.
//
// Backward pass:
//   - d(a+b)/da = df
//   - d(a+b)/db = df
func plusOperator() Operator {
	return Operator{
		Symbol:     "+",
		Fixity:     Infix,
		Precedence: 1,
		Arity:      2,
		Forward:    sum,
		Backward:   fanOut,
		Symbolic:   symbolicFanOut,
	}
}

// addOperator is n-ary addition: out = a₁ + a₂ + ... + aₙ. Every operand
// receives df.
func addOperator() Operator {
	return Operator{
		Symbol:   "add",
		Fixity:   Function,
		Arity:    Variadic,
		Forward:  sum,
		Backward: fanOut,
		Symbolic: symbolicFanOut,
	}
}

func sum(operands []matrix.Matrix) (matrix.Matrix, error) {
	if len(operands) == 0 {
		return matrix.Zero, fmt.Errorf("%w: add needs at least one operand", ErrOperandCount)
	}
	out := operands[0]
	for _, v := range operands[1:] {
		var err error
		if out, err = out.Add(v); err != nil {
			return matrix.Zero, err
		}
	}
	return out, nil
}

func fanOut(df, _ matrix.Matrix, operands []matrix.Matrix) ([]matrix.Matrix, error) {
	grads := make([]matrix.Matrix, len(operands))
	for i := range grads {
		grads[i] = df
	}
	return grads, nil
}

func symbolicFanOut(_ bool, df symbolic.Term, operands []symbolic.Term) []symbolic.Term {
	terms := make([]symbolic.Term, len(operands))
	for i := range terms {
		terms[i] = df
	}
	return terms
}
