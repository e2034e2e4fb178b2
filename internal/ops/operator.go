// Package ops defines the operators that may appear in a computation graph.
//
// Each operator is one record holding every behaviour the engine needs:
//   - display: symbol and fixity (infix, prefix, postfix, function call)
//   - forward: operand values -> node value
//   - backward: output derivative -> one derivative contribution per operand
//   - symbolic: symbolic output derivative -> one symbolic term per operand
//
// Because the behaviours live in a single Operator value, a symbol known to
// the parser is always known to the forward, backward and symbolic passes.
//
// Built-in operators:
//   - "+": binary addition (d/da = df, d/db = df)
//   - "add": n-ary addition (every operand receives df)
//   - "had": n-ary Hadamard product (operand i receives df ⊙ Π_{j≠i} v_j)
//   - "tanh": hyperbolic tangent (dx = df ⊙ (1 - tanh²(x)))
//   - "*": matrix product (dA = df·Bᵀ, dB = Aᵀ·df)
package ops

import (
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// Fixity controls how an operator application is displayed.
type Fixity int

// Fixity values.
const (
	Infix Fixity = iota
	Prefix
	Postfix
	Function
)

func (f Fixity) String() string {
	switch f {
	case Infix:
		return "infix"
	case Prefix:
		return "prefix"
	case Postfix:
		return "postfix"
	case Function:
		return "function"
	default:
		return "unknown"
	}
}

// Variadic is the Arity of operators accepting one or more operands.
const Variadic = -1

// ForwardFunc computes a node value from its operand values.
type ForwardFunc func(operands []matrix.Matrix) (matrix.Matrix, error)

// BackwardFunc computes the derivative contribution for every operand, given
// the accumulated output derivative df and the node's own value out.
type BackwardFunc func(df, out matrix.Matrix, operands []matrix.Matrix) ([]matrix.Matrix, error)

// SymbolicFunc returns one symbolic derivative per operand. Operands are
// placeholders for the operand nodes. In scalar mode every value is 1×1 and
// transpose markers are omitted.
type SymbolicFunc func(scalar bool, df symbolic.Term, operands []symbolic.Term) []symbolic.Term

// Operator describes one operator symbol.
type Operator struct {
	Symbol string
	Fixity Fixity

	// Precedence orders infix operators for display; higher binds tighter.
	Precedence int

	// Arity is the exact operand count, or Variadic.
	Arity int

	Forward  ForwardFunc
	Backward BackwardFunc
	Symbolic SymbolicFunc

	// ScalarUnsafe marks operators that have no meaning once every value is
	// forced to 1×1.
	ScalarUnsafe bool
}

// AcceptsArity reports whether n operands are valid for the operator.
func (op *Operator) AcceptsArity(n int) bool {
	if op.Arity == Variadic {
		return n >= 1
	}
	return n == op.Arity
}
