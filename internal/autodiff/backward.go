package autodiff

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// backwards propagates symbolic derivatives. Every terminal node is seeded
// with Δ<label>; nodes are then visited in descending index order and each
// operator's symbolic rule is applied with the operand placeholders.
func (r *run) backwards() bool {
	for _, t := range r.graph.Terminals() {
		r.tape.symbolic[t] = symbolic.Var("Δ" + r.graph.Label(t))
		if !r.emit(r.nodeUpdate(t)) {
			return false
		}
	}

	scalar := r.graph.Scalar()
	for i := r.graph.Len() - 1; i >= 0; i-- {
		op := r.graph.Operator(i)
		if op == nil {
			continue
		}

		children := r.graph.Node(i).Children
		placeholders := make([]symbolic.Term, len(children))
		for k, c := range children {
			placeholders[k] = r.graph.Placeholder(c)
		}

		terms := op.Symbolic(scalar, r.tape.symbolicAt(i), placeholders)
		for k, c := range children {
			r.tape.accumulateSymbolic(c, terms[k])
			if !r.emit(EdgeAnnotation{From: i, To: c, Label: symbolic.Format(terms[k])}) {
				return false
			}
			if !r.emit(r.nodeUpdate(c)) {
				return false
			}
		}
	}
	return true
}

// diff propagates numeric derivatives in descending index order. A node
// without an accumulated derivative takes the caller's seed; without a seed
// its propagation is skipped. So is the propagation of a node whose
// accumulated derivative is unknown.
func (r *run) diff() bool {
	for i := r.graph.Len() - 1; i >= 0; i-- {
		if r.tape.received[i] && r.tape.grads[i].IsZero() {
			err := fmt.Errorf("%w for %s, a contribution is unknown", ErrNoDerivative, r.graph.Label(i))
			if !r.fail(i, err) {
				return false
			}
			continue
		}
		if r.tape.grads[i].IsZero() {
			seed, err := r.seedFor(i)
			if err != nil {
				if !r.fail(i, err) {
					return false
				}
				continue
			}
			r.tape.grads[i] = seed
		}

		if !r.emit(r.nodeUpdate(i)) {
			return false
		}

		if r.graph.Node(i).Kind == graph.KindOperation {
			if !r.propagate(i) {
				return false
			}
		}
	}
	return true
}

func (r *run) seedFor(i int) (matrix.Matrix, error) {
	seed, ok := r.seed(i)
	if !ok || seed.IsZero() {
		return matrix.Zero, fmt.Errorf("%w for %s", ErrNoDerivative, r.graph.Label(i))
	}
	if r.graph.Scalar() && !seed.Shape().IsScalar() {
		return matrix.Zero, fmt.Errorf("derivative for %s: %w, got %s", r.graph.Label(i), ErrNotScalar, seed.Shape())
	}
	return seed, nil
}

// propagate applies the backward rule of node i and accumulates the
// contributions into its children.
func (r *run) propagate(i int) bool {
	children := r.graph.Node(i).Children
	operands := make([]matrix.Matrix, len(children))
	for k, c := range children {
		operands[k] = r.tape.values[c]
	}

	grads, err := r.graph.Operator(i).Backward(r.tape.grads[i], r.tape.values[i], operands)
	if err != nil {
		return r.fail(i, err)
	}

	for k, c := range children {
		if err := r.tape.accumulateGrad(c, grads[k]); err != nil {
			if !r.fail(c, err) {
				return false
			}
			continue
		}
		if !r.emit(r.nodeUpdate(c)) {
			return false
		}
	}
	return true
}
