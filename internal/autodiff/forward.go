package autodiff

import (
	"fmt"

	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
)

// materialize reports the structure: each node followed by its outgoing edges,
// then every rule.
func (r *run) materialize() bool {
	for i := range r.graph.Len() {
		if !r.emit(r.nodeUpdate(i)) {
			return false
		}
		for _, child := range r.graph.Node(i).Children {
			if !r.emit(EdgeAnnotation{From: i, To: child}) {
				return false
			}
		}
	}

	for _, rule := range r.graph.Rules() {
		if !r.emit(RuleGrouping{Name: rule.Name, Index: rule.Index, Members: rule.Members}) {
			return false
		}
	}
	return true
}

// calc computes values in ascending index order. Operands always precede
// their users, so every operand value is final when it is read.
func (r *run) calc() bool {
	for i := range r.graph.Len() {
		n := r.graph.Node(i)

		var err error
		if n.Kind == graph.KindVariable {
			r.tape.values[i], err = r.input(n.Name)
		} else {
			r.tape.values[i], err = r.forward(i, n.Children)
		}
		if err != nil && !r.fail(i, err) {
			return false
		}

		if !r.emit(r.nodeUpdate(i)) {
			return false
		}
	}
	return true
}

func (r *run) input(name string) (matrix.Matrix, error) {
	v, ok := r.alg.inputs[name]
	if !ok || v.IsZero() {
		return matrix.Zero, fmt.Errorf("variable [%s] is %w", name, ErrUnassigned)
	}
	if r.graph.Scalar() && !v.Shape().IsScalar() {
		return matrix.Zero, fmt.Errorf("variable [%s]: %w, got %s", name, ErrNotScalar, v.Shape())
	}
	return v, nil
}

func (r *run) forward(i int, children []int) (matrix.Matrix, error) {
	operands := make([]matrix.Matrix, len(children))
	for k, c := range children {
		operands[k] = r.tape.values[c]
	}
	v, err := r.graph.Operator(i).Forward(operands)
	if err != nil {
		return matrix.Zero, err
	}
	return v, nil
}
