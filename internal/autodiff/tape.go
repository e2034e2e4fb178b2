package autodiff

import (
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// tape holds the per-run state of every node. A new tape is created for
// each run, so replays never see state from an earlier run.
type tape struct {
	values []matrix.Matrix
	grads  []matrix.Matrix

	// received marks nodes that got at least one DIFF contribution. A
	// received node holding the zero sentinel has an unknown derivative.
	received []bool

	// symbolic accumulates BACKWARDS contributions keyed by node index.
	// Missing entries mean Empty.
	symbolic map[int]symbolic.Term
}

func newTape(n int) *tape {
	return &tape{
		values:   make([]matrix.Matrix, n),
		grads:    make([]matrix.Matrix, n),
		received: make([]bool, n),
		symbolic: make(map[int]symbolic.Term, n),
	}
}

func (t *tape) symbolicAt(i int) symbolic.Term {
	if s, ok := t.symbolic[i]; ok {
		return s
	}
	return symbolic.Empty
}

// accumulateSymbolic adds term to the symbolic derivative of node i.
func (t *tape) accumulateSymbolic(i int, term symbolic.Term) {
	t.symbolic[i] = symbolic.Add(t.symbolicAt(i), term)
}

// accumulateGrad adds grad to the numeric derivative of node i. The first
// contribution is taken as is. A zero sentinel contribution makes the
// derivative the sentinel.
func (t *tape) accumulateGrad(i int, grad matrix.Matrix) error {
	if !t.received[i] {
		t.received[i] = true
		t.grads[i] = grad
		return nil
	}
	sum, err := t.grads[i].Add(grad)
	if err != nil {
		return err
	}
	t.grads[i] = sum
	return nil
}
