package autodiff

import (
	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
)

// run is the state of one pass over Steps.
type run struct {
	alg    *Algorithm
	graph  *graph.Graph
	tape   *tape
	phase  Phase
	yield  func(Event) bool
	errors int
}

func newRun(a *Algorithm, yield func(Event) bool) *run {
	return &run{
		alg:   a,
		graph: a.graph,
		tape:  newTape(a.graph.Len()),
		yield: yield,
	}
}

// emit notifies observers and hands ev to the consumer. It returns false
// when the consumer stopped iterating.
func (r *run) emit(ev Event) bool {
	for _, o := range r.alg.observers {
		o.Observe(r.phase, ev)
	}
	return r.yield(ev)
}

func (r *run) runPhase(phase Phase) bool {
	switch phase {
	case PhaseInit:
		return r.materialize()
	case PhaseCalc:
		return r.calc()
	case PhaseBackwards:
		return r.backwards()
	case PhaseDiff:
		return r.diff()
	default:
		return true
	}
}

// nodeUpdate snapshots node i.
func (r *run) nodeUpdate(i int) NodeUpdate {
	n := r.graph.Node(i)
	return NodeUpdate{
		Index:       i,
		Name:        n.Name,
		DisplayName: n.DisplayName,
		Children:    n.Children,
		Value:       r.tape.values[i],
		Derivative:  r.tape.grads[i],
		Symbolic:    r.tape.symbolicAt(i),
	}
}

// fail reports a recoverable error at node i.
func (r *run) fail(i int, err error) bool {
	r.errors++
	ae := &AlgorithmError{Index: i, Name: r.graph.Label(i), Err: err}
	r.alg.logger.Warn("recoverable error",
		"phase", r.phase.String(),
		"node", i,
		"name", ae.Name,
		"error", err)
	return r.emit(ErrorMessage{Index: i, Text: err.Error(), Err: ae})
}

// seed returns the caller supplied derivative of node i, looked up by rule
// name, then variable name, then display name.
func (r *run) seed(i int) (matrix.Matrix, bool) {
	n := r.graph.Node(i)
	keys := append([]string(nil), n.Rules...)
	if n.Kind == graph.KindVariable {
		keys = append(keys, n.Name)
	}
	keys = append(keys, n.DisplayName)

	for _, k := range keys {
		if m, ok := r.alg.seeds[k]; ok {
			return m, true
		}
	}
	return matrix.Zero, false
}
