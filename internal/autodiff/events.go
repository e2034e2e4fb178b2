package autodiff

import (
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

// Phase is a stage of an algorithm run.
type Phase int

// Phases in execution order.
const (
	PhaseInit Phase = iota
	PhaseCalc
	PhaseBackwards
	PhaseDiff
	PhaseFinish
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "INIT"
	case PhaseCalc:
		return "CALC"
	case PhaseBackwards:
		return "BACKWARDS"
	case PhaseDiff:
		return "DIFF"
	case PhaseFinish:
		return "FINISH"
	default:
		return "UNKNOWN"
	}
}

// EventKind discriminates events.
type EventKind int

// Event kinds.
const (
	KindNodeUpdate EventKind = iota
	KindRuleGrouping
	KindEdgeAnnotation
	KindPhaseMarker
	KindErrorMessage
)

func (k EventKind) String() string {
	switch k {
	case KindNodeUpdate:
		return "node_update"
	case KindRuleGrouping:
		return "rule_grouping"
	case KindEdgeAnnotation:
		return "edge_annotation"
	case KindPhaseMarker:
		return "phase_marker"
	case KindErrorMessage:
		return "error_message"
	default:
		return "unknown"
	}
}

// Event is one step of a run. Consumers switch on Kind.
type Event interface {
	Kind() EventKind
}

// NodeUpdate reports the current state of a node.
type NodeUpdate struct {
	Index       int
	Name        string
	DisplayName string
	Children    []int
	Value       matrix.Matrix
	Derivative  matrix.Matrix
	Symbolic    symbolic.Term
}

// RuleGrouping reports a rule and the nodes of its content.
type RuleGrouping struct {
	Name    string
	Index   int
	Members []int
}

// EdgeAnnotation labels the edge from a parent to one of its children. The
// label is empty for structural edges and holds the symbolic derivative
// contribution during BACKWARDS.
type EdgeAnnotation struct {
	From  int
	To    int
	Label string
}

// PhaseMarker opens a phase.
type PhaseMarker struct {
	Phase Phase
}

// ErrorMessage reports a recoverable error at a node.
type ErrorMessage struct {
	Index int
	Text  string
	Err   error
}

func (NodeUpdate) Kind() EventKind     { return KindNodeUpdate }
func (RuleGrouping) Kind() EventKind   { return KindRuleGrouping }
func (EdgeAnnotation) Kind() EventKind { return KindEdgeAnnotation }
func (PhaseMarker) Kind() EventKind    { return KindPhaseMarker }
func (ErrorMessage) Kind() EventKind   { return KindErrorMessage }

// Observer is notified of every event before it is handed to the consumer.
type Observer interface {
	Observe(phase Phase, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(phase Phase, ev Event)

// Observe calls f.
func (f ObserverFunc) Observe(phase Phase, ev Event) {
	f(phase, ev)
}
