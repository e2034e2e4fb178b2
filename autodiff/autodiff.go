// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff builds computation graphs from expressions and runs
// forward evaluation, symbolic differentiation and numeric reverse-mode
// differentiation over them, step by step.
//
// Example:
//
//	import (
//	    "github.com/born-ml/gradgraph/autodiff"
//	    "github.com/born-ml/gradgraph/matrix"
//	)
//
//	func main() {
//	    g, err := autodiff.Compile("f = x * y + tanh(x)")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    alg := autodiff.New(g,
//	        map[string]matrix.Matrix{"x": x, "y": y},
//	        map[string]matrix.Matrix{"f": ones},
//	    )
//	    for ev := range alg.Steps() {
//	        fmt.Println(ev.Kind())
//	    }
//	}
package autodiff

import (
	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/parser"
)

// Graph is an immutable computation graph.
type Graph = graph.Graph

// GraphOption configures graph construction.
type GraphOption = graph.Option

// WithScalar builds a scalar graph where every value is 1×1.
func WithScalar() GraphOption {
	return graph.WithScalar()
}

// Compile parses src with the built-in operators and builds its graph.
func Compile(src string, opts ...GraphOption) (*Graph, error) {
	return parser.Compile(src, ops.NewRegistry(), opts...)
}

// Algorithm is one configured run over a graph.
type Algorithm = autodiff.Algorithm

// Option configures an Algorithm.
type Option = autodiff.Option

// New creates an algorithm over g.
func New(g *Graph, inputs, seeds map[string]matrix.Matrix, opts ...Option) *Algorithm {
	return autodiff.New(g, inputs, seeds, opts...)
}

// Algorithm options.
var (
	WithSymbolicOnly = autodiff.WithSymbolicOnly
	WithLogger       = autodiff.WithLogger
	WithObserver     = autodiff.WithObserver
)

// Events.
type (
	Event          = autodiff.Event
	EventKind      = autodiff.EventKind
	NodeUpdate     = autodiff.NodeUpdate
	RuleGrouping   = autodiff.RuleGrouping
	EdgeAnnotation = autodiff.EdgeAnnotation
	PhaseMarker    = autodiff.PhaseMarker
	ErrorMessage   = autodiff.ErrorMessage
	Observer       = autodiff.Observer
	ObserverFunc   = autodiff.ObserverFunc
	AlgorithmError = autodiff.AlgorithmError
)

// Phase is a stage of a run.
type Phase = autodiff.Phase

// Phases.
const (
	PhaseInit      = autodiff.PhaseInit
	PhaseCalc      = autodiff.PhaseCalc
	PhaseBackwards = autodiff.PhaseBackwards
	PhaseDiff      = autodiff.PhaseDiff
	PhaseFinish    = autodiff.PhaseFinish
)

// Event kinds.
const (
	KindNodeUpdate     = autodiff.KindNodeUpdate
	KindRuleGrouping   = autodiff.KindRuleGrouping
	KindEdgeAnnotation = autodiff.KindEdgeAnnotation
	KindPhaseMarker    = autodiff.KindPhaseMarker
	KindErrorMessage   = autodiff.KindErrorMessage
)

// Recoverable errors reported in ErrorMessage events.
var (
	ErrUnassigned   = autodiff.ErrUnassigned
	ErrNoDerivative = autodiff.ErrNoDerivative
	ErrNotScalar    = autodiff.ErrNotScalar
)
