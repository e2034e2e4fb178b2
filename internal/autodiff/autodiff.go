// Package autodiff runs forward evaluation and reverse-mode differentiation
// over a computation graph and exposes every step as an event.
//
// A run walks five phases:
//   - INIT: every node, structural edge and rule is reported
//   - CALC: values are computed in ascending index order
//   - BACKWARDS: symbolic derivatives flow from the terminal nodes down
//   - DIFF: numeric derivatives flow from caller supplied seeds down
//   - FINISH: end of run
//
// An Algorithm never changes after New. Steps returns a lazy sequence that
// starts over from INIT on every call, so two consumers may replay the same
// Algorithm independently. Update builds a new Algorithm on the same graph.
//
// Usage:
//
//	alg := autodiff.New(g, inputs, seeds)
//	for ev := range alg.Steps() {
//	    switch e := ev.(type) {
//	    case autodiff.NodeUpdate:
//	        fmt.Println(e.DisplayName, e.Value)
//	    case autodiff.ErrorMessage:
//	        fmt.Println("error:", e.Text)
//	    }
//	}
package autodiff

import (
	"iter"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
)

// Option configures an Algorithm.
type Option func(*Algorithm)

// WithSymbolicOnly skips the DIFF phase.
func WithSymbolicOnly() Option {
	return func(a *Algorithm) {
		a.symbolicOnly = true
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Algorithm) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithObserver registers an observer for every emitted event.
func WithObserver(o Observer) Option {
	return func(a *Algorithm) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}

// Algorithm is one configured run over a graph.
type Algorithm struct {
	id     uuid.UUID
	graph  *graph.Graph
	inputs map[string]matrix.Matrix
	seeds  map[string]matrix.Matrix
	opts   []Option

	symbolicOnly bool
	logger       *slog.Logger
	observers    []Observer
}

// New creates an algorithm over g. inputs maps variable names to values;
// seeds maps rule, variable or display names to output derivatives used by
// DIFF. Both maps are copied.
func New(g *graph.Graph, inputs, seeds map[string]matrix.Matrix, opts ...Option) *Algorithm {
	a := &Algorithm{
		id:     uuid.New(),
		graph:  g,
		inputs: maps.Clone(inputs),
		seeds:  maps.Clone(seeds),
		opts:   slices.Clone(opts),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("run_id", a.id.String())
	return a
}

// Update returns a new Algorithm on the same graph and options with new
// inputs and seeds. a is left untouched.
func (a *Algorithm) Update(inputs, seeds map[string]matrix.Matrix) *Algorithm {
	return New(a.graph, inputs, seeds, a.opts...)
}

// ID returns the run id used in logs.
func (a *Algorithm) ID() uuid.UUID {
	return a.id
}

// Graph returns the underlying graph.
func (a *Algorithm) Graph() *graph.Graph {
	return a.graph
}

// Inputs returns a copy of the input values.
func (a *Algorithm) Inputs() map[string]matrix.Matrix {
	return maps.Clone(a.inputs)
}

// Seeds returns a copy of the seed derivatives.
func (a *Algorithm) Seeds() map[string]matrix.Matrix {
	return maps.Clone(a.seeds)
}

// Phases returns the phases a run walks through.
func (a *Algorithm) Phases() []Phase {
	if a.symbolicOnly {
		return []Phase{PhaseInit, PhaseCalc, PhaseBackwards, PhaseFinish}
	}
	return []Phase{PhaseInit, PhaseCalc, PhaseBackwards, PhaseDiff, PhaseFinish}
}

// Steps returns the event sequence of a run. Each call starts a fresh run.
// Stopping the iteration early abandons the run.
func (a *Algorithm) Steps() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		r := newRun(a, yield)
		for _, phase := range a.Phases() {
			r.phase = phase
			a.logger.Debug("phase started", "phase", phase.String(), "nodes", a.graph.Len())
			if !r.emit(PhaseMarker{Phase: phase}) {
				return
			}
			if !r.runPhase(phase) {
				return
			}
		}
		a.logger.Debug("run finished", "errors", r.errors)
	}
}

// Events collects a full run.
func (a *Algorithm) Events() []Event {
	return slices.Collect(a.Steps())
}
