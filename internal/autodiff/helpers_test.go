package autodiff_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/parser"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

func compile(t *testing.T, src string, opts ...graph.Option) *graph.Graph {
	t.Helper()
	g, err := parser.Compile(src, ops.NewRegistry(), opts...)
	require.NoError(t, err)
	return g
}

func scalar(v float64) matrix.Matrix {
	return matrix.Scalar(v)
}

// phaseEvents returns the events emitted within phase, markers excluded.
func phaseEvents(events []autodiff.Event, phase autodiff.Phase) []autodiff.Event {
	var out []autodiff.Event
	current := autodiff.Phase(-1)
	for _, ev := range events {
		if m, ok := ev.(autodiff.PhaseMarker); ok {
			current = m.Phase
			continue
		}
		if current == phase {
			out = append(out, ev)
		}
	}
	return out
}

// updatesFor returns the node updates of node i, in order.
func updatesFor(events []autodiff.Event, i int) []autodiff.NodeUpdate {
	var out []autodiff.NodeUpdate
	for _, ev := range events {
		if u, ok := ev.(autodiff.NodeUpdate); ok && u.Index == i {
			out = append(out, u)
		}
	}
	return out
}

func errorsIn(events []autodiff.Event) []autodiff.ErrorMessage {
	var out []autodiff.ErrorMessage
	for _, ev := range events {
		if e, ok := ev.(autodiff.ErrorMessage); ok {
			out = append(out, e)
		}
	}
	return out
}

// describe renders an event deterministically.
func describe(ev autodiff.Event) string {
	switch e := ev.(type) {
	case autodiff.NodeUpdate:
		return fmt.Sprintf("node %d %s %q %v value=%q grad=%q sym=%q",
			e.Index, e.Name, e.DisplayName, e.Children,
			e.Value.String(), e.Derivative.String(), symbolic.Format(e.Symbolic))
	case autodiff.RuleGrouping:
		return fmt.Sprintf("rule %s %d %v", e.Name, e.Index, e.Members)
	case autodiff.EdgeAnnotation:
		return fmt.Sprintf("edge %d->%d %q", e.From, e.To, e.Label)
	case autodiff.PhaseMarker:
		return "phase " + e.Phase.String()
	case autodiff.ErrorMessage:
		return fmt.Sprintf("error %d %s", e.Index, e.Text)
	default:
		return "unknown"
	}
}

func transcript(events []autodiff.Event) string {
	lines := make([]string, len(events))
	for i, ev := range events {
		lines[i] = describe(ev)
	}
	return strings.Join(lines, "\n")
}
