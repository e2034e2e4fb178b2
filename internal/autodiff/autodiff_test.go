package autodiff_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/graph"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/symbolic"
)

func phaseMarkers(events []autodiff.Event) []autodiff.Phase {
	var out []autodiff.Phase
	for _, ev := range events {
		if m, ok := ev.(autodiff.PhaseMarker); ok {
			out = append(out, m.Phase)
		}
	}
	return out
}

func TestPhaseOrder(t *testing.T) {
	g := compile(t, "f = x + y")
	inputs := map[string]matrix.Matrix{"x": scalar(1), "y": scalar(2)}

	full := autodiff.New(g, inputs, nil).Events()
	assert.Equal(t, []autodiff.Phase{
		autodiff.PhaseInit, autodiff.PhaseCalc, autodiff.PhaseBackwards,
		autodiff.PhaseDiff, autodiff.PhaseFinish,
	}, phaseMarkers(full))

	symbolicOnly := autodiff.New(g, inputs, nil, autodiff.WithSymbolicOnly()).Events()
	assert.Equal(t, []autodiff.Phase{
		autodiff.PhaseInit, autodiff.PhaseCalc, autodiff.PhaseBackwards, autodiff.PhaseFinish,
	}, phaseMarkers(symbolicOnly))
}

func TestInitEvents(t *testing.T) {
	g := compile(t, "f = x + y")
	events := phaseEvents(autodiff.New(g, nil, nil).Events(), autodiff.PhaseInit)

	want := []string{
		`node 0 x "x" [] value="" grad="" sym=""`,
		`node 1 y "y" [] value="" grad="" sym=""`,
		`node 2 + "f = x + y" [0 1] value="" grad="" sym=""`,
		`edge 2->0 ""`,
		`edge 2->1 ""`,
		`rule f 2 [0 1 2]`,
	}
	got := make([]string, len(events))
	for i, ev := range events {
		got[i] = describe(ev)
	}
	assert.Equal(t, want, got)
}

func TestDeterministicReplay(t *testing.T) {
	g := compile(t, "f = x * y + tanh(x)\ng = had(f, y)")
	inputs := map[string]matrix.Matrix{
		"x": matrix.MustNew([][]float64{{1, 2}, {3, 4}}),
		"y": matrix.MustNew([][]float64{{0.5, -1}, {2, 0}}),
	}
	seeds := map[string]matrix.Matrix{
		"g": matrix.MustNew([][]float64{{1, 1}, {1, 1}}),
	}
	alg := autodiff.New(g, inputs, seeds)

	first := transcript(alg.Events())
	second := transcript(alg.Events())
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestSharedOperandScenario(t *testing.T) {
	g := compile(t, "g = x + x")
	alg := autodiff.New(g,
		map[string]matrix.Matrix{"x": matrix.MustNew([][]float64{{2}})},
		map[string]matrix.Matrix{"g": matrix.MustNew([][]float64{{1}})},
	)
	events := alg.Events()
	assert.Empty(t, errorsIn(events))

	calc := updatesFor(phaseEvents(events, autodiff.PhaseCalc), 1)
	require.Len(t, calc, 1)
	assert.Equal(t, [][]float64{{4}}, calc[0].Value.Rows())

	diff := updatesFor(phaseEvents(events, autodiff.PhaseDiff), 0)
	require.Len(t, diff, 3)
	assert.Equal(t, [][]float64{{1}}, diff[0].Derivative.Rows(), "first reference")
	assert.Equal(t, [][]float64{{2}}, diff[1].Derivative.Rows(), "second reference")
	assert.Equal(t, [][]float64{{2}}, diff[2].Derivative.Rows(), "visit of x")

	sym := updatesFor(phaseEvents(events, autodiff.PhaseBackwards), 0)
	require.NotEmpty(t, sym)
	assert.Equal(t, "2 * Δg", symbolic.Format(sym[len(sym)-1].Symbolic))
}

func TestUnassignedVariableScenario(t *testing.T) {
	g := compile(t, "f = x + y")
	alg := autodiff.New(g, map[string]matrix.Matrix{"x": scalar(3)}, nil)
	calc := phaseEvents(alg.Events(), autodiff.PhaseCalc)

	errs := errorsIn(calc)
	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Index)
	assert.Equal(t, "variable [y] is not assigned, interpreted as zero", errs[0].Text)
	assert.ErrorIs(t, errs[0].Err, autodiff.ErrUnassigned)

	var algErr *autodiff.AlgorithmError
	require.ErrorAs(t, errs[0].Err, &algErr)
	assert.Equal(t, "y", algErr.Name)

	y := updatesFor(calc, 1)
	require.Len(t, y, 1)
	assert.True(t, y[0].Value.IsZero())

	sum := updatesFor(calc, 2)
	require.Len(t, sum, 1, "the pass continues after the error")
	assert.True(t, sum[0].Value.IsZero())

	x := updatesFor(calc, 0)
	require.Len(t, x, 1)
	assert.Equal(t, 3.0, x[0].Value.At(0, 0))
}

func TestScalarTanhLabel(t *testing.T) {
	g := compile(t, "f = tanh(x)", graph.WithScalar())
	events := autodiff.New(g, map[string]matrix.Matrix{"x": scalar(0.5)}, nil,
		autodiff.WithSymbolicOnly()).Events()

	var labels []string
	for _, ev := range phaseEvents(events, autodiff.PhaseBackwards) {
		if e, ok := ev.(autodiff.EdgeAnnotation); ok {
			labels = append(labels, e.Label)
		}
	}
	assert.Equal(t, []string{"Δf / (1 - x * x)"}, labels)
}

func TestBackwardsMatrixProduct(t *testing.T) {
	g := compile(t, "f = x * y")
	events := phaseEvents(autodiff.New(g, nil, nil).Events(), autodiff.PhaseBackwards)

	got := make([]string, len(events))
	for i, ev := range events {
		got[i] = describe(ev)
	}
	assert.Equal(t, []string{
		`node 2 * "f = x * y" [0 1] value="" grad="" sym="Δf"`,
		`edge 2->0 "Δf * yᵀ"`,
		`node 0 x "x" [] value="" grad="" sym="Δf * yᵀ"`,
		`edge 2->1 "xᵀ * Δf"`,
		`node 1 y "y" [] value="" grad="" sym="xᵀ * Δf"`,
	}, got)
}

func TestBackwardsAccumulates(t *testing.T) {
	g := compile(t, "f = x * y + tanh(x)")
	events := autodiff.New(g, nil, nil, autodiff.WithSymbolicOnly()).Events()

	x := updatesFor(phaseEvents(events, autodiff.PhaseBackwards), 0)
	require.Len(t, x, 2)
	assert.Equal(t, "Δf / (1 - x * x)", symbolic.Format(x[0].Symbolic))
	assert.Equal(t, "Δf / (1 - x * x) + Δf * yᵀ", symbolic.Format(x[1].Symbolic))
}

func TestBackwardsNestedFunctionPlaceholder(t *testing.T) {
	g := compile(t, "f = tanh(tanh(x))")
	events := autodiff.New(g, nil, nil, autodiff.WithSymbolicOnly()).Events()

	var labels []string
	for _, ev := range phaseEvents(events, autodiff.PhaseBackwards) {
		if e, ok := ev.(autodiff.EdgeAnnotation); ok {
			labels = append(labels, e.Label)
		}
	}
	require.Len(t, labels, 2)
	assert.Equal(t, "Δf / (1 - tanh(x) * tanh(x))", labels[0])
	assert.Equal(t, "Δf / (1 - tanh(x) * tanh(x)) / (1 - x * x)", labels[1])
}

// Symmetric equality treats the two products as equal, so x + x = 2 * x
// merges them even though matrix products do not commute.
func TestBackwardsMergesMirroredProducts(t *testing.T) {
	g := compile(t, "f = x * x")
	events := autodiff.New(g, nil, nil, autodiff.WithSymbolicOnly()).Events()

	x := updatesFor(phaseEvents(events, autodiff.PhaseBackwards), 0)
	require.Len(t, x, 2)
	assert.Equal(t, "Δf * xᵀ", symbolic.Format(x[0].Symbolic))
	assert.Equal(t, "2 * Δf * xᵀ", symbolic.Format(x[1].Symbolic))
}

func TestUnknownContributionSpreads(t *testing.T) {
	g := compile(t, "f = x * y + tanh(x)")
	alg := autodiff.New(g,
		map[string]matrix.Matrix{"x": scalar(0.5)},
		map[string]matrix.Matrix{"f": scalar(1)},
	)
	diff := phaseEvents(alg.Events(), autodiff.PhaseDiff)

	x := updatesFor(diff, 0)
	require.Len(t, x, 2)
	assert.False(t, x[0].Derivative.IsZero(), "tanh contribution arrives first")
	assert.True(t, x[1].Derivative.IsZero(), "x * y contributes the zero sentinel")

	errs := errorsIn(diff)
	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Index)
	assert.ErrorIs(t, errs[0].Err, autodiff.ErrNoDerivative)
	assert.Equal(t, "no derivative provided for x, a contribution is unknown", errs[0].Text)

	y := updatesFor(diff, 1)
	require.NotEmpty(t, y)
	assert.InDelta(t, 0.5, y[len(y)-1].Derivative.At(0, 0), 1e-12)
}

func TestMissingSeed(t *testing.T) {
	g := compile(t, "f = x + y")
	alg := autodiff.New(g, map[string]matrix.Matrix{"x": scalar(1), "y": scalar(2)}, nil)
	errs := errorsIn(phaseEvents(alg.Events(), autodiff.PhaseDiff))

	require.Len(t, errs, 3)
	assert.Equal(t, 2, errs[0].Index)
	assert.Equal(t, "no derivative provided for f", errs[0].Text)
	assert.ErrorIs(t, errs[0].Err, autodiff.ErrNoDerivative)
	assert.Equal(t, "no derivative provided for y", errs[1].Text)
	assert.Equal(t, "no derivative provided for x", errs[2].Text)
}

func TestSeedLookup(t *testing.T) {
	x := &graph.Variable{Name: "x"}
	th := &graph.Operation{Symbol: "tanh", Operands: []graph.Source{x}}
	g, err := graph.Build([]graph.Source{x, th}, ops.NewRegistry())
	require.NoError(t, err)

	alg := autodiff.New(g,
		map[string]matrix.Matrix{"x": scalar(0)},
		map[string]matrix.Matrix{"tanh(x)": scalar(3)},
	)
	events := alg.Events()
	assert.Empty(t, errorsIn(events))

	diff := updatesFor(phaseEvents(events, autodiff.PhaseDiff), 0)
	require.NotEmpty(t, diff)
	assert.InDelta(t, 3.0, diff[len(diff)-1].Derivative.At(0, 0), 1e-12)

	sym := updatesFor(phaseEvents(events, autodiff.PhaseBackwards), 1)
	require.NotEmpty(t, sym)
	assert.Equal(t, "Δ(tanh(x))", symbolic.Format(sym[0].Symbolic))
}

func TestShapeErrorIsRecoverable(t *testing.T) {
	g := compile(t, "f = x + y\nh = tanh(x)")
	alg := autodiff.New(g, map[string]matrix.Matrix{
		"x": matrix.MustNew([][]float64{{1, 2}}),
		"y": matrix.MustNew([][]float64{{1}, {2}}),
	}, nil)
	calc := phaseEvents(alg.Events(), autodiff.PhaseCalc)

	errs := errorsIn(calc)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Index)
	assert.ErrorIs(t, errs[0].Err, matrix.ErrShapeMismatch)

	h := updatesFor(calc, 3)
	require.Len(t, h, 1)
	assert.False(t, h[0].Value.IsZero())
}

func TestScalarModeRejectsMatrixInput(t *testing.T) {
	g := compile(t, "f = x * y", graph.WithScalar())
	alg := autodiff.New(g, map[string]matrix.Matrix{
		"x": matrix.MustNew([][]float64{{1, 2}}),
		"y": scalar(2),
	}, nil)

	errs := errorsIn(phaseEvents(alg.Events(), autodiff.PhaseCalc))
	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Index)
	assert.ErrorIs(t, errs[0].Err, autodiff.ErrNotScalar)
}

func TestUpdateLeavesOriginal(t *testing.T) {
	g := compile(t, "f = x + y")
	seeds := map[string]matrix.Matrix{"f": scalar(1)}
	first := autodiff.New(g, map[string]matrix.Matrix{"x": scalar(1), "y": scalar(2)}, seeds)
	before := transcript(first.Events())

	second := first.Update(map[string]matrix.Matrix{"x": scalar(10), "y": scalar(20)}, seeds)

	assert.Equal(t, before, transcript(first.Events()))
	assert.NotEqual(t, before, transcript(second.Events()))
	assert.Same(t, first.Graph(), second.Graph())
	assert.NotEqual(t, first.ID(), second.ID())

	sum := updatesFor(phaseEvents(second.Events(), autodiff.PhaseCalc), 2)
	require.Len(t, sum, 1)
	assert.Equal(t, 30.0, sum[0].Value.At(0, 0))
}

func TestInputsAreCopied(t *testing.T) {
	g := compile(t, "f = x + y")
	inputs := map[string]matrix.Matrix{"x": scalar(1), "y": scalar(2)}
	alg := autodiff.New(g, inputs, nil)
	before := transcript(alg.Events())

	inputs["x"] = scalar(100)
	assert.Equal(t, before, transcript(alg.Events()))
	assert.Equal(t, 1.0, alg.Inputs()["x"].At(0, 0))
}

func TestEarlyStop(t *testing.T) {
	g := compile(t, "f = x + y")
	observed := 0
	alg := autodiff.New(g, nil, nil, autodiff.WithObserver(
		autodiff.ObserverFunc(func(autodiff.Phase, autodiff.Event) { observed++ }),
	))

	pulled := 0
	for range alg.Steps() {
		pulled++
		if pulled == 3 {
			break
		}
	}
	assert.Equal(t, 3, pulled)
	assert.Equal(t, 3, observed)
}

func TestObserverSeesPhases(t *testing.T) {
	g := compile(t, "f = x + y")
	kinds := map[autodiff.Phase]int{}
	alg := autodiff.New(g, nil, nil, autodiff.WithObserver(
		autodiff.ObserverFunc(func(p autodiff.Phase, ev autodiff.Event) {
			if ev.Kind() == autodiff.KindErrorMessage {
				kinds[p]++
			}
		}),
	))
	alg.Events()

	assert.Equal(t, 2, kinds[autodiff.PhaseCalc])
	assert.Equal(t, 3, kinds[autodiff.PhaseDiff])
}

func TestLoggerCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	g := compile(t, "f = x + y")
	alg := autodiff.New(g, map[string]matrix.Matrix{"x": scalar(1)}, nil, autodiff.WithLogger(logger))
	alg.Events()

	out := buf.String()
	assert.Contains(t, out, `"run_id":"`+alg.ID().String()+`"`)
	assert.Contains(t, out, `"msg":"phase started"`)
	assert.Contains(t, out, `"msg":"recoverable error"`)
	assert.Contains(t, out, `"phase":"CALC"`)
}

func TestEventKinds(t *testing.T) {
	assert.Equal(t, autodiff.KindNodeUpdate, autodiff.NodeUpdate{}.Kind())
	assert.Equal(t, autodiff.KindRuleGrouping, autodiff.RuleGrouping{}.Kind())
	assert.Equal(t, autodiff.KindEdgeAnnotation, autodiff.EdgeAnnotation{}.Kind())
	assert.Equal(t, autodiff.KindPhaseMarker, autodiff.PhaseMarker{}.Kind())
	assert.Equal(t, autodiff.KindErrorMessage, autodiff.ErrorMessage{}.Kind())
	assert.Equal(t, "edge_annotation", autodiff.KindEdgeAnnotation.String())
	assert.Equal(t, "BACKWARDS", autodiff.PhaseBackwards.String())
}
