package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/parser"
)

func record(t *testing.T, src string, inputs, seeds map[string]matrix.Matrix) *Recording {
	t.Helper()
	g, err := parser.Compile(src, ops.NewRegistry())
	require.NoError(t, err)
	return Record(autodiff.New(g, inputs, seeds).Steps())
}

func TestRecordDropsPhaseMarkers(t *testing.T) {
	rec := record(t, "f = x + y", nil, nil)

	for _, f := range rec.Frames() {
		assert.NotEqual(t, autodiff.KindPhaseMarker, f.Event.Kind())
	}
	assert.Equal(t, autodiff.PhaseInit, rec.Frame(0).Phase)
	assert.Equal(t, autodiff.PhaseDiff, rec.Frame(rec.Len()-1).Phase)
}

func TestSnapshotAndEdges(t *testing.T) {
	rec := record(t, "f = x + y",
		map[string]matrix.Matrix{"x": matrix.Scalar(1), "y": matrix.Scalar(2)},
		map[string]matrix.Matrix{"f": matrix.Scalar(1)},
	)

	// After INIT (3 nodes, 2 edges, 1 rule) nothing has a value yet.
	init := rec.Snapshot(5)
	require.Len(t, init, 3)
	assert.True(t, init[2].Value.IsZero())
	assert.Equal(t, map[Edge]string{{2, 0}: "", {2, 1}: ""}, rec.Edges(5))

	final := rec.Snapshot(rec.Len() - 1)
	assert.Equal(t, 3.0, final[2].Value.At(0, 0))
	assert.Equal(t, 1.0, final[0].Derivative.At(0, 0))
	assert.Equal(t, map[Edge]string{{2, 0}: "Δf", {2, 1}: "Δf"}, rec.Edges(rec.Len()-1))

	assert.Empty(t, rec.Snapshot(-1))
}

func TestFirstError(t *testing.T) {
	rec := record(t, "f = x + y", map[string]matrix.Matrix{"x": matrix.Scalar(1)}, nil)

	errFrame := -1
	for i, f := range rec.Frames() {
		if f.Event.Kind() == autodiff.KindErrorMessage {
			errFrame = i
			break
		}
	}
	require.GreaterOrEqual(t, errFrame, 0)

	_, found := rec.FirstError(errFrame)
	assert.False(t, found)

	e, found := rec.FirstError(errFrame + 1)
	require.True(t, found)
	assert.Equal(t, "variable [y] is not assigned, interpreted as zero", e.Text)

	_, found = rec.FirstError(0)
	assert.False(t, found)
}

func TestCursorStopsAfterError(t *testing.T) {
	rec := record(t, "f = x + y", map[string]matrix.Matrix{"x": matrix.Scalar(1)}, nil)
	c := rec.Cursor()

	var shown []Frame
	var err error
	for {
		var f Frame
		if f, err = c.Next(); err != nil {
			break
		}
		shown = append(shown, f)
	}

	require.ErrorIs(t, err, ErrBlocked)
	assert.Contains(t, err.Error(), "variable [y] is not assigned")
	require.NotEmpty(t, shown)
	assert.Equal(t, autodiff.KindErrorMessage, shown[len(shown)-1].Event.Kind())
	assert.Less(t, c.Position(), rec.Len())

	assert.ErrorIs(t, c.Goto(rec.Len()), ErrBlocked)
	assert.ErrorIs(t, c.Goto(rec.Len()+1), ErrOutOfRange)
	require.NoError(t, c.Goto(2))
	assert.Equal(t, 2, c.Position())

	c.Restart()
	assert.Equal(t, 0, c.Position())
	require.NoError(t, c.Goto(0))
}

func TestCursorPlaysToEnd(t *testing.T) {
	rec := record(t, "g = x + x",
		map[string]matrix.Matrix{"x": matrix.Scalar(2)},
		map[string]matrix.Matrix{"g": matrix.Scalar(1)},
	)
	c := rec.Cursor()

	for range rec.Len() {
		_, err := c.Next()
		require.NoError(t, err)
	}
	_, err := c.Next()
	assert.ErrorIs(t, err, ErrEnd)
	require.NoError(t, c.Goto(rec.Len()))
}

func TestOutputShapes(t *testing.T) {
	src := "f = x * y\ng = tanh(z)"
	rec := record(t, src, map[string]matrix.Matrix{
		"x": matrix.MustNew([][]float64{{1, 2, 3}}),
		"y": matrix.MustNew([][]float64{{1}, {2}, {3}}),
	}, nil)

	outputs := rec.OutputShapes()
	require.Len(t, outputs, 2)

	assert.Equal(t, "f", outputs[0].Name)
	assert.Equal(t, matrix.Shape{Rows: 1, Cols: 1}, outputs[0].Shape)
	assert.True(t, outputs[0].Known)

	assert.Equal(t, "g", outputs[1].Name)
	assert.False(t, outputs[1].Known)
}
