package telemetry

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/matrix"
	"github.com/born-ml/gradgraph/internal/ops"
	"github.com/born-ml/gradgraph/internal/parser"
)

func TestMetricsCountRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	g, err := parser.Compile("f = x + y", ops.NewRegistry())
	require.NoError(t, err)
	m.SetGraph(g)

	alg := autodiff.New(g, map[string]matrix.Matrix{"x": matrix.Scalar(1)}, nil, autodiff.WithObserver(m))
	alg.Events()

	assert.Equal(t, 3.0, testutil.ToFloat64(m.nodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rules))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("CALC")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.errors.WithLabelValues("DIFF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("phase_marker", "INIT")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("edge_annotation", "INIT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("rule_grouping", "INIT")))

	expected := `
# HELP gradgraph_errors_total Recoverable errors reported by algorithm runs.
# TYPE gradgraph_errors_total counter
gradgraph_errors_total{phase="CALC"} 1
gradgraph_errors_total{phase="DIFF"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "gradgraph_errors_total"))
}

func TestMetricsRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)

	assert.Panics(t, func() { NewMetrics(reg) })
}
