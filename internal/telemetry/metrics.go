// Package telemetry counts the events of algorithm runs with Prometheus
// metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/born-ml/gradgraph/internal/autodiff"
	"github.com/born-ml/gradgraph/internal/graph"
)

// Metrics implements autodiff.Observer.
type Metrics struct {
	events *prometheus.CounterVec
	errors *prometheus.CounterVec
	nodes  prometheus.Gauge
	rules  prometheus.Gauge
}

var _ autodiff.Observer = (*Metrics)(nil)

// NewMetrics registers the metrics on reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gradgraph_events_total",
			Help: "Events emitted by algorithm runs.",
		}, []string{"kind", "phase"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gradgraph_errors_total",
			Help: "Recoverable errors reported by algorithm runs.",
		}, []string{"phase"}),
		nodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gradgraph_graph_nodes",
			Help: "Number of nodes in the current graph.",
		}),
		rules: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gradgraph_graph_rules",
			Help: "Number of rules in the current graph.",
		}),
	}
}

// Observe counts ev.
func (m *Metrics) Observe(phase autodiff.Phase, ev autodiff.Event) {
	m.events.WithLabelValues(ev.Kind().String(), phase.String()).Inc()
	if ev.Kind() == autodiff.KindErrorMessage {
		m.errors.WithLabelValues(phase.String()).Inc()
	}
}

// SetGraph records the size of g.
func (m *Metrics) SetGraph(g *graph.Graph) {
	m.nodes.Set(float64(g.Len()))
	m.rules.Set(float64(len(g.Rules())))
}
