// Package telemetry provides the prometheus counters and opentracing
// spans the pipeline runtime attaches to every operator invocation,
// matching the instrumentation layer the teacher wires through its
// own server package before it was trimmed down to test-only scaffolding.
package telemetry

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the fixed set of counters/histograms the pipeline runtime
// updates on every event it routes through an operator.
type Metrics struct {
	EventsTotal    *prometheus.CounterVec
	ErrorsTotal    *prometheus.CounterVec
	ProcessSeconds *prometheus.HistogramVec
}

// NewMetrics registers a fresh Metrics set. Callers that need several
// independent pipelines in one process should use separate
// prometheus.Registry instances to avoid collector name collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tremor",
			Name:      "operator_events_total",
			Help:      "Events processed per operator and port.",
		}, []string{"operator", "port"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tremor",
			Name:      "operator_errors_total",
			Help:      "Errors raised per operator.",
		}, []string{"operator"}),
		ProcessSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tremor",
			Name:      "operator_process_seconds",
			Help:      "Per-event processing latency per operator.",
		}, []string{"operator"}),
	}
	reg.MustRegister(m.EventsTotal, m.ErrorsTotal, m.ProcessSeconds)
	return m
}

// StartSpan opens an opentracing span for one operator invocation,
// child of parent if non-nil.
func StartSpan(operator string, parent opentracing.SpanContext) opentracing.Span {
	var opts []opentracing.StartSpanOption
	if parent != nil {
		opts = append(opts, opentracing.ChildOf(parent))
	}
	return opentracing.StartSpan("operator:"+operator, opts...)
}
