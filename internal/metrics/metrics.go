// Package metrics exposes Prometheus instrumentation for the conversation
// loop and SQL execution path.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts inbound messages by classified intent.
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sqlpilot",
		Name:      "messages_total",
		Help:      "Inbound messages by classified intent.",
	}, []string{"intent"})

	// SynthesisTotal counts SQL generation attempts by result.
	SynthesisTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sqlpilot",
		Name:      "synthesis_total",
		Help:      "SQL generation attempts by result.",
	}, []string{"result"})

	// ExecutionsTotal counts executed statements by operation and status.
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sqlpilot",
		Name:      "executions_total",
		Help:      "Executed SQL statements by operation and status.",
	}, []string{"operation", "status"})

	// MissingFieldPrompts counts follow-up questions asked for required fields.
	MissingFieldPrompts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sqlpilot",
		Name:      "missing_field_prompts_total",
		Help:      "Follow-up questions asked for required fields.",
	})

	// ExecutionDuration observes statement execution latency.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sqlpilot",
		Name:      "execution_duration_seconds",
		Help:      "SQL statement execution latency.",
		Buckets:   prometheus.DefBuckets,
	})
)

// ObserveExecution records one executed statement.
func ObserveExecution(operation string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}

	ExecutionsTotal.WithLabelValues(operation, status).Inc()
	ExecutionDuration.Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
