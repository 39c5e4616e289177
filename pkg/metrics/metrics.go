// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// DispatchesTotal tracks query dispatches by outcome.
	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatches_total",
			Help: "Total query dispatches by outcome",
		},
		[]string{"outcome"},
	)

	// DispatchDuration tracks automation round-trip duration.
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Automation webhook round-trip duration",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"kind"},
	)

	// ClarificationTurnsTotal tracks clarification transcript turns.
	ClarificationTurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clarification_turns_total",
			Help: "Total clarification transcript turns appended",
		},
		[]string{"role"},
	)

	// LeadsIngestedTotal tracks leads accepted into the session list.
	LeadsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_ingested_total",
			Help: "Leads accepted into the current session",
		},
		[]string{"source"},
	)

	// LeadsDroppedTotal tracks rows rejected by the session filter.
	LeadsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_dropped_total",
			Help: "Insert events rejected by the session time filter",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// ExportsTotal tracks lead exports by format.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exports_total",
			Help: "Total lead exports by format",
		},
		[]string{"format"},
	)
)

// Dispatch outcome labels.
const (
	OutcomeStreaming     = "streaming"
	OutcomeClarification = "clarification"
	OutcomeTimeout       = "timeout"
	OutcomeTransport     = "transport_error"
	OutcomeSuperseded    = "superseded"
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordDispatch records a dispatch outcome and its round-trip time.
func RecordDispatch(kind, outcome string, duration float64) {
	DispatchesTotal.WithLabelValues(outcome).Inc()
	DispatchDuration.WithLabelValues(kind).Observe(duration)
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
