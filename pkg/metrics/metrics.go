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

	// AgentStreamDuration tracks agent run duration per chat request.
	AgentStreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_stream_duration_seconds",
			Help:    "Agent streaming run duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// AgentEventsTotal tracks raw agent events seen by the translator.
	AgentEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_events_total",
			Help: "Total agent events processed",
		},
		[]string{"kind"},
	)

	// ToolInvocationsTotal tracks agent tool invocations.
	ToolInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_invocations_total",
			Help: "Total agent tool invocations",
		},
		[]string{"tool"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// ConversationsActive tracks conversations held in memory.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conversations_active",
			Help: "Number of conversations currently stored",
		},
	)

	// MessagesTotal tracks total messages appended.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended",
		},
		[]string{"role"},
	)

	// ExportsTotal tracks conversation PDF exports.
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_exports_total",
			Help: "Total conversation PDF exports",
		},
		[]string{"status"},
	)

	// UploadsTotal tracks PDF uploads.
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_uploads_total",
			Help: "Total PDF uploads",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordAgentStream records metrics for one agent streaming run.
func RecordAgentStream(model, status string, duration float64) {
	AgentStreamDuration.WithLabelValues(model, status).Observe(duration)
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
