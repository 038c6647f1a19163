// Package metrics exposes the Prometheus instrumentation surface for the
// CDP server: dispatch counters/latency, session gauges, and event
// batching counters. Grounded on vango's pkg/middleware/metrics.go
// (promauto.With(registry) factory pattern, Namespace/Subsystem/
// ConstLabels config shape, CounterVec/HistogramVec/Gauge field layout).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the metrics namespace and registry.
type Config struct {
	Namespace   string
	Subsystem   string
	ConstLabels prometheus.Labels
	Registry    prometheus.Registerer
}

// DefaultConfig returns the config used when the caller doesn't supply one.
func DefaultConfig() Config {
	return Config{
		Namespace: "corten_devtools",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds every counter, gauge, and histogram the server records.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestErrors    *prometheus.CounterVec
	eventsSent       *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	totalSessions    prometheus.Counter
	batchesFlushed   *prometheus.CounterVec
	batchCoalesced   *prometheus.CounterVec
	websocketErrors  *prometheus.CounterVec
	remoteObjectsLRU *prometheus.GaugeVec
}

// New builds and registers the full metrics set against cfg.Registry (or
// the default Prometheus registry if unset).
func New(cfg Config) *Metrics {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registry)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "requests_total",
			Help:        "Total number of CDP requests dispatched, by domain and status",
			ConstLabels: cfg.ConstLabels,
		}, []string{"domain", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_duration_seconds",
			Help:        "CDP request dispatch latency in seconds, by domain",
			ConstLabels: cfg.ConstLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"domain"}),

		requestErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "request_errors_total",
			Help:        "Total CDP request errors, by domain and error code",
			ConstLabels: cfg.ConstLabels,
		}, []string{"domain", "code"}),

		eventsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "events_sent_total",
			Help:        "Total CDP events sent to clients, by domain",
			ConstLabels: cfg.ConstLabels,
		}, []string{"domain"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of currently connected CDP sessions",
			ConstLabels: cfg.ConstLabels,
		}),

		totalSessions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "sessions_total",
			Help:        "Total number of CDP sessions ever created",
			ConstLabels: cfg.ConstLabels,
		}),

		batchesFlushed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "event_batches_flushed_total",
			Help:        "Total event batches flushed, by flush reason",
			ConstLabels: cfg.ConstLabels,
		}, []string{"reason"}),

		batchCoalesced: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "event_batch_coalesced_total",
			Help:        "Total events coalesced into batches, by domain",
			ConstLabels: cfg.ConstLabels,
		}, []string{"domain"}),

		websocketErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "websocket_errors_total",
			Help:        "Total WebSocket transport errors, by type",
			ConstLabels: cfg.ConstLabels,
		}, []string{"type"}),

		remoteObjectsLRU: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "remote_object_cache_entries",
			Help:        "Current entries held in the Runtime remote object LRU cache, by session",
			ConstLabels: cfg.ConstLabels,
		}, []string{"session_id"}),
	}
}

// RecordRequest records the outcome and latency of one dispatched request.
func (m *Metrics) RecordRequest(domain, status string, seconds float64) {
	m.requestsTotal.WithLabelValues(domain, status).Inc()
	m.requestDuration.WithLabelValues(domain).Observe(seconds)
}

// RecordRequestError increments the error counter for domain/code.
func (m *Metrics) RecordRequestError(domain string, code int32) {
	m.requestErrors.WithLabelValues(domain, codeLabel(code)).Inc()
}

// RecordEventSent increments the per-domain event counter.
func (m *Metrics) RecordEventSent(domain string) {
	m.eventsSent.WithLabelValues(domain).Inc()
}

// RecordSessionCreated increments session counters on connect.
func (m *Metrics) RecordSessionCreated() {
	m.activeSessions.Inc()
	m.totalSessions.Inc()
}

// RecordSessionClosed decrements the active session gauge on disconnect.
func (m *Metrics) RecordSessionClosed() {
	m.activeSessions.Dec()
}

// RecordBatchFlushed increments the flush counter for reason (e.g.
// "max_size", "max_age", "session_close").
func (m *Metrics) RecordBatchFlushed(reason string) {
	m.batchesFlushed.WithLabelValues(reason).Inc()
}

// RecordBatchCoalesced increments the coalesced-event counter for domain.
func (m *Metrics) RecordBatchCoalesced(domain string) {
	m.batchCoalesced.WithLabelValues(domain).Inc()
}

// RecordWebSocketError increments the transport error counter for typ.
func (m *Metrics) RecordWebSocketError(typ string) {
	m.websocketErrors.WithLabelValues(typ).Inc()
}

// SetRemoteObjectCacheSize reports the current LRU entry count for a session.
func (m *Metrics) SetRemoteObjectCacheSize(sessionID string, entries int) {
	m.remoteObjectsLRU.WithLabelValues(sessionID).Set(float64(entries))
}

// DeleteRemoteObjectCacheSize removes the gauge series for a closed session,
// preventing an unbounded label cardinality leak across the session lifetime.
func (m *Metrics) DeleteRemoteObjectCacheSize(sessionID string) {
	m.remoteObjectsLRU.DeleteLabelValues(sessionID)
}

func codeLabel(code int32) string {
	switch code {
	case -32700:
		return "parse_error"
	case -32600:
		return "invalid_request"
	case -32601:
		return "method_not_found"
	case -32602:
		return "invalid_params"
	case -32603:
		return "internal_error"
	default:
		return "server_error"
	}
}
