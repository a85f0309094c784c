package metric

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the core platform metrics shared by all components.
// Component-specific metrics are registered separately through the
// MetricsRegistrar interface.
type Metrics struct {
	// ServiceStatus reports 1 when a component is running, 0 otherwise.
	ServiceStatus *prometheus.GaugeVec

	// Message flow counters by component.
	MessagesReceived  *prometheus.CounterVec
	MessagesProcessed *prometheus.CounterVec
	MessagesPublished *prometheus.CounterVec

	// ProcessingDuration tracks per-message handling time by component.
	ProcessingDuration *prometheus.HistogramVec

	// ErrorsTotal counts errors by component and error class.
	ErrorsTotal *prometheus.CounterVec

	// NATS connection state.
	NATSConnected  prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates the core platform metrics. The collectors are created
// unregistered; NewMetricsRegistry registers them.
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "tabstreams",
			Name:      "service_status",
			Help:      "Component status (1 = running, 0 = stopped)",
		}, []string{"component"}),

		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Name:      "messages_received_total",
			Help:      "Total messages received by component",
		}, []string{"component"}),

		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Name:      "messages_processed_total",
			Help:      "Total messages processed by component",
		}, []string{"component"}),

		MessagesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Name:      "messages_published_total",
			Help:      "Total messages published by component",
		}, []string{"component"}),

		ProcessingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tabstreams",
			Name:      "processing_duration_seconds",
			Help:      "Message processing duration by component",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"component"}),

		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Name:      "errors_total",
			Help:      "Total errors by component and class",
		}, []string{"component", "class"}),

		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tabstreams",
			Name:      "nats_connected",
			Help:      "NATS connection state (1 = connected)",
		}),

		NATSReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Name:      "nats_reconnects_total",
			Help:      "Total NATS reconnections",
		}),
	}
}
