package tsvrepair

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/tabstreams/metric"
)

// repairMetrics holds Prometheus metrics for TSV repair processor operations.
type repairMetrics struct {
	// Record counters
	recordsTotal *prometheus.CounterVec // By component and status (repaired/discarded/error)
	repaired     *prometheus.CounterVec // By component
	discarded    *prometheus.CounterVec // By component
	errors       *prometheus.CounterVec // By component and error_type

	// Performance metrics
	evaluationDuration *prometheus.HistogramVec // By component

	// Effectiveness metrics
	repairRate prometheus.Gauge // repaired / total
}

// newRepairMetrics creates and registers TSV repair metrics with the provided registry.
func newRepairMetrics(registry *metric.MetricsRegistry, _ string) (*repairMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &repairMetrics{
		recordsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "records_total",
			Help:      "Total number of bad records evaluated",
		}, []string{"component", "status"}), // status: repaired, discarded, error

		repaired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "repaired_total",
			Help:      "Total number of records the script repaired",
		}, []string{"component"}),

		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "discarded_total",
			Help:      "Total number of records discarded",
		}, []string{"component"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "errors_total",
			Help:      "Total number of processing errors",
		}, []string{"component", "error_type"}), // error_type: parse, type, validation, marshal, publish, queue

		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "evaluation_duration_seconds",
			Help:      "Script evaluation duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"component"}),

		repairRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tabstreams",
			Subsystem: "tsv_repair",
			Name:      "repair_rate",
			Help:      "Current repair rate (repaired / total records)",
		}),
	}

	if err := registry.RegisterCounterVec("tsv_repair", "records_total", m.recordsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("tsv_repair", "repaired", m.repaired); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("tsv_repair", "discarded", m.discarded); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("tsv_repair", "errors", m.errors); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("tsv_repair", "evaluation_duration", m.evaluationDuration); err != nil {
		return nil, err
	}
	if err := registry.RegisterGauge("tsv_repair", "repair_rate", m.repairRate); err != nil {
		return nil, err
	}

	return m, nil
}

// recordEvaluation records one script evaluation.
func (m *repairMetrics) recordEvaluation(componentName string, repaired bool, duration time.Duration) {
	if m == nil {
		return
	}

	status := "discarded"
	if repaired {
		status = "repaired"
		m.repaired.WithLabelValues(componentName).Inc()
	} else {
		m.discarded.WithLabelValues(componentName).Inc()
	}

	m.recordsTotal.WithLabelValues(componentName, status).Inc()
	m.evaluationDuration.WithLabelValues(componentName).Observe(duration.Seconds())
}

// recordError records a processing error.
func (m *repairMetrics) recordError(componentName, errorType string) {
	if m == nil {
		return
	}

	m.errors.WithLabelValues(componentName, errorType).Inc()
	m.recordsTotal.WithLabelValues(componentName, "error").Inc()
}

// updateRepairRate updates the repair effectiveness gauge.
func (m *repairMetrics) updateRepairRate(repaired, total int64) {
	if m == nil || total == 0 {
		return
	}

	m.repairRate.Set(float64(repaired) / float64(total))
}
