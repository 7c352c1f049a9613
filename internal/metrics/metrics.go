// Package metrics provides Prometheus metrics for strata stores
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of one backend instance
type Metrics struct {
	Registry *prometheus.Registry

	VersionsCreated    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	VersionsRead       *prometheus.CounterVec

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	PropertiesDefined prometheus.Gauge
}

// New creates the collectors on a fresh registry, so several backends can live
// in one process without duplicate registration.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{Registry: reg}

	m.VersionsCreated = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_versions_created_total",
			Help: "Total number of versions created",
		},
		[]string{"kind"},
	)

	m.ValidationFailures = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_validation_failures_total",
			Help: "Total number of values rejected before persisting",
		},
		[]string{"kind"},
	)

	m.VersionsRead = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_versions_read_total",
			Help: "Total number of versions returned by history reads",
		},
		[]string{"kind"},
	)

	m.OperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_store_operations_total",
			Help: "Total number of store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	m.OperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"backend", "operation"},
	)

	m.PropertiesDefined = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "strata_properties_defined",
			Help: "Number of properties defined in the attached store",
		},
	)

	return m
}

// RecordOperation records a store operation and its outcome
func (m *Metrics) RecordOperation(backend, operation string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(backend, operation, status).Inc()
	m.OperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
