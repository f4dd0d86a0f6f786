package cpmm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// --- Metrics ---

// Operation labels used by the metrics below.
const (
	opAddLiquidity    = "addLiquidity"
	opRemoveLiquidity = "removeLiquidity"
	opSwap            = "swap"
)

// Metrics holds all the Prometheus metrics for the pool engine.
type Metrics struct {
	opDuration *prometheus.HistogramVec
	opsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers the metrics for the pool engine.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cpmm_operation_duration_seconds",
			Help:    "Time taken to execute a single pool operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cpmm_operations_total",
			Help: "Total number of pool operations, labeled by operation and result.",
		}, []string{"operation", "result"}),
	}
	reg.MustRegister(m.opDuration, m.opsTotal)
	return m
}

// observe records a completed operation. Safe to call on a nil receiver so
// pools can run without metrics.
func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.opsTotal.WithLabelValues(op, result).Inc()
}
