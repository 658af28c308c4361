// Package metrics provides Prometheus instrumentation for the four
// orchestrators, mirroring the shape of the teacher's
// infrastructure/metrics package: a struct of pre-registered collectors
// handed to every orchestrator, incremented on every evaluator call.
//
// This is ambient instrumentation, not a spec.md feature — it is carried
// regardless of the Non-goals (SPEC_FULL.md §3).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by every orchestrator.
type Metrics struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	FindingsTotal     *prometheus.CounterVec
	AlertsOpen        *prometheus.GaugeVec
}

// New creates a Metrics instance registered against the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a Metrics instance registered against a
// caller-supplied registry, so tests and multiple daemon instances don't
// collide on the global default.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govplatform_operations_total",
				Help: "Total evaluator/orchestrator operations by domain, operation and outcome.",
			},
			[]string{"domain", "operation", "outcome"},
		),
		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "govplatform_operation_duration_seconds",
				Help:    "Evaluator/orchestrator operation duration in seconds.",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"domain", "operation"},
		),
		FindingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "govplatform_findings_total",
				Help: "Total findings emitted by domain and severity.",
			},
			[]string{"domain", "severity"},
		),
		AlertsOpen: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "govplatform_alerts_open",
				Help: "Currently open alerts by domain.",
			},
			[]string{"domain"},
		),
	}

	for _, c := range []prometheus.Collector{m.OperationsTotal, m.OperationDuration, m.FindingsTotal, m.AlertsOpen} {
		_ = reg.Register(c)
	}
	return m
}

// Observe records one operation's outcome and duration.
func (m *Metrics) Observe(domain, operation string, started time.Time, success bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.OperationsTotal.WithLabelValues(domain, operation, outcome).Inc()
	m.OperationDuration.WithLabelValues(domain, operation).Observe(time.Since(started).Seconds())
}

// RecordFinding increments the findings counter for a domain/severity pair.
func (m *Metrics) RecordFinding(domain, severity string) {
	if m == nil {
		return
	}
	m.FindingsTotal.WithLabelValues(domain, severity).Inc()
}

// SetAlertsOpen sets the current open-alert gauge for a domain.
func (m *Metrics) SetAlertsOpen(domain string, n int) {
	if m == nil {
		return
	}
	m.AlertsOpen.WithLabelValues(domain).Set(float64(n))
}
