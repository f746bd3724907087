// Package metrics holds the Prometheus collectors of the service. A nil *Metrics
// is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "timekeeping"

type Metrics struct {
	registry *prometheus.Registry

	auditWrites        *prometheus.CounterVec
	auditWriteFailures prometheus.Counter
	ledgerOperations   *prometheus.CounterVec
	workflowReviews    *prometheus.CounterVec
	corrections        *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		auditWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_writes_total",
			Help:      "Audit entries written, by entry status.",
		}, []string{"status"}),
		auditWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit entries that could not be stored.",
		}),
		ledgerOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compoff_ledger_operations_total",
			Help:      "Comp-off ledger mutations, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		workflowReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_reviews_total",
			Help:      "Request reviews, by entity type and outcome.",
		}, []string{"entity", "outcome"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendance_corrections_total",
			Help:      "Per-record results of worked-hours correction passes.",
		}, []string{"outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cron_job_runs_total",
			Help:      "Scheduled job runs, by job and outcome.",
		}, []string{"job", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.auditWrites,
		m.auditWriteFailures,
		m.ledgerOperations,
		m.workflowReviews,
		m.corrections,
		m.jobRuns,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) AuditWritten(status string) {
	if m == nil {
		return
	}
	m.auditWrites.WithLabelValues(status).Inc()
}

func (m *Metrics) AuditWriteFailed() {
	if m == nil {
		return
	}
	m.auditWriteFailures.Inc()
}

func (m *Metrics) LedgerOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.ledgerOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) WorkflowReviewed(entity, outcome string) {
	if m == nil {
		return
	}
	m.workflowReviews.WithLabelValues(entity, outcome).Inc()
}

func (m *Metrics) CorrectionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.corrections.WithLabelValues(outcome).Inc()
}

func (m *Metrics) JobRun(job, outcome string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
}
