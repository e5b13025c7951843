// Package metrics exposes Prometheus counters for submissions, workflow actions and background jobs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job run results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	submissions     *prometheus.CounterVec
	workflowActions *prometheus.CounterVec
	events          *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formreport_submissions_total",
			Help: "Submissions that changed status, by the new status.",
		}, []string{"status"}),
		workflowActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formreport_workflow_actions_total",
			Help: "Workflow step actions taken, by action.",
		}, []string{"action"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formreport_events_total",
			Help: "Domain events consumed by the worker, by event type.",
		}, []string{"event_type"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "formreport_job_runs_total",
			Help: "Background job runs, by job and result.",
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "formreport_job_duration_seconds",
			Help:    "Background job run duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.submissions,
		m.workflowActions,
		m.events,
		m.jobRuns,
		m.jobDuration,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SubmissionStatus(status string) {
	if m == nil {
		return
	}

	m.submissions.WithLabelValues(status).Inc()
}

func (m *Metrics) WorkflowAction(action string) {
	if m == nil {
		return
	}

	m.workflowActions.WithLabelValues(action).Inc()
}

func (m *Metrics) EventConsumed(eventType string) {
	if m == nil {
		return
	}

	m.events.WithLabelValues(eventType).Inc()
}

// JobRun records one run of job. A non-nil err counts as an error result.
func (m *Metrics) JobRun(job string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}
