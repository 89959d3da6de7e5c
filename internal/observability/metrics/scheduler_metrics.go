package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulerMetrics captures batch-job health signals.
type SchedulerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobErrors   *prometheus.CounterVec
	itemsSwept  *prometheus.CounterVec
}

func NewSchedulerMetrics() *SchedulerMetrics {
	return newSchedulerMetrics(prometheus.DefaultRegisterer)
}

func newSchedulerMetrics(reg prometheus.Registerer) *SchedulerMetrics {
	factory := promauto.With(reg)
	return &SchedulerMetrics{
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_scheduler_job_runs_total",
			Help: "Scheduler job executions by job name.",
		}, []string{"job"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billing_scheduler_job_duration_seconds",
			Help:    "Scheduler job duration by job name.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"job"}),
		jobErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_scheduler_job_errors_total",
			Help: "Scheduler job failures by job name.",
		}, []string{"job"}),
		itemsSwept: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billing_scheduler_items_processed_total",
			Help: "Items processed by batch jobs, by job name and outcome.",
		}, []string{"job", "outcome"}),
	}
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func (m *SchedulerMetrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) AddItems(job, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.itemsSwept.WithLabelValues(job, outcome).Add(float64(n))
}
