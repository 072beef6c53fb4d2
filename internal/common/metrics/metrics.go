// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	EvaluationSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_submissions_total",
			Help: "Evaluation submissions by final state and failure kind",
		},
		[]string{"state", "failure"},
	)

	EvaluationFinalScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_final_score",
			Help:    "Final score of persisted evaluations",
			Buckets: []float64{0, 50, 60, 70, 80, 90, 95, 100},
		},
	)

	EvaluationCriticalFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "evaluation_critical_failures_total",
			Help: "Persisted evaluations with an occurred critical failure",
		},
	)

	TicketLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_lookups_total",
			Help: "Ticket metadata lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveJob records the outcome and duration of one worker job. An empty
// errorCode counts as completed.
func ObserveJob(taskType string, start time.Time, errorCode string) {
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	if errorCode == "" {
		WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		return
	}
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
