// internal/common/metrics/metrics.go
package metrics

import (
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

	RoutedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marine_routed_requests_total",
			Help: "Requests dispatched by the orchestrator, by agent and input type",
		},
		[]string{"agent", "input_type"},
	)

	RoutingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marine_routing_errors_total",
			Help: "Requests answered with an error envelope",
		},
		[]string{"reason"},
	)

	Verdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marine_overfishing_verdicts_total",
			Help: "Overfishing verdicts by status",
		},
		[]string{"status"},
	)

	ExternalCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marine_external_call_failures_total",
			Help: "Context lookup and generation failures absorbed by the analyzers",
		},
		[]string{"service"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marine_external_call_duration_seconds",
			Help:    "Latency of context lookup and generation calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	LookupCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marine_context_cache_total",
			Help: "Context lookup cache hits and misses",
		},
		[]string{"result"},
	)
)
