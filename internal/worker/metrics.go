package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_worker_jobs_claimed_total",
			Help: "Total number of jobs claimed by this worker pool.",
		},
	)
	jobsLost = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_worker_jobs_lost_total",
			Help: "Total number of pending jobs claimed by another worker first.",
		},
	)
	jobsSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_worker_jobs_succeeded_total",
			Help: "Total number of jobs that completed with a persisted story.",
		},
	)
	jobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lingo_worker_jobs_failed_total",
			Help: "Total number of jobs failed, partitioned by failure reason.",
		},
		[]string{"reason"},
	)
	jobsAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_worker_jobs_abandoned_total",
			Help: "Total number of jobs abandoned because the row left the running state mid-flight.",
		},
	)
	jobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lingo_worker_job_duration_seconds",
			Help:    "Histogram of end-to-end job processing durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)
	staleJobsRequeued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lingo_worker_stale_jobs_requeued_total",
			Help: "Total number of stale running jobs reset to pending by the sweep.",
		},
	)
)
