package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livros",
		Name:      "jobs_enqueued_total",
		Help:      "Jobs added to the queue.",
	}, []string{"queue", "kind"})

	jobsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livros",
		Name:      "jobs_processed_total",
		Help:      "Job executions by outcome (done, retry, interrupted, failed).",
	}, []string{"queue", "kind", "outcome"})

	jobsReclaimed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "livros",
		Name:      "jobs_reclaimed_total",
		Help:      "Running jobs reserved again after their reservation expired.",
	}, []string{"queue", "kind"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "livros",
		Name:      "job_duration_seconds",
		Help:      "Time spent running a job handler.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"queue", "kind"})
)
