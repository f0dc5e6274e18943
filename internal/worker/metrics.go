package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultImported  = "imported"
	resultDuplicate = "duplicate"
	resultRetried   = "retried"
	resultRejected  = "rejected"
)

var (
	batchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "job_tracker_worker_batches_total",
			Help: "Bulk import batches handled, by result",
		},
		[]string{"result"},
	)

	entriesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "job_tracker_worker_entries_imported_total",
			Help: "Activity log entries stored from bulk imports",
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "job_tracker_worker_batch_duration_seconds",
			Help:    "Time spent storing one batch",
			Buckets: prometheus.DefBuckets,
		},
	)
)
