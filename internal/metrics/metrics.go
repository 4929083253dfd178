package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "advisory_http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "advisory_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	LocksAcquired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_entry_locks_acquired_total",
		Help: "Entry locks granted",
	})

	LockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_entry_lock_conflicts_total",
		Help: "Acquire attempts refused because another user holds the lock",
	})

	StaleLockTakeovers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_stale_lock_takeovers_total",
		Help: "Locks taken over after exceeding the staleness threshold",
	})

	SheetsDistributed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_sheets_distributed_total",
		Help: "Sheet distribution operations",
	})

	AssignmentsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_assignments_submitted_total",
		Help: "Assignments transitioned to completed",
	})

	EditTrackingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "advisory_edit_tracking_failures_total",
		Help: "Best-effort edit tracking writes that failed",
	})
)
