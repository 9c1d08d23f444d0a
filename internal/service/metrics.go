package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// claimsAccepted counts subtasks newly written into a report.
	claimsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "claims",
		Name:      "accepted_total",
		Help:      "Subtask claims accepted into a daily report",
	})

	// claimsRejected counts requested subtasks already held by another user.
	claimsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "claims",
		Name:      "rejected_total",
		Help:      "Subtask claims rejected because another user holds them",
	})

	// claimConflicts counts write attempts that lost a race on the unique slot index.
	claimConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "claims",
		Name:      "conflicts_total",
		Help:      "Claim writes retried after a concurrent writer took the slot",
	})

	// cascadeSkipped counts cascade steps dropped by a failed lookup or write.
	// Labels: step (task, project)
	cascadeSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "cascade",
		Name:      "skipped_total",
		Help:      "Report cascade steps skipped after an error",
	}, []string{"step"})

	// projectRecomputes counts project aggregate recomputations.
	// Labels: trigger (mutation, cascade, sweep)
	projectRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracker",
		Subsystem: "projects",
		Name:      "recomputes_total",
		Help:      "Project aggregate recomputations",
	}, []string{"trigger"})

	// reconcileDuration observes end-to-end claim reconciliation time, retries included.
	reconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tracker",
		Subsystem: "claims",
		Name:      "reconcile_duration_seconds",
		Help:      "Time spent reconciling one claim request",
		Buckets:   prometheus.DefBuckets,
	})
)
