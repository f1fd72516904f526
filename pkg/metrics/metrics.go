package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reservation related metrics
	ReservationsCreated  prometheus.Counter
	ReservationsRejected *prometheus.CounterVec
	ReservationLatency   prometheus.Histogram

	// Overdue sweep metrics
	SweepDuration           prometheus.Histogram
	SweepsSkipped           prometheus.Counter
	NotificationsEmitted    *prometheus.CounterVec
	NotificationsSuppressed prometheus.Counter

	// Legacy mirror metrics
	LegacySyncResults *prometheus.CounterVec
}

// New creates metrics without registering them, for callers that
// manage their own registry (and for tests).
func New(namespace string) *Metrics {
	return &Metrics{
		ReservationsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Total number of reservations committed to the ledger",
		}),
		ReservationsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "Total number of rejected reservation attempts",
		}, []string{"reason"}),
		ReservationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reservation_create_duration_seconds",
			Help:      "Time spent creating a reservation",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overdue_sweep_duration_seconds",
			Help:      "Time spent running an overdue sweep",
		}),
		SweepsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_sweeps_skipped_total",
			Help:      "Total number of sweep runs skipped because another sweep held the lease",
		}),
		NotificationsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notification events pushed through the bus",
		}, []string{"event_type"}),
		NotificationsSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of notifications suppressed by the idempotency log",
		}),
		LegacySyncResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_sync_results_total",
			Help:      "Outcomes of best-effort legacy catalog status writes",
		}, []string{"status"}),
	}
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ReservationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Total number of reservations committed to the ledger",
		}),
		ReservationsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_rejected_total",
			Help:      "Total number of rejected reservation attempts",
		}, []string{"reason"}),
		ReservationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reservation_create_duration_seconds",
			Help:      "Time spent creating a reservation",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overdue_sweep_duration_seconds",
			Help:      "Time spent running an overdue sweep",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		}),
		SweepsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overdue_sweeps_skipped_total",
			Help:      "Total number of sweep runs skipped because another sweep held the lease",
		}),
		NotificationsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_emitted_total",
			Help:      "Total number of notification events pushed through the bus",
		}, []string{"event_type"}),
		NotificationsSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_suppressed_total",
			Help:      "Total number of notifications suppressed by the idempotency log",
		}),
		LegacySyncResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legacy_sync_results_total",
			Help:      "Outcomes of best-effort legacy catalog status writes",
		}, []string{"status"}),
	}
}
