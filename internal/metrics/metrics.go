package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "slot_queries_total",
			Help:      "Slot list computations requested.",
		},
	)

	slotCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "slot_cache_hits_total",
			Help:      "Slot list computations served from cache.",
		},
	)

	reservations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "reservations_total",
			Help:      "Bookings committed.",
		},
	)

	reservationConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "reservation_conflicts_total",
			Help:      "Reservation attempts rejected because the slot was taken.",
		},
	)

	cancellations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "cancellations_total",
			Help:      "Bookings cancelled.",
		},
	)

	exportTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotcal",
			Name:      "export_tasks_total",
			Help:      "Export tasks by outcome.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			slotQueries,
			slotCacheHits,
			reservations,
			reservationConflicts,
			cancellations,
			exportTasks,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncSlotQuery() { slotQueries.Inc() }

func IncSlotCacheHit() { slotCacheHits.Inc() }

func IncReservation() { reservations.Inc() }

func IncReservationConflict() { reservationConflicts.Inc() }

func IncCancellation() { cancellations.Inc() }

// IncExportTask records an export task outcome: completed, retry or failed.
func IncExportTask(status string) {
	exportTasks.WithLabelValues(status).Inc()
}
