// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SeatReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybook_seat_reservations_total",
		Help: "Seat reservation attempts by result (reserved, rejected, released)",
	}, []string{"result"})

	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybook_bookings_total",
		Help: "Completed booking transactions by outcome (booked, waitlisted)",
	}, []string{"outcome"})

	Promotions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybook_promotions_total",
		Help: "Waitlist promotions by kind (automatic, forced)",
	}, []string{"kind"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skybook_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
