package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestCounter counts all HTTP requests with labels
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records request duration in seconds
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// BookingConflicts counts create/move attempts rejected for overlap
	BookingConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Booking create or move attempts rejected because the room was taken",
		},
		[]string{"operation", "source"},
	)

	// TenantRejections counts requests refused by tenant resolution
	TenantRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tenant_rejections_total",
			Help: "Requests refused during tenant resolution",
		},
		[]string{"reason"},
	)
)

// Registry holds the service collectors plus the Go runtime collectors.
var Registry = newRegistry()

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		RequestCounter,
		RequestDuration,
		BookingConflicts,
		TenantRejections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler exposes the registry for scraping
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordConflict is called whenever a booking is refused for overlap.
// source is "check" when the conflict query caught it and "constraint" when
// the exclusion constraint did.
func RecordConflict(operation, source string) {
	BookingConflicts.WithLabelValues(operation, source).Inc()
}

func RecordTenantRejection(reason string) {
	TenantRejections.WithLabelValues(reason).Inc()
}
