// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OrderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_order_transitions_total",
			Help: "Order status transitions committed, by target status",
		},
		[]string{"to"},
	)

	EventsPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillment_events_publish_failures_total",
			Help: "Status change batches that could not be published",
		},
	)

	GeocodeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_geocode_requests_total",
			Help: "Calls to the geocoding provider, by outcome",
		},
		[]string{"outcome"},
	)

	GeocodeRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fulfillment_geocode_request_duration_seconds",
			Help:    "Duration of geocoding provider calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	JobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_job_runs_total",
			Help: "Scheduled job runs, by job and outcome (ok, error, skipped)",
		},
		[]string{"job", "outcome"},
	)

	JobRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_job_run_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_http_request_duration_seconds",
			Help:    "Duration of API requests, by route and status code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)
)

// Register registers every collector with reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		OrderTransitionsTotal,
		EventsPublishFailuresTotal,
		GeocodeRequestsTotal,
		GeocodeRequestDuration,
		JobRunsTotal,
		JobRunDuration,
		HTTPRequestDuration,
	)
}
