// Package metrics exposes Prometheus collectors for HTTP traffic and the
// gym's domain events.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gym"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	Registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "member_registrations_total",
		Help:      "Members registered through the public form.",
	})

	Reservations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "class_reservations_total",
		Help:      "Class reservation attempts by outcome.",
	}, []string{"outcome"})

	CheckIns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_checkins_total",
		Help:      "Gym entries registered.",
	})

	CheckOuts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_checkouts_total",
		Help:      "Gym exits registered.",
	})

	ExpiredDeactivations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_expired_deactivations_total",
		Help:      "Members deactivated by the expiration sweep.",
	})

	RemindersSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "membership_reminders_sent_total",
		Help:      "Expiration reminder emails sent.",
	})
)

// Register adds every collector plus the Go and process collectors to reg.
// Collectors that are already registered are ignored.
func Register(reg prometheus.Registerer) error {
	all := []prometheus.Collector{
		HTTPRequests,
		HTTPDuration,
		Registrations,
		Reservations,
		CheckIns,
		CheckOuts,
		ExpiredDeactivations,
		RemindersSent,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range all {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
