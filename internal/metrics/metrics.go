package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventdesk"

// Registry holds all server metrics; the default registry stays unused
// so tests can re-register freely.
var Registry = prometheus.NewRegistry()

var (
	// HTTPRequestsTotal counts completed HTTP requests.
	HTTPRequestsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Completed HTTP requests",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration records request latency.
	HTTPRequestDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method"},
	)

	// AdmissionsTotal counts registration admission decisions by outcome:
	// admitted, capacity, duplicate, past_event, event_not_found, invalid.
	AdmissionsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_admissions_total",
			Help:      "Registration admission decisions by outcome",
		},
		[]string{"outcome"},
	)

	// WithdrawalsTotal counts withdrawn registrations.
	WithdrawalsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registration_withdrawals_total",
			Help:      "Withdrawn registrations",
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Handler serves the registry for Prometheus scrapes.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
