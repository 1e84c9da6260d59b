// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// HTTP request metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytlength_http_request_duration_seconds",
		Help:    "HTTP request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytlength_http_requests_in_flight",
		Help: "Current number of HTTP requests being served",
	})

	// Upstream (YouTube Data API) metrics
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytlength_upstream_requests_total",
		Help: "YouTube Data API calls by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytlength_upstream_request_duration_seconds",
		Help:    "YouTube Data API call latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// Collection metrics
	CollectorPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytlength_collector_pages_total",
		Help: "Playlist item pages fetched",
	})

	CollectorItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ytlength_collector_playlist_items",
		Help:    "Number of videos collected per playlist",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// Reports
	Reports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytlength_reports_total",
		Help: "Playlist duration reports by outcome",
	}, []string{"outcome"})
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(endpoint string, start time.Time, err error) {
	UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	UpstreamRequests.WithLabelValues(endpoint, outcome(err)).Inc()
}

// ObserveReport records the outcome of one report build.
func ObserveReport(err error) {
	Reports.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}
