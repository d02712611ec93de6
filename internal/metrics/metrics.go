// Package metrics exposes Prometheus collectors for the legislation tracker.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Outcome labels shared by the collectors below.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
	OutcomeKept     = "kept"
	OutcomeFiltered = "filtered"
	OutcomeFailed   = "failed"
)

var (
	apiRequestsTotal           *prometheus.CounterVec
	apiRequestDurationSeconds  *prometheus.HistogramVec
	billsTotal                 *prometheus.CounterVec
	jurisdictionsTotal         *prometheus.CounterVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	lastRunBills               prometheus.Gauge
	lastRunTimestampSeconds    prometheus.Gauge
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times; every Observe helper calls it.
func Init() {
	once.Do(func() {
		apiRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_api_requests_total",
				Help: "Total number of LegiScan API requests, labeled by operation and outcome.",
			},
			[]string{"op", "outcome"},
		)

		apiRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_api_request_duration_seconds",
				Help:    "Histogram of LegiScan API request latencies, labeled by operation.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"op"},
		)

		billsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_bills_total",
				Help: "Total number of bill details processed, labeled by jurisdiction and outcome.",
			},
			[]string{"jurisdiction", "outcome"},
		)

		jurisdictionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_jurisdictions_total",
				Help: "Total number of jurisdiction searches, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		lastRunBills = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_last_run_bills",
				Help: "Number of bills published by the most recent run.",
			},
		)

		lastRunTimestampSeconds = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_last_run_timestamp_seconds",
				Help: "Unix time of the most recent successful run.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAPIRequest records one LegiScan API call.
func ObserveAPIRequest(op, outcome string, duration time.Duration) {
	Init()
	apiRequestsTotal.WithLabelValues(op, outcome).Inc()
	apiRequestDurationSeconds.WithLabelValues(op).Observe(duration.Seconds())
}

// ObserveBill increments the per-jurisdiction bill counter.
func ObserveBill(jurisdiction, outcome string) {
	Init()
	billsTotal.WithLabelValues(jurisdiction, outcome).Inc()
}

// ObserveJurisdiction increments the jurisdiction search counter.
func ObserveJurisdiction(outcome string) {
	Init()
	jurisdictionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveRun records the size and completion time of a successful run.
func ObserveRun(bills int, finished time.Time) {
	Init()
	lastRunBills.Set(float64(bills))
	lastRunTimestampSeconds.Set(float64(finished.Unix()))
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Push sends the default registry to a Prometheus Pushgateway. A one-shot run
// exits before any scrape could happen, so this is how its metrics leave the process.
func Push(ctx context.Context, gatewayURL, job string) error {
	if strings.TrimSpace(gatewayURL) == "" {
		return nil
	}
	if job == "" {
		job = "legislation_tracker"
	}
	if err := push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
