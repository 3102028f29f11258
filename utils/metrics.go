// File: utils/metrics.go
package utils

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fieldservice",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "upstream_requests_total",
		Help:      "Record store calls by table, method and outcome.",
	}, []string{"table", "method", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fieldservice",
		Name:      "upstream_request_duration_seconds",
		Help:      "Record store call latency including retries.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"table", "method"})

	bookingOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fieldservice",
		Name:      "booking_attempts_total",
		Help:      "Appointment booking attempts by outcome.",
	}, []string{"outcome"})

	dependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "fieldservice",
		Name:      "dependency_up",
		Help:      "1 when the last health check of a dependency succeeded.",
	}, []string{"dependency"})
)

// MetricsMiddleware records request counts and latency per matched route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpstream records one logical record-store call.
func ObserveUpstream(table, method, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(table, method, outcome).Inc()
	upstreamDuration.WithLabelValues(table, method).Observe(elapsed.Seconds())
}

// ObserveBooking counts a booking attempt; outcome is "booked" or an error kind.
func ObserveBooking(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

// SetDependencyUp exports the last health check result.
func SetDependencyUp(name string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	dependencyUp.WithLabelValues(name).Set(v)
}
