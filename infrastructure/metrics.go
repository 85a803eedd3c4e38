package infrastructure

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devconnect",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the API.",
		},
		[]string{"method", "route", "code"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devconnect",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	applicationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devconnect",
			Subsystem: "events",
			Name:      "application_events_total",
			Help:      "Application events grouped by stage (published, publish_failed, handled, handle_failed).",
		},
		[]string{"stage"},
	)
	screeningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devconnect",
			Subsystem: "screening",
			Name:      "screenings_total",
			Help:      "Completed application screenings grouped by scorer.",
		},
		[]string{"scorer"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			applicationEventsTotal,
			screeningsTotal,
		)
	})
}

// MetricsMiddleware records request counts and latency keyed by the matched route template.
func MetricsMiddleware() gin.HandlerFunc {
	RegisterMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() gin.HandlerFunc {
	RegisterMetrics()
	return gin.WrapH(promhttp.Handler())
}

func ObserveApplicationEvent(stage string) {
	applicationEventsTotal.WithLabelValues(stage).Inc()
}

func ObserveScreening(scorer string) {
	screeningsTotal.WithLabelValues(scorer).Inc()
}
