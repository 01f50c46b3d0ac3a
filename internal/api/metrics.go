package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lora/app"
	"lora/domain/analysis"
)

// Metrics holds the HTTP and analysis collectors on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	tested      prometheus.Histogram
	significant prometheus.Histogram
}

var _ app.Observer = (*Metrics)(nil)

// NewMetrics registers every collector under namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Enrichment runs, split by whether the session cache served them.",
		}, []string{"cached"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Wall time of enrichment runs.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		tested: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "terms_tested",
			Help:      "Terms tested per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		significant: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "terms_significant",
			Help:      "Significant terms per run.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
	}
	m.registry.MustRegister(m.requests, m.latency, m.runs, m.runDuration, m.tested, m.significant)
	return m
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records one request sample per handled route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveRun implements app.Observer.
func (m *Metrics) ObserveRun(summary analysis.Summary, elapsed time.Duration, cached bool) {
	m.runs.WithLabelValues(strconv.FormatBool(cached)).Inc()
	if cached {
		return
	}
	m.runDuration.Observe(elapsed.Seconds())
	m.tested.Observe(float64(summary.Tested))
	m.significant.Observe(float64(summary.Significant))
}
