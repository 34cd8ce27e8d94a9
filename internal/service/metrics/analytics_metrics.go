package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	EndpointLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "glyph",
			Subsystem: "api",
			Name:      "latency_seconds",
			Help:      "Latency of signal endpoints",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EndpointErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "glyph",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by signal endpoint and code",
		},
		[]string{"endpoint", "code"},
	)

	StreamSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "glyph",
			Subsystem: "stream",
			Name:      "sessions",
			Help:      "Open websocket stream sessions",
		},
	)
)

// Register adds the endpoint collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(EndpointLatency, EndpointErrors, StreamSessions)
	})
}

// Observe records the time since start for endpoint.
func Observe(endpoint string, start time.Time) {
	EndpointLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// Fail counts one error for endpoint.
func Fail(endpoint, code string) {
	EndpointErrors.WithLabelValues(endpoint, code).Inc()
}
