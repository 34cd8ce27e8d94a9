package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"GlyphCore/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses   *prometheus.CounterVec
	strength   prometheus.Histogram
	confidence prometheus.Histogram
	points     prometheus.Histogram
	renders    *prometheus.HistogramVec
	cache      *prometheus.CounterVec
	errorsTot  *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New registers the recorder's collectors with reg. A nil reg means the
// default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	scoreBuckets := prometheus.LinearBuckets(0.1, 0.1, 10)

	return &Recorder{
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glyph_analyses_total",
				Help: "Completed analyses by source and classification",
			},
			[]string{"source", "direction", "momentum", "regime"},
		),
		strength: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "glyph_signal_strength",
			Help:    "Distribution of signal strength",
			Buckets: scoreBuckets,
		}),
		confidence: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "glyph_signal_confidence",
			Help:    "Distribution of signal confidence",
			Buckets: scoreBuckets,
		}),
		points: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "glyph_series_points",
			Help:    "Number of points per analyzed series",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		}),
		renders: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glyph_render_duration_seconds",
				Help:    "Render latency by output kind",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		cache: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glyph_cache_requests_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTot: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glyph_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "glyph_analysis_duration_seconds",
				Help:    "Analysis latency by source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
}

// RecordAnalysis counts one analysis and observes its scores.
func (r *Recorder) RecordAnalysis(source string, sig models.Signal, seconds float64) {
	r.analyses.WithLabelValues(source, string(sig.Direction), string(sig.Momentum), string(sig.Regime)).Inc()
	r.strength.Observe(sig.Strength)
	r.confidence.Observe(sig.Confidence)
	r.points.Observe(float64(sig.Len()))
	r.latency.WithLabelValues(source).Observe(seconds)
}

// RecordRender records render latency in seconds.
func (r *Recorder) RecordRender(kind string, seconds float64) {
	r.renders.WithLabelValues(kind).Observe(seconds)
}

// RecordCache records a cache hit or miss.
func (r *Recorder) RecordCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cache.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTot.WithLabelValues(kind).Inc()
}
