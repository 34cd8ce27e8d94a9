package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"GlyphCore/internal/domain/models"
	domrepo "GlyphCore/internal/domain/repository"
	"GlyphCore/internal/engine"
	"GlyphCore/internal/repository"
	"GlyphCore/internal/services/analytics"
	"GlyphCore/internal/services/render"
	applogger "GlyphCore/pkg/logger"
)

const (
	SourceHTTP   = "http"
	SourceStream = "stream"
	SourceKafka  = "kafka"
)

// SeriesInput is one series to classify plus where it came from.
type SeriesInput struct {
	RequestID string
	Source    string
	Values    []float64
	Labels    []string
}

// SignalService runs the engine behind a cache and reports every completed
// analysis to metrics and the signal topic.
type SignalService struct {
	engine    *engine.Engine
	cache     *repository.SignalCache
	publisher domrepo.SignalPublisher
	metrics   domrepo.Metrics
	html      *render.HTML
	log       *applogger.Logger
	now       func() time.Time
}

func NewSignalService(
	eng *engine.Engine,
	cache *repository.SignalCache,
	publisher domrepo.SignalPublisher,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *SignalService {
	if cache == nil {
		cache = repository.NewSignalCache(nil, 0)
	}
	if publisher == nil {
		publisher = repository.NopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &SignalService{
		engine:    eng,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		html:      render.NewHTML(0, 0),
		log:       l,
		now:       time.Now,
	}
}

// Engine exposes the configured engine, mainly for its canvas size.
func (s *SignalService) Engine() *engine.Engine { return s.engine }

// Analyze classifies in.Values. The second result reports a cache hit. Every
// successful call is recorded and published, cached or not.
func (s *SignalService) Analyze(ctx context.Context, in SeriesInput) (models.Signal, bool, error) {
	start := s.now()

	sig, cached, err := s.classify(ctx, in.Values, in.Labels)
	if err != nil {
		s.metrics.RecordError(errorKind(err))
		return models.Signal{}, false, err
	}

	s.metrics.RecordAnalysis(sourceOr(in.Source), sig, s.now().Sub(start).Seconds())
	s.publish(ctx, in, sig)
	return sig, cached, nil
}

func (s *SignalService) classify(ctx context.Context, values []float64, labels []string) (models.Signal, bool, error) {
	resolved, err := analytics.Validate(values, labels)
	if err != nil {
		return models.Signal{}, false, err
	}

	key := s.cache.Key(values, resolved, s.engine.Config().Thresholds)
	if sig, ok, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn("signal cache get failed", applogger.Error(err))
	} else if ok {
		s.metrics.RecordCache(true)
		return sig.WithSeries(values, resolved), true, nil
	}
	s.metrics.RecordCache(false)

	sig, err := s.engine.Analyze(values, labels)
	if err != nil {
		return models.Signal{}, false, err
	}
	if err := s.cache.Set(ctx, key, sig); err != nil {
		s.log.Warn("signal cache set failed", applogger.Error(err))
	}
	return sig, false, nil
}

// RenderTUI analyzes and draws the series on a width x height canvas. Zero
// dimensions mean the engine's canvas.
func (s *SignalService) RenderTUI(ctx context.Context, in SeriesInput, width, height int) (string, models.Signal, error) {
	sig, _, err := s.Analyze(ctx, in)
	if err != nil {
		return "", models.Signal{}, err
	}

	start := s.now()
	var frame string
	if (width <= 0 && height <= 0) || (width == s.engine.Width() && height == s.engine.Height()) {
		frame = s.engine.RenderTUI(sig)
	} else {
		if width <= 0 {
			width = s.engine.Width()
		}
		if height <= 0 {
			height = s.engine.Height()
		}
		frame = render.NewTUI(width, height).Render(sig)
	}
	s.metrics.RecordRender("tui", s.now().Sub(start).Seconds())
	return frame, sig, nil
}

// RenderHTML analyzes the series and writes an echarts page to w.
func (s *SignalService) RenderHTML(ctx context.Context, w io.Writer, in SeriesInput) (models.Signal, error) {
	sig, _, err := s.Analyze(ctx, in)
	if err != nil {
		return models.Signal{}, err
	}
	start := s.now()
	if err := s.html.Export(w, sig); err != nil {
		s.metrics.RecordError("render_html")
		return models.Signal{}, err
	}
	s.metrics.RecordRender("html", s.now().Sub(start).Seconds())
	return sig, nil
}

func (s *SignalService) publish(ctx context.Context, in SeriesInput, sig models.Signal) {
	ev := &models.SignalEvent{
		ID:        uuid.NewString(),
		RequestID: in.RequestID,
		Source:    sourceOr(in.Source),
		Signal:    sig,
		Points:    sig.Len(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.metrics.RecordError("publish")
		s.log.Warn("signal publish failed",
			applogger.String("request_id", in.RequestID),
			applogger.Error(err),
		)
	}
}

// Close releases the cache and the publisher.
func (s *SignalService) Close() error {
	perr := s.publisher.Close()
	cerr := s.cache.Close()
	if perr != nil {
		return fmt.Errorf("close publisher: %w", perr)
	}
	return cerr
}

func sourceOr(src string) string {
	if src == "" {
		return SourceHTTP
	}
	return src
}

func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case models.IsInvalidInput(err):
		return "invalid_input"
	case models.IsLengthMismatch(err):
		return "length_mismatch"
	default:
		return "analyze"
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, models.Signal, float64) {}
func (nopMetrics) RecordRender(string, float64)                  {}
func (nopMetrics) RecordCache(bool)                              {}
func (nopMetrics) RecordError(string)                            {}
