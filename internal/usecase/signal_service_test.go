package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/engine"
	"GlyphCore/internal/repository"
	"GlyphCore/pkg/cache"
	pkgkafka "GlyphCore/pkg/kafka"
)

type memPublisher struct {
	mu     sync.Mutex
	events []*models.SignalEvent
	err    error
}

func (p *memPublisher) Publish(_ context.Context, ev *models.SignalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *memPublisher) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	for _, ev := range evs {
		_ = p.Publish(ctx, ev)
	}
	return p.err
}

func (p *memPublisher) Close() error { return nil }

type memMetrics struct {
	mu       sync.Mutex
	analyses map[string]int
	hits     int
	misses   int
	errors   map[string]int
	renders  map[string]int
}

func newMemMetrics() *memMetrics {
	return &memMetrics{analyses: map[string]int{}, errors: map[string]int{}, renders: map[string]int{}}
}

func (m *memMetrics) RecordAnalysis(source string, _ models.Signal, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[source]++
}

func (m *memMetrics) RecordRender(kind string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renders[kind]++
}

func (m *memMetrics) RecordCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

func (m *memMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func newTestService(t *testing.T) (*SignalService, *memPublisher, *memMetrics) {
	t.Helper()
	pub := &memPublisher{}
	met := newMemMetrics()
	mem := cache.NewMemoryCache()
	svc := NewSignalService(engine.MustNew(), repository.NewSignalCache(mem, time.Minute), pub, met, nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, pub, met
}

var rising = []float64{10, 11, 12, 13, 14, 15, 16, 17}

func TestAnalyzeCachesAndPublishes(t *testing.T) {
	svc, pub, met := newTestService(t)
	ctx := context.Background()

	first, cached, err := svc.Analyze(ctx, SeriesInput{RequestID: "r1", Values: rising})
	if err != nil || cached {
		t.Fatalf("first analyze: cached=%v err=%v", cached, err)
	}
	second, cached, err := svc.Analyze(ctx, SeriesInput{RequestID: "r2", Values: rising})
	if err != nil || !cached {
		t.Fatalf("second analyze should hit: cached=%v err=%v", cached, err)
	}
	if first.Direction != second.Direction || first.Confidence != second.Confidence {
		t.Fatalf("cached signal differs: %+v vs %+v", first, second)
	}
	if second.Len() != len(rising) || second.Labels()[0] != "0" {
		t.Fatalf("cached signal must be rebound to the series: len=%d labels=%v", second.Len(), second.Labels())
	}

	if met.hits != 1 || met.misses != 1 || met.analyses[SourceHTTP] != 2 {
		t.Fatalf("metrics: %+v", met)
	}
	if len(pub.events) != 2 || pub.events[0].RequestID != "r1" || pub.events[1].RequestID != "r2" {
		t.Fatalf("published: %+v", pub.events)
	}
	if pub.events[1].Points != len(rising) {
		t.Fatalf("cached event lost its point count: %+v", pub.events[1])
	}
	if pub.events[0].ID == "" || pub.events[0].Source != SourceHTTP {
		t.Fatalf("event id/source: %+v", pub.events[0])
	}
}

func TestAnalyzeErrors(t *testing.T) {
	svc, pub, met := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Analyze(ctx, SeriesInput{}); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("empty: %v", err)
	}
	if _, _, err := svc.Analyze(ctx, SeriesInput{Values: []float64{1, 2}, Labels: []string{"a"}}); !errors.Is(err, engine.ErrLengthMismatch) {
		t.Fatalf("mismatch: %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("failures must not publish")
	}
	if met.errors["invalid_input"] != 1 || met.errors["length_mismatch"] != 1 {
		t.Fatalf("errors: %v", met.errors)
	}
}

func TestAnalyzeValidatesBeforeCache(t *testing.T) {
	svc, _, met := newTestService(t)
	ctx := context.Background()
	values := []float64{1, 2}

	if _, cached, err := svc.Analyze(ctx, SeriesInput{Values: values, Labels: []string{"a b", "c"}}); err != nil || cached {
		t.Fatalf("seed: cached=%v err=%v", cached, err)
	}
	if _, _, err := svc.Analyze(ctx, SeriesInput{Values: values, Labels: []string{"a", "b", "c"}}); !errors.Is(err, engine.ErrLengthMismatch) {
		t.Fatalf("mismatched labels must fail even when a similar key is cached: %v", err)
	}
	sig, cached, err := svc.Analyze(ctx, SeriesInput{Values: values, Labels: []string{"a", "b c"}})
	if err != nil || cached {
		t.Fatalf("different labels must not share an entry: cached=%v err=%v", cached, err)
	}
	if got := sig.Labels(); got[0] != "a" || got[1] != "b c" {
		t.Fatalf("labels: %v", got)
	}
	if met.hits != 0 {
		t.Fatalf("hits: %d", met.hits)
	}
}

func TestPublishFailureDoesNotFailAnalyze(t *testing.T) {
	svc, pub, met := newTestService(t)
	pub.err = errors.New("broker down")
	if _, _, err := svc.Analyze(context.Background(), SeriesInput{Values: rising}); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if met.errors["publish"] != 1 {
		t.Fatalf("errors: %v", met.errors)
	}
}

func TestRenderTUISizes(t *testing.T) {
	svc, _, met := newTestService(t)
	ctx := context.Background()

	frame, _, err := svc.RenderTUI(ctx, SeriesInput{Values: rising}, 0, 0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if lines := strings.Split(frame, "\n"); len(lines) != 24 {
		t.Fatalf("default canvas: %d lines", len(lines))
	}

	frame, _, err = svc.RenderTUI(ctx, SeriesInput{Values: rising}, 40, 10)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(frame, "\n")
	if len(lines) != 10 {
		t.Fatalf("custom canvas: %d lines", len(lines))
	}
	for i, l := range lines {
		if n := len([]rune(l)); n > 40 {
			t.Fatalf("line %d is %d wide", i, n)
		}
	}
	if met.renders["tui"] != 2 {
		t.Fatalf("renders: %v", met.renders)
	}
}

func TestRenderHTML(t *testing.T) {
	svc, _, _ := newTestService(t)
	var buf bytes.Buffer
	if _, err := svc.RenderHTML(context.Background(), &buf, SeriesInput{Values: rising, Labels: []string{"a", "b", "c", "d", "e", "f", "g", "h"}}); err != nil {
		t.Fatalf("html: %v", err)
	}
	if !strings.Contains(buf.String(), "echarts") {
		t.Fatalf("no chart in output")
	}
}

func TestStreamSession(t *testing.T) {
	svc, _, met := newTestService(t)
	var frames []models.StreamFrame
	ss := svc.NewStreamSession(30, 9, func(f models.StreamFrame) error {
		frames = append(frames, f)
		return nil
	})

	if err := ss.Process(context.Background(), []float64{1, 2, 3}, []string{"a", "b", "c"}); err != nil {
		t.Fatalf("process: %v", err)
	}
	if err := ss.Process(context.Background(), []float64{1, 2}, []string{"a"}); err != nil {
		t.Fatalf("error frames are sent, not returned: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("frames = %d", len(frames))
	}
	if frames[0].Signal == nil || frames[0].Points != 3 || len(strings.Split(frames[0].Frame, "\n")) != 9 {
		t.Fatalf("frame 0: %+v", frames[0])
	}
	if frames[1].Error == "" || frames[1].Signal != nil {
		t.Fatalf("frame 1 should carry the error: %+v", frames[1])
	}
	if met.analyses[SourceStream] != 1 || met.renders["stream"] != 1 {
		t.Fatalf("metrics: analyses=%v renders=%v", met.analyses, met.renders)
	}
}

func TestSeriesRequestHandler(t *testing.T) {
	svc, pub, _ := newTestService(t)
	h := NewSeriesRequestHandler("glyph.series", svc, nil)
	if h.Topic() != "glyph.series" {
		t.Fatalf("topic = %s", h.Topic())
	}

	body, _ := json.Marshal(models.SeriesRequest{ID: "req-7", Values: []float64{5, 4, 3, 2}, Source: "batch"})
	if err := h.Handle(context.Background(), body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].RequestID != "req-7" || pub.events[0].Source != "batch" {
		t.Fatalf("events: %+v", pub.events)
	}
	if pub.events[0].Signal.Direction != models.DirectionDown {
		t.Fatalf("direction = %s", pub.events[0].Signal.Direction)
	}

	ctx := pkgkafka.WithTraceID(context.Background(), "trace-1")
	body, _ = json.Marshal(models.SeriesRequest{Values: []float64{1, 2}})
	if err := h.Handle(ctx, body); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if pub.events[1].RequestID != "trace-1" || pub.events[1].Source != SourceKafka {
		t.Fatalf("fallbacks: %+v", pub.events[1])
	}

	var perm *pkgkafka.PermanentError
	if err := h.Handle(context.Background(), []byte("{nope")); !errors.As(err, &perm) {
		t.Fatalf("malformed payload should be permanent: %v", err)
	}
	body, _ = json.Marshal(models.SeriesRequest{ID: "empty"})
	if err := h.Handle(context.Background(), body); !errors.As(err, &perm) || !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("empty series should be permanent invalid input: %v", err)
	}
}
