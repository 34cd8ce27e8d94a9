package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"GlyphCore/internal/domain/models"
	domrepo "GlyphCore/internal/domain/repository"
)

// Proc receives a snapshot of the window each time the pipeline emits.
type Proc interface {
	Process(ctx context.Context, values []float64, labels []string) error
}

// RealtimePipeline sits between a stream client and the analyzer. It
// validates points, keeps the last window of them and throttles how often the
// window is handed downstream. Points that arrive inside the throttle
// interval are kept and go out with the next emit or Flush.
type RealtimePipeline struct {
	proc        Proc
	metrics     domrepo.Metrics
	window      int
	minInterval time.Duration
	now         func() time.Time

	mu       sync.Mutex
	values   []float64
	labels   []string
	seq      int
	lastEmit time.Time
	pending  bool
}

type PipelineOption func(*RealtimePipeline)

// WithWindow sets how many of the most recent points are kept.
func WithWindow(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.window = n
		}
	}
}

// WithMinInterval sets the minimum time between two emits. Zero emits on
// every point.
func WithMinInterval(d time.Duration) PipelineOption {
	return func(p *RealtimePipeline) {
		if d >= 0 {
			p.minInterval = d
		}
	}
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	p := &RealtimePipeline{
		proc:        proc,
		metrics:     metrics,
		window:      120,
		minInterval: 100 * time.Millisecond,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.values = make([]float64, 0, p.window)
	p.labels = make([]string, 0, p.window)
	return p
}

// Push validates pt and appends it to the window. It reports whether the
// window was handed to the processor.
func (p *RealtimePipeline) Push(ctx context.Context, pt models.StreamPoint) (bool, error) {
	if err := validatePoint(pt); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return false, err
	}

	p.mu.Lock()
	label := pt.Label
	if label == "" {
		label = strconv.Itoa(p.seq)
	}
	p.seq++
	if len(p.values) == p.window {
		copy(p.values, p.values[1:])
		copy(p.labels, p.labels[1:])
		p.values = p.values[:p.window-1]
		p.labels = p.labels[:p.window-1]
	}
	p.values = append(p.values, *pt.Value)
	p.labels = append(p.labels, label)
	p.pending = true

	now := p.now()
	if !p.lastEmit.IsZero() && now.Sub(p.lastEmit) < p.minInterval {
		p.mu.Unlock()
		return false, nil
	}
	values, labels := p.snapshot(now)
	p.mu.Unlock()

	return true, p.emit(ctx, values, labels)
}

// Flush emits the window if points arrived since the last emit.
func (p *RealtimePipeline) Flush(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if !p.pending {
		p.mu.Unlock()
		return false, nil
	}
	values, labels := p.snapshot(p.now())
	p.mu.Unlock()

	return true, p.emit(ctx, values, labels)
}

// Len is the number of points currently in the window.
func (p *RealtimePipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.values)
}

// snapshot copies the window and marks it emitted. Caller holds the lock.
func (p *RealtimePipeline) snapshot(now time.Time) ([]float64, []string) {
	p.lastEmit = now
	p.pending = false
	return append([]float64(nil), p.values...), append([]string(nil), p.labels...)
}

func (p *RealtimePipeline) emit(ctx context.Context, values []float64, labels []string) error {
	if err := p.proc.Process(ctx, values, labels); err != nil {
		p.metrics.RecordError("pipeline_process")
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	return nil
}

func validatePoint(pt models.StreamPoint) error {
	if pt.Value == nil {
		return fmt.Errorf("value missing: %w", models.ErrInvalidInput)
	}
	if math.IsNaN(*pt.Value) || math.IsInf(*pt.Value, 0) {
		return fmt.Errorf("value %v: %w", *pt.Value, models.ErrInvalidInput)
	}
	if len(pt.Label) > 64 {
		return fmt.Errorf("label longer than 64 bytes: %w", models.ErrInvalidInput)
	}
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, models.Signal, float64) {}
func (nopMetrics) RecordRender(string, float64)                  {}
func (nopMetrics) RecordCache(bool)                              {}
func (nopMetrics) RecordError(string)                            {}
