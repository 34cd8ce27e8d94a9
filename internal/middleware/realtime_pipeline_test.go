package middleware

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"GlyphCore/internal/domain/models"
)

type recordingProc struct {
	calls  int
	values []float64
	labels []string
	err    error
}

func (r *recordingProc) Process(_ context.Context, values []float64, labels []string) error {
	r.calls++
	r.values, r.labels = values, labels
	return r.err
}

type countingMetrics struct{ errors map[string]int }

func (m *countingMetrics) RecordAnalysis(string, models.Signal, float64) {}
func (m *countingMetrics) RecordRender(string, float64)                  {}
func (m *countingMetrics) RecordCache(bool)                              {}
func (m *countingMetrics) RecordError(kind string)                       { m.errors[kind]++ }

func point(v float64, label string) models.StreamPoint {
	return models.StreamPoint{Value: &v, Label: label}
}

func newTestPipeline(proc Proc, opts ...PipelineOption) (*RealtimePipeline, *countingMetrics, *time.Time) {
	m := &countingMetrics{errors: map[string]int{}}
	clock := time.Unix(1_700_000_000, 0)
	p := NewRealtimePipeline(proc, m, opts...)
	p.now = func() time.Time { return clock }
	return p, m, &clock
}

func TestPipelineRollingWindow(t *testing.T) {
	proc := &recordingProc{}
	p, _, _ := newTestPipeline(proc, WithWindow(3), WithMinInterval(0))
	ctx := context.Background()

	for i, v := range []float64{1, 2, 3, 4, 5} {
		emitted, err := p.Push(ctx, point(v, ""))
		if err != nil || !emitted {
			t.Fatalf("push %d: emitted=%v err=%v", i, emitted, err)
		}
	}
	if proc.calls != 5 || p.Len() != 3 {
		t.Fatalf("calls=%d len=%d", proc.calls, p.Len())
	}
	want := []float64{3, 4, 5}
	for i := range want {
		if proc.values[i] != want[i] {
			t.Fatalf("window = %v, want %v", proc.values, want)
		}
	}
	if proc.labels[0] != "2" || proc.labels[2] != "4" {
		t.Fatalf("positional labels should keep counting: %v", proc.labels)
	}
}

func TestPipelineThrottleAndFlush(t *testing.T) {
	proc := &recordingProc{}
	p, _, clock := newTestPipeline(proc, WithMinInterval(time.Second))
	ctx := context.Background()

	if ok, _ := p.Push(ctx, point(1, "a")); !ok {
		t.Fatalf("first point should emit")
	}
	*clock = clock.Add(100 * time.Millisecond)
	if ok, _ := p.Push(ctx, point(2, "b")); ok {
		t.Fatalf("second point inside interval should be held")
	}
	if proc.calls != 1 {
		t.Fatalf("calls = %d", proc.calls)
	}

	if ok, err := p.Flush(ctx); !ok || err != nil {
		t.Fatalf("flush should emit held points: %v %v", ok, err)
	}
	if proc.calls != 2 || len(proc.values) != 2 || proc.labels[1] != "b" {
		t.Fatalf("flush snapshot: calls=%d %v %v", proc.calls, proc.values, proc.labels)
	}
	if ok, _ := p.Flush(ctx); ok {
		t.Fatalf("nothing pending, flush should be a no-op")
	}

	*clock = clock.Add(2 * time.Second)
	if ok, _ := p.Push(ctx, point(3, "")); !ok {
		t.Fatalf("point after interval should emit")
	}
}

func TestPipelineRejectsBadPoints(t *testing.T) {
	proc := &recordingProc{}
	p, m, _ := newTestPipeline(proc)
	ctx := context.Background()

	bad := []models.StreamPoint{
		{},
		point(math.NaN(), ""),
		point(math.Inf(-1), ""),
		point(1, string(make([]byte, 65))),
	}
	for i, pt := range bad {
		if _, err := p.Push(ctx, pt); !errors.Is(err, models.ErrInvalidInput) {
			t.Fatalf("case %d: err = %v", i, err)
		}
	}
	if p.Len() != 0 || proc.calls != 0 || m.errors["pipeline_validate"] != len(bad) {
		t.Fatalf("len=%d calls=%d errors=%v", p.Len(), proc.calls, m.errors)
	}
}

func TestPipelineDownstreamError(t *testing.T) {
	proc := &recordingProc{err: errors.New("closed")}
	p, m, _ := newTestPipeline(proc)
	if _, err := p.Push(context.Background(), point(1, "")); err == nil {
		t.Fatalf("expected downstream error")
	}
	if m.errors["pipeline_process"] != 1 {
		t.Fatalf("errors = %v", m.errors)
	}
}
