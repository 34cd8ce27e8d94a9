package usecase

import (
	"context"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/services/render"
)

// FrameSender delivers one frame to a stream client.
type FrameSender func(models.StreamFrame) error

// StreamSession analyzes and renders each window a stream pipeline emits and
// sends the result to one client.
type StreamSession struct {
	svc  *SignalService
	tui  *render.TUI
	send FrameSender
}

// NewStreamSession draws on a width x height canvas; zero means the engine's.
func (s *SignalService) NewStreamSession(width, height int, send FrameSender) *StreamSession {
	if width <= 0 {
		width = s.engine.Width()
	}
	if height <= 0 {
		height = s.engine.Height()
	}
	return &StreamSession{svc: s, tui: render.NewTUI(width, height), send: send}
}

// Process implements middleware.Proc.
func (ss *StreamSession) Process(ctx context.Context, values []float64, labels []string) error {
	sig, _, err := ss.svc.Analyze(ctx, SeriesInput{Source: SourceStream, Values: values, Labels: labels})
	if err != nil {
		return ss.send(models.StreamFrame{Points: len(values), Error: err.Error()})
	}
	start := ss.svc.now()
	frame := ss.tui.Render(sig)
	ss.svc.metrics.RecordRender("stream", ss.svc.now().Sub(start).Seconds())
	return ss.send(models.StreamFrame{Signal: &sig, Frame: frame, Points: sig.Len()})
}
