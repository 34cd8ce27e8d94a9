package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"GlyphCore/internal/domain/models"
	pkgkafka "GlyphCore/pkg/kafka"
	applogger "GlyphCore/pkg/logger"
)

// SeriesRequestHandler consumes SeriesRequest messages and analyzes them.
// The resulting SignalEvent goes out through the service's publisher.
type SeriesRequestHandler struct {
	topic string
	svc   *SignalService
	log   *applogger.Logger
}

func NewSeriesRequestHandler(topic string, svc *SignalService, l *applogger.Logger) *SeriesRequestHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &SeriesRequestHandler{topic: topic, svc: svc, log: l}
}

func (h *SeriesRequestHandler) Topic() string { return h.topic }

// Handle decodes and analyzes one request. Malformed payloads and series the
// engine rejects are permanent failures; nothing else is expected to fail.
func (h *SeriesRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req models.SeriesRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.svc.metrics.RecordError("consumer_unmarshal")
		return pkgkafka.Permanent(fmt.Errorf("decode series request: %w", err))
	}
	if req.ID == "" {
		req.ID = pkgkafka.TraceIDFrom(ctx)
	}
	src := req.Source
	if src == "" {
		src = SourceKafka
	}

	sig, _, err := h.svc.Analyze(ctx, SeriesInput{
		RequestID: req.ID,
		Source:    src,
		Values:    req.Values,
		Labels:    req.Labels,
	})
	if err != nil {
		h.log.Warn("series request rejected",
			applogger.String("request_id", req.ID),
			applogger.Int("points", len(req.Values)),
			applogger.Error(err),
		)
		return pkgkafka.Permanent(err)
	}

	h.log.Debug("series request analyzed",
		applogger.String("request_id", req.ID),
		applogger.String("direction", string(sig.Direction)),
		applogger.String("regime", string(sig.Regime)),
	)
	return nil
}

var _ pkgkafka.MessageHandler = (*SeriesRequestHandler)(nil)
