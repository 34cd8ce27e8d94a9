package repository

import (
	"context"

	"GlyphCore/internal/domain/models"
)

// SignalPublisher ships completed analyses to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, ev *models.SignalEvent) error
	PublishBatch(ctx context.Context, evs []*models.SignalEvent) error
	Close() error
}

type Metrics interface {
	RecordAnalysis(source string, sig models.Signal, seconds float64)
	RecordRender(kind string, seconds float64)
	RecordCache(hit bool)
	RecordError(kind string)
}
