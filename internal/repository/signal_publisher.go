package repository

import (
	"context"

	"github.com/segmentio/kafka-go"

	"GlyphCore/internal/domain/models"
	"GlyphCore/internal/domain/repository"
	pkgkafka "GlyphCore/pkg/kafka"
)

// batchWriter is the part of pkgkafka.Producer the publisher uses.
type batchWriter interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
	Close() error
}

// KafkaPublisher implements SignalPublisher for Kafka. Events are keyed by
// source so each source keeps its order on one partition.
type KafkaPublisher struct {
	producer batchWriter
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	return p.PublishBatch(ctx, []*models.SignalEvent{ev})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, evs []*models.SignalEvent) error {
	msgs := make([]pkgkafka.Message, 0, len(evs))
	for _, ev := range evs {
		if ev == nil {
			continue
		}
		m := pkgkafka.Message{Key: []byte(ev.Source), Value: ev}
		if ev.RequestID != "" {
			m.Headers = []kafka.Header{{Key: "trace_id", Value: []byte(ev.RequestID)}}
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return nil
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.SignalEvent) error        { return nil }
func (NopPublisher) PublishBatch(context.Context, []*models.SignalEvent) error { return nil }
func (NopPublisher) Close() error                                              { return nil }
