package di

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"GlyphCore/internal/domain/repository"
	"GlyphCore/internal/engine"
	"GlyphCore/internal/handler/api"
	internalrepo "GlyphCore/internal/repository"
	"GlyphCore/internal/service/ratelimit"
	"GlyphCore/internal/usecase"
	"GlyphCore/pkg/cache"
	"GlyphCore/pkg/config"
	pkgkafka "GlyphCore/pkg/kafka"
	applogger "GlyphCore/pkg/logger"
	"GlyphCore/pkg/metrics"
	"GlyphCore/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder on the default registry.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideEngine builds the signal engine with the configured canvas and
// thresholds.
func ProvideEngine(cfg *config.Config) (*engine.Engine, error) {
	eng, err := engine.New(
		engine.WithWidth(cfg.Canvas.Width),
		engine.WithHeight(cfg.Canvas.Height),
		engine.WithThresholds(cfg.Analyzer),
	)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return eng, nil
}

// ProvideCacheStore picks the cache backend. "none" yields a cache that
// always misses.
func ProvideCacheStore(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.Nop{}, nil
	case "memory":
		return cache.NewMemoryCache(
			cache.WithMemoryMaxSize(cfg.Cache.MaxItems),
			cache.WithMemoryTTL(cfg.Cache.TTL),
		), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.RedisAddr),
		cache.WithRedisPassword(cfg.Cache.RedisPass),
		cache.WithRedisDB(cfg.Cache.RedisDB),
		cache.WithRedisPrefix(cfg.Cache.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return cache.NewLayeredCache(redisCache,
			cache.WithLayeredMemorySize(cfg.Cache.MaxItems),
			cache.WithLayeredMemoryTTL(cfg.Cache.TTL),
		), nil
	}
	return redisCache, nil
}

// ProvideSignalCache wraps the store with the signal key scheme.
func ProvideSignalCache(store cache.Service, cfg *config.Config) *internalrepo.SignalCache {
	return internalrepo.NewSignalCache(store, cfg.Cache.TTL)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is off.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithProducerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideSignalPublisher publishes to the signal topic, or drops events when
// there is no producer.
func ProvideSignalPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SignalPublisher {
	if producer == nil {
		return internalrepo.NopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalTopic)
}

// ProvideSignalService creates the signal use case.
func ProvideSignalService(
	eng *engine.Engine,
	sc *internalrepo.SignalCache,
	pub repository.SignalPublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.SignalService {
	return usecase.NewSignalService(eng, sc, pub, m, l.With(applogger.String("module", "signal")))
}

// ProvideLimiter creates the per-client limiter for /api.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideSignalsHandler creates the echo handler.
func ProvideSignalsHandler(
	l *applogger.Logger,
	svc *usecase.SignalService,
	lim *ratelimit.Limiter,
	m repository.Metrics,
	cfg *config.Config,
) *api.SignalsEchoHandler {
	return api.NewSignalsEchoHandler(l.With(applogger.String("module", "http")), svc, lim, m, api.StreamOptions{
		Window:      cfg.Stream.Window,
		MinInterval: cfg.Stream.MinInterval,
		PingPeriod:  cfg.Stream.PingPeriod,
	})
}

// ProvideKafkaConsumer creates a consumer for series requests, or nil when
// Kafka is off.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerLogger(l.With(applogger.String("module", "kafka"))),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	consumer.WithConsumerHook(pkgkafka.NewHookChain(
		pkgkafka.TraceHook(),
		pkgkafka.HookFuncs{
			Err: func(ctx context.Context, topic string, km kafka.Message, _ []byte, err error) {
				l.Warn("series request failed",
					applogger.String("topic", topic),
					applogger.Int("partition", km.Partition),
					applogger.Int("offset", int(km.Offset)),
					applogger.String("trace_id", pkgkafka.TraceIDFrom(ctx)),
					applogger.Error(err))
			},
		},
	))
	return consumer, nil
}

// ProvideSeriesRequestHandler handles the request topic.
func ProvideSeriesRequestHandler(cfg *config.Config, svc *usecase.SignalService, l *applogger.Logger) *usecase.SeriesRequestHandler {
	return usecase.NewSeriesRequestHandler(cfg.Kafka.RequestTopic, svc, l)
}

// ProvideApp creates the application server. When both a producer and a log
// topic are configured, warn and error lines are aggregated onto that topic.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.SignalsEchoHandler,
	svc *usecase.SignalService,
	lim *ratelimit.Limiter,
	consumer *pkgkafka.Consumer,
	srh *usecase.SeriesRequestHandler,
	producer *pkgkafka.Producer,
) *server.App {
	if producer != nil && cfg.LogCollect.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.LogCollect.Interval,
			CountThreshold: cfg.LogCollect.Threshold,
			Topic:          cfg.LogCollect.Topic,
			Publisher:      producer,
		})
	}

	app := server.New(cfg, l, svc, lim)
	app.SetHTTPHandler(h)
	if consumer != nil {
		app.SetConsumer(consumer, srh)
	}
	return app
}
