package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GlyphCore/internal/service/ratelimit"
	"GlyphCore/internal/usecase"
	"GlyphCore/pkg/config"
	xhttp "GlyphCore/pkg/http"
	pkgkafka "GlyphCore/pkg/kafka"
	applogger "GlyphCore/pkg/logger"
)

// idle buckets older than this are dropped by the limiter sweep
const limiterIdle = 10 * time.Minute

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	svc         *usecase.SignalService
	limiter     *ratelimit.Limiter
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	svc *usecase.SignalService,
	limiter *ratelimit.Limiter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:     cfg,
		log:     l,
		svc:     svc,
		limiter: limiter,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// SetConsumer attaches a Kafka consumer and the handler for its topic.
func (a *App) SetConsumer(c *pkgkafka.Consumer, kh pkgkafka.MessageHandler) {
	a.consumer = c
	a.kh = kh
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.httpHandler, a.log,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(a.cfg.Server.SlowThreshold),
		xhttp.WithCORS(a.cfg.Server.CORS, a.cfg.Server.CORSOrigins...),
		xhttp.WithMetricsPath(metricsPath),
	)

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.limiter != nil {
		go a.sweepLimiter(ctx)
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.limiter.Sweep(limiterIdle); n > 0 {
				a.log.Debug("rate limiter swept", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops all services: HTTP first so no new work comes in,
// then the consumer, then the log collector and the service resources it
// publishes through.
func (a *App) shutdown() error {
	a.log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	a.log.RemoveCollector()

	if a.svc != nil {
		if err := a.svc.Close(); err != nil {
			a.log.Warn("signal service close error", applogger.Error(err))
		}
	}
	return nil
}
