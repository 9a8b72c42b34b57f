package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/packtrack/packtrack/internal/application/service"
	"github.com/packtrack/packtrack/internal/broker/kafka"
	"github.com/packtrack/packtrack/internal/cache"
	"github.com/packtrack/packtrack/internal/config"
	"github.com/packtrack/packtrack/internal/httpapi"
	"github.com/packtrack/packtrack/internal/integrations/shipstation"
	"github.com/packtrack/packtrack/internal/integrations/ups"
	"github.com/packtrack/packtrack/internal/observability"
	"github.com/packtrack/packtrack/internal/pkg/breaker"
	"github.com/packtrack/packtrack/internal/pkg/ratelimit"
	"github.com/packtrack/packtrack/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewInmem(256)

	var store service.Store
	if cfg.PersistenceEnabled() {
		pool, err := postgres.Connect(ctx, cfg.DSN())
		if err != nil {
			logger.Fatal("postgres connect failed", zap.Error(err))
		}
		defer pool.Close()

		pg := postgres.NewStore(pool, cfg.Retry, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("schema setup failed", zap.Error(err))
		}
		store = pg
		logger.Info("persistence enabled", zap.String("host", cfg.Pg.Host))
	} else {
		logger.Info("persistence disabled, serving from memory only")
	}

	var events service.EventPublisher
	if cfg.EventsEnabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer producer.Close()
		events = producer
		logger.Info("event producer enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	source := shipstation.New(cfg.Fulfillment, logger)
	carrier := ups.New(
		cfg.Carrier,
		ratelimit.New(cfg.Carrier.RatePerSec, cfg.Carrier.RateBurst),
		breaker.New(cfg.Breaker),
		logger,
	)

	svc := service.New(service.Deps{
		Source:   source,
		Carrier:  carrier,
		Results:  cache.NewResultCache(),
		Tracks:   cache.NewTrackingCache(cfg.Cache.TrackingTTL, cfg.Cache.FailureTTL),
		Store:    store,
		Events:   events,
		Logger:   logger,
		Metrics:  metrics,
		OrderTTL: cfg.Cache.OrderTTL,
		StaleMax: cfg.Cache.StaleMax,
		Workers:  cfg.EnrichWorkers,
	})
	svc.WarmStart(ctx)

	server := httpapi.New(svc, logger, metrics)

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
