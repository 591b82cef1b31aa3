package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/eway-recurring/internal/application"
	"github.com/DanielPopoola/eway-recurring/internal/application/services"
	"github.com/DanielPopoola/eway-recurring/internal/config"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/events"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/eway"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/lock"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/metrics"
	"github.com/DanielPopoola/eway-recurring/internal/infrastructure/persistence/postgres"
	"github.com/DanielPopoola/eway-recurring/internal/worker"
	"github.com/redis/go-redis/v9"
)

// app holds everything the commands share. Close releases it in reverse order.
type app struct {
	db         *postgres.DB
	metrics    *metrics.Recorder
	returnURLs services.ReturnURLs

	submit  *services.SubmitService
	confirm *services.ConfirmService
	billing *services.BillingService
	query   *services.QueryService
	pending *worker.PendingConfirmationWorker

	closers []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	contributions := postgres.NewContributionRepository(db)
	accessCodes := postgres.NewAccessCodeRepository(db)
	recurs := postgres.NewRecurRepository(db)
	submissions := postgres.NewSubmissionRepository(db)
	countries := postgres.NewCountryRepository(db)
	processors := postgres.NewProcessorRepository(db)
	txManager := postgres.NewTransactionCoordinator(db)

	gateways := eway.NewRegistry(processors, cfg.Gateway, logger)
	messages := eway.NewMessageTable(nil)

	locker, err := a.newLocker(ctx, cfg.Redis, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	publisher := a.newPublisher(cfg.Kafka, logger)

	a.metrics = metrics.NewRecorder(cfg.Metrics.Namespace)
	a.returnURLs = services.NewReturnURLs(cfg.Redirect.PublicBaseURL)
	profiles := services.NewProfileBuilder(countries)

	a.submit = services.NewSubmitService(
		contributions,
		accessCodes,
		submissions,
		gateways,
		messages,
		profiles,
		a.returnURLs,
		publisher,
		a.metrics,
		cfg.Gateway.Timeout,
		logger,
	)
	a.confirm = services.NewConfirmService(
		accessCodes,
		contributions,
		txManager,
		locker,
		gateways,
		messages,
		publisher,
		a.metrics,
		cfg.Gateway.Timeout,
		logger,
	)
	a.billing = services.NewBillingService(
		recurs,
		gateways,
		messages,
		profiles,
		publisher,
		a.metrics,
		cfg.Gateway.Timeout,
		logger,
	)
	a.query = services.NewQueryService(contributions, recurs, accessCodes)

	a.pending = worker.NewPendingConfirmationWorker(
		accessCodes,
		a.confirm,
		cfg.Worker.Interval,
		cfg.Worker.PendingAge,
		cfg.Worker.AbandonAge,
		cfg.Worker.BatchSize,
		logger,
	)

	return a, nil
}

// newLocker uses Redis when configured so confirmations are serialized across replicas.
func (a *app) newLocker(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (application.ConfirmationLocker, error) {
	if cfg.Addr == "" {
		logger.Info("redis not configured, confirmation lock is in-process only")
		return lock.NewMemoryLocker(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { client.Close() })

	logger.Info("confirmation lock backed by redis", "addr", cfg.Addr)
	return lock.NewRedisLocker(client, cfg.LockTTL, logger), nil
}

func (a *app) newPublisher(cfg config.KafkaConfig, logger *slog.Logger) application.EventPublisher {
	if len(cfg.BrokerList()) == 0 {
		logger.Info("kafka not configured, status events are not published")
		return events.NopPublisher{}
	}

	publisher := events.NewKafkaPublisher(events.NewKafkaWriter(cfg), logger)
	a.closers = append(a.closers, func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close kafka writer", "error", err)
		}
	})

	logger.Info("status events published to kafka", "topic", cfg.Topic)
	return publisher
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
