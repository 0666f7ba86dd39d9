package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/example/booking-notifier/internal/bus"
	"github.com/example/booking-notifier/internal/channel"
	"github.com/example/booking-notifier/internal/common"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/dispatch"
	"github.com/example/booking-notifier/internal/route"
	"github.com/example/booking-notifier/internal/template"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := common.LoadConfig("notifier")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := common.NewLogger(cfg.ServiceName)
	shutdown, err := common.SetupOTel(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise telemetry")
	}
	defer common.ShutdownTelemetry(context.Background(), shutdown)

	metricsSrv := common.StartMetricsServer(cfg.MetricsPort)
	defer metricsSrv.Shutdown(context.Background())

	registry := template.NewRegistry()
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()

		store, err := template.NewPostgresStore(pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("template store")
		}
		templates, err := store.LoadAll(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("load templates")
		}
		for i := range templates {
			if err := registry.Put(&templates[i]); err != nil {
				logger.Warn().Err(err).Str("template_id", templates[i].ID).Msg("skipping invalid stored template")
			}
		}
		logger.Info().Int("count", len(templates)).Msg("templates loaded")
	}

	users := &directory.HTTPUserDirectory{BaseURL: cfg.UserDirectoryURL}
	resources := &directory.HTTPResourceDirectory{BaseURL: cfg.ResourceDirectoryURL}
	resolver := directory.NewResolver(users, logger)

	var transport channel.Transport = channel.NewSimulatedTransport()
	if cfg.EmailGatewayURL != "" {
		transport = &channel.EmailGatewayTransport{
			Endpoint: cfg.EmailGatewayURL,
			Fallback: transport,
		}
	}

	completionWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers...),
		Topic:    cfg.ProcessedEventsTopic,
		Balancer: &kafka.Hash{},
	}
	defer completionWriter.Close()
	publisher := &bus.KafkaPublisher{Writer: completionWriter}

	dispatcher := dispatch.NewDispatcher(registry, transport, publisher, logger, cfg.DispatchWorkers)
	router := route.NewRouter(resolver, resources, dispatcher, logger)

	consumer := &bus.Consumer{
		ReaderFactory: func() *kafka.Reader {
			return kafka.NewReader(kafka.ReaderConfig{
				Brokers: cfg.KafkaBrokers,
				GroupID: cfg.ServiceName,
				Topic:   cfg.DomainEventsTopic,
			})
		},
		Router: router,
		Logger: logger,
	}

	go func() {
		logger.Info().Str("topic", cfg.DomainEventsTopic).Msg("notifier consuming domain events")
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal().Err(err).Msg("consumer stopped")
		}
	}()

	<-ctx.Done()
}
