package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/example/booking-notifier/internal/admin"
	"github.com/example/booking-notifier/internal/common"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/template"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := common.LoadConfig("admin")
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
	var store template.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect postgres")
		}
		defer pool.Close()

		pgStore, err := template.NewPostgresStore(pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("template store")
		}
		store = pgStore

		templates, err := pgStore.LoadAll(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("load templates")
		}
		for i := range templates {
			if err := registry.Put(&templates[i]); err != nil {
				logger.Warn().Err(err).Str("template_id", templates[i].ID).Msg("skipping invalid stored template")
			}
		}
	}

	users := &directory.HTTPUserDirectory{BaseURL: cfg.UserDirectoryURL}

	srv := &http.Server{
		Addr:    formatAddr(cfg.HTTPPort),
		Handler: admin.NewServer(registry, store, users, users, logger).Router(),
	}

	go func() {
		logger.Info().Int("port", cfg.HTTPPort).Msg("admin service listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func formatAddr(port int) string {
	return ":" + strconv.Itoa(port)
}
