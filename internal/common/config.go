package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPPort             int
	MetricsPort          int
	DatabaseURL          string
	KafkaBrokers         []string
	DomainEventsTopic    string
	ProcessedEventsTopic string
	OTLPEndpoint         string
	ServiceName          string
	UserDirectoryURL     string
	ResourceDirectoryURL string
	EmailGatewayURL      string
	DispatchWorkers      int
}

func LoadConfig(service string) (*Config, error) {
	cfg := &Config{ServiceName: service}

	httpPort, err := getEnvInt("HTTP_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.HTTPPort = httpPort

	metricsPort, err := getEnvInt("METRICS_PORT", httpPort+1000)
	if err != nil {
		return nil, err
	}
	cfg.MetricsPort = metricsPort

	workers, err := getEnvInt("DISPATCH_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	cfg.DispatchWorkers = workers

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.OTLPEndpoint = os.Getenv("OTLP_ENDPOINT")
	cfg.UserDirectoryURL = getEnv("USER_DIRECTORY_URL", "http://localhost:8090")
	cfg.ResourceDirectoryURL = getEnv("RESOURCE_DIRECTORY_URL", "http://localhost:8091")
	cfg.EmailGatewayURL = os.Getenv("EMAIL_GATEWAY_URL")

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	} else {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	cfg.DomainEventsTopic = getEnv("DOMAIN_EVENTS_TOPIC", "booking.events")
	cfg.ProcessedEventsTopic = getEnv("PROCESSED_EVENTS_TOPIC", "notifications.processed")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid value for %s: %w", key, err)
		}
		return parsed, nil
	}
	return fallback, nil
}
