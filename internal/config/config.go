package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	defaultMongoURI      = "mongodb://localhost:27017/?replicaSet=rs0"
	defaultMongoDatabase = "afterschool"
	defaultHTTPAddr      = ":3001"
	defaultStaticDir     = "public"
)

type Config struct {
	MongoURI           string
	MongoDatabase      string
	HTTPAddr           string
	StaticDir          string
	RedisAddr          string
	RabbitURL          string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	ShutdownTimeout    time.Duration
	LogLevel           string
	OTLPEndpoint       string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	idempTTL, err := duration("IDEMPOTENCY_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	pollInterval, err := duration("OUTBOX_POLL_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := duration("SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return &Config{
		MongoURI:           env("MONGODB_URI", defaultMongoURI),
		MongoDatabase:      env("MONGODB_DATABASE", defaultMongoDatabase),
		HTTPAddr:           env("HTTP_ADDR", defaultHTTPAddr),
		StaticDir:          env("STATIC_DIR", defaultStaticDir),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RabbitURL:          os.Getenv("RABBIT_URL"),
		IdempotencyTTL:     idempTTL,
		OutboxPollInterval: pollInterval,
		ShutdownTimeout:    shutdownTimeout,
		LogLevel:           env("LOG_LEVEL", "info"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", key)
	}
	if d <= 0 {
		return 0, errors.Newf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
