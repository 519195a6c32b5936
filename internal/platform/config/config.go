// Package config builds runtime configuration from environment variables
// so main stays lean.
package config

import (
	"os"
	"strings"
	"time"
)

// Config captures everything cmd/server needs to wire the gateway.
type Config struct {
	Addr          string
	DatabaseURL   string
	RedisURL      string
	KafkaBrokers  []string
	KafkaTopic    string
	JWTSigningKey string

	// ScanSessionTTL bounds how long an idle scan session survives in the
	// session store before the driver has to restart from durable state.
	ScanSessionTTL  time.Duration
	ShutdownTimeout time.Duration
}

// FromEnv reads configuration from the environment, applying development
// defaults where a value is absent.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("PICKUP_GATEWAY_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		KafkaTopic:      os.Getenv("KAFKA_TOPIC"),
		JWTSigningKey:   os.Getenv("JWT_SIGNING_KEY"),
		ScanSessionTTL:  durationOr("SCAN_SESSION_TTL", 4*time.Hour),
		ShutdownTimeout: durationOr("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if cfg.JWTSigningKey == "" {
		// Development default - must be overridden in production.
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	return cfg
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
