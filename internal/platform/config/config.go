// Package config loads service configuration from the environment so that
// main stays lean. Every knob has a development default; production deployments
// override via MINTGATE_* variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Ledger   LedgerConfig
	Auth     AuthConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// PostgresConfig holds the database connection settings. An empty DSN selects
// the in-memory stores, which is the development default.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds cache connection settings. An empty URL disables the
// blacklist existence cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ExistenceTTL time.Duration
}

// KafkaConfig holds audit event streaming settings. Empty brokers disable the
// outbox worker.
type KafkaConfig struct {
	Brokers []string
}

// LedgerConfig points at the token ledger service.
type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds request authentication settings.
type AuthConfig struct {
	// OperatorJWTKey signs and verifies operator session tokens for
	// read-only endpoints.
	OperatorJWTKey string
	// SignatureMaxSkew bounds the age of a signed request timestamp.
	SignatureMaxSkew time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            envString("MINTGATE_ADDR", ":8080"),
			ShutdownTimeout: envDuration("MINTGATE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("MINTGATE_POSTGRES_DSN"),
			MaxOpenConns:    envInt("MINTGATE_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("MINTGATE_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("MINTGATE_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MINTGATE_REDIS_URL"),
			PoolSize:     envInt("MINTGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("MINTGATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("MINTGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("MINTGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("MINTGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
			ExistenceTTL: envDuration("MINTGATE_REDIS_EXISTENCE_TTL", 30*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("MINTGATE_KAFKA_BROKERS"),
		},
		Ledger: LedgerConfig{
			BaseURL: os.Getenv("MINTGATE_LEDGER_URL"),
			Timeout: envDuration("MINTGATE_LEDGER_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			OperatorJWTKey:   envString("MINTGATE_OPERATOR_JWT_KEY", "dev-secret-key-change-in-production"),
			SignatureMaxSkew: envDuration("MINTGATE_SIGNATURE_MAX_SKEW", 30*time.Second),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
