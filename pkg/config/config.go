// Package config loads tempo's runtime configuration from the environment,
// an optional .env file and the planner TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultUserID is the single user of a local installation.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Database. An empty DatabaseURL selects local mode on SQLite.
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Storage resilience
	BreakerEnabled          bool
	BreakerFailureThreshold int
	BreakerOpenTimeout      time.Duration

	// Redis holds planner state when set.
	RedisURL        string
	PlannerStateTTL time.Duration

	// RabbitMQ replaces the in-process bus when set.
	RabbitMQURL      string
	RabbitMQExchange string
	RabbitMQQueue    string

	// Outbox
	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	// Worker
	WorkerHealthAddr string
	RolloverSchedule string

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// Planner
	PlannerFile string
	Planner     PlannerConfig
}

// Load reads .env (if present), the environment and the planner file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	localMode := getBoolEnv("TEMPO_LOCAL_MODE", dbURL == "")

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("TEMPO_USER_ID", DefaultUserID),

		DatabaseURL:    dbURL,
		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		SQLitePath:     getEnv("SQLITE_PATH", filepath.Join(homeDir(), ".tempo", "tempo.db")),
		LocalMode:      localMode,

		BreakerEnabled:          getBoolEnv("TEMPO_BREAKER_ENABLED", true),
		BreakerFailureThreshold: getIntEnv("TEMPO_BREAKER_FAILURES", 5),
		BreakerOpenTimeout:      getDurationEnv("TEMPO_BREAKER_TIMEOUT", 30*time.Second),

		RedisURL:        getEnv("REDIS_URL", ""),
		PlannerStateTTL: getDurationEnv("TEMPO_STATE_TTL", 30*24*time.Hour),

		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "tempo.planning.events"),
		RabbitMQQueue:    getEnv("RABBITMQ_QUEUE", "tempo.planning.worker"),

		OutboxPollInterval:     getDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond),
		OutboxBatchSize:        getIntEnv("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       getIntEnv("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    getDurationEnv("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    getIntEnv("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  getDurationEnv("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: getBoolEnv("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),
		RolloverSchedule: getEnv("TEMPO_ROLLOVER_SCHEDULE", "5 0 * * *"),

		MCPAddr:      getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		PlannerFile: getEnv("TEMPO_PLANNER_FILE", filepath.Join(homeDir(), ".tempo", "planner.toml")),
	}

	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = "postgres"
		if cfg.LocalMode {
			cfg.DatabaseDriver = "sqlite"
		}
	}

	planner, err := LoadPlanner(cfg.PlannerFile)
	if err != nil {
		return nil, err
	}
	cfg.Planner = *planner

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if _, err := uuid.Parse(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("TEMPO_USER_ID: %w", err))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL: unknown level %q", c.LogLevel))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER: unknown driver %q", c.DatabaseDriver))
	}
	if c.DatabaseDriver == "postgres" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
	}
	if c.OutboxBatchSize <= 0 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE must be positive"))
	}
	if c.OutboxPollInterval <= 0 {
		errs = append(errs, errors.New("OUTBOX_POLL_INTERVAL must be positive"))
	}
	if c.BreakerFailureThreshold <= 0 {
		errs = append(errs, errors.New("TEMPO_BREAKER_FAILURES must be positive"))
	}
	if err := c.Planner.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// UserUUID returns the configured user id. Validate guarantees it parses.
func (c *Config) UserUUID() uuid.UUID {
	id, _ := uuid.Parse(c.UserID)
	return id
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
