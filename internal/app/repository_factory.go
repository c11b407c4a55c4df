package app

import (
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/planning/infrastructure/persistence"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/redis/go-redis/v9"
)

// RepositoryFactory creates the storage adapters for a connection. The same
// SQL implementations serve both drivers; the factory decides which
// decorators and side stores apply.
type RepositoryFactory struct {
	conn   database.Connection
	redis  *redis.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewRepositoryFactory creates a new repository factory. redisClient may be nil.
func NewRepositoryFactory(conn database.Connection, redisClient *redis.Client, cfg *config.Config, logger *slog.Logger) *RepositoryFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &RepositoryFactory{conn: conn, redis: redisClient, cfg: cfg, logger: logger}
}

// TaskRepository returns the SQL task repository, wrapped in a circuit
// breaker unless disabled.
func (f *RepositoryFactory) TaskRepository() domain.TaskRepository {
	var repo domain.TaskRepository = persistence.NewSQLTaskRepository(f.conn)
	if !f.cfg.BreakerEnabled {
		return repo
	}
	return persistence.NewResilientTaskRepository(repo, f.BreakerConfig(), f.logger)
}

// BreakerConfig derives the breaker settings from configuration.
func (f *RepositoryFactory) BreakerConfig() persistence.BreakerConfig {
	bc := persistence.DefaultBreakerConfig()
	if f.cfg.BreakerFailureThreshold > 0 {
		bc.FailureThreshold = uint32(f.cfg.BreakerFailureThreshold)
	}
	if f.cfg.BreakerOpenTimeout > 0 {
		bc.Timeout = f.cfg.BreakerOpenTimeout
	}
	return bc
}

// StateStore keeps planner state in Redis when available, otherwise in the
// database.
func (f *RepositoryFactory) StateStore() domain.StateStore {
	if f.redis != nil {
		ttl := f.cfg.PlannerStateTTL
		if ttl <= 0 {
			ttl = 30 * 24 * time.Hour
		}
		return persistence.NewRedisStateStore(f.redis, ttl)
	}
	return persistence.NewSQLStateStore(f.conn)
}

// OutboxRepository returns the SQL outbox.
func (f *RepositoryFactory) OutboxRepository() outbox.Repository {
	return outbox.NewSQLRepository(f.conn)
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.conn.Driver()
}
