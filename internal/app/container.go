// Package app wires configuration, storage, messaging and the planning
// handlers into one container shared by the CLI, the MCP server and the
// worker.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/commands"
	"github.com/felixgeelhaar/tempo/internal/planning/application/queries"
	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/application/subscribers"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/planning/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics
	Planner *services.Planner

	// Storage
	DBConn      database.Connection
	RedisClient *redis.Client
	TaskRepo    domain.TaskRepository
	StateStore  domain.StateStore
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Messaging. LocalBus is set when events are delivered in-process.
	EventPublisher eventbus.Publisher
	LocalBus       *eventbus.InProcessEventBus

	// Command handlers
	CreateTaskHandler       *commands.CreateTaskHandler
	ToggleCompletionHandler *commands.ToggleCompletionHandler
	DeleteTaskHandler       *commands.DeleteTaskHandler
	ScheduleTaskHandler     *commands.ScheduleTaskHandler
	AutoScheduleHandler     *commands.AutoScheduleHandler
	DeferTasksHandler       *commands.DeferTasksHandler
	RolloverHandler         *commands.RolloverHandler

	// Query handlers
	ListTasksHandler      *queries.ListTasksHandler
	GetDayPlanHandler     *queries.GetDayPlanHandler
	CheckConflictsHandler *queries.CheckConflictsHandler
	FindNextSlotHandler   *queries.FindNextSlotHandler

	// Subscribers
	TaskChangeSubscriber *subscribers.TaskChangeSubscriber

	outboxProcessor *outbox.Processor
}

// Option customizes container construction.
type Option func(*options)

type options struct {
	now     func() time.Time
	metrics observability.Metrics
}

// WithClock fixes the planner clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics sets the metrics sink. Defaults to no-op.
func WithMetrics(m observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func buildOptions(opts []Option) options {
	o := options{metrics: observability.NoopMetrics{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewContainer connects to the configured database (SQLite in local mode,
// PostgreSQL otherwise), applies migrations and wires every handler. Redis
// and RabbitMQ are optional; in development an unreachable one falls back to
// the database state store and the in-process bus.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	o := buildOptions(opts)
	if logger == nil {
		logger = slog.Default()
	}

	planner, err := NewPlanner(cfg.Planner, o.now)
	if err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: o.metrics,
		Planner: planner,
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn

	if err := migrations.Run(ctx, conn); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver())

	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	factory := NewRepositoryFactory(conn, c.RedisClient, cfg, logger)
	c.TaskRepo = factory.TaskRepository()
	c.StateStore = factory.StateStore()
	c.OutboxRepo = factory.OutboxRepository()
	c.UnitOfWork = database.NewUnitOfWork(conn)

	c.wireHandlers()

	if err := c.connectPublisher(); err != nil {
		c.Close()
		return nil, err
	}
	c.outboxProcessor = c.NewOutboxProcessor()

	return c, nil
}

// NewInMemoryContainer wires every handler over in-memory storage and the
// in-process bus. It backs tests and dry runs.
func NewInMemoryContainer(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Container, error) {
	o := buildOptions(opts)
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = &config.Config{
			AppEnv:          "test",
			UserID:          config.DefaultUserID,
			OutboxBatchSize: 100,
			Planner:         *config.DefaultPlanner(),
		}
	}

	planner, err := NewPlanner(cfg.Planner, o.now)
	if err != nil {
		return nil, fmt.Errorf("invalid planner config: %w", err)
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    o.metrics,
		Planner:    planner,
		TaskRepo:   persistence.NewInMemoryTaskRepository(),
		StateStore: persistence.NewInMemoryStateStore(),
		OutboxRepo: outbox.NewInMemoryRepository(),
		UnitOfWork: sharedApplication.NoopUnitOfWork{},
	}
	c.wireHandlers()
	c.useLocalBus()
	c.outboxProcessor = c.NewOutboxProcessor()
	return c, nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		return nil
	}
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, planner state stays in the database", "error", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, planner state stays in the database", "error", err)
		return nil
	}
	c.RedisClient = client
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectPublisher() error {
	if c.Config.RabbitMQURL == "" {
		c.useLocalBus()
		return nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.rabbitConfig())
	if err != nil {
		if !c.Config.IsDevelopment() {
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		c.Logger.Warn("RabbitMQ not available, delivering events in-process", "error", err)
		c.useLocalBus()
		return nil
	}
	c.EventPublisher = publisher
	return nil
}

func (c *Container) rabbitConfig() eventbus.RabbitMQConfig {
	return eventbus.RabbitMQConfig{
		URL:       c.Config.RabbitMQURL,
		Exchange:  c.Config.RabbitMQExchange,
		QueueName: c.Config.RabbitMQQueue,
		Logger:    c.Logger,
	}
}

// useLocalBus routes outbox messages straight to the task change subscriber.
func (c *Container) useLocalBus() {
	bus := eventbus.NewInProcessEventBus(c.Logger).Strict()
	bus.Registry().SetMetrics(c.Metrics)
	bus.RegisterConsumer(c.TaskChangeSubscriber)
	c.LocalBus = bus
	c.EventPublisher = bus
}

func (c *Container) wireHandlers() {
	repo, ob, uow, pl := c.TaskRepo, c.OutboxRepo, c.UnitOfWork, c.Planner

	c.CreateTaskHandler = commands.NewCreateTaskHandler(repo, ob, uow, pl, c.StateStore, c.Logger)
	c.ToggleCompletionHandler = commands.NewToggleCompletionHandler(repo, ob, uow, pl)
	c.DeleteTaskHandler = commands.NewDeleteTaskHandler(repo, ob, uow, pl)
	c.ScheduleTaskHandler = commands.NewScheduleTaskHandler(repo, ob, uow, pl)
	c.AutoScheduleHandler = commands.NewAutoScheduleHandler(repo, ob, uow, pl, c.Metrics, c.Logger)
	c.DeferTasksHandler = commands.NewDeferTasksHandler(repo, ob, uow, pl)
	c.RolloverHandler = commands.NewRolloverHandler(repo, ob, uow, pl, c.StateStore, c.Logger)

	c.ListTasksHandler = queries.NewListTasksHandler(repo)
	c.GetDayPlanHandler = queries.NewGetDayPlanHandler(repo, pl)
	c.CheckConflictsHandler = queries.NewCheckConflictsHandler(repo, pl)
	c.FindNextSlotHandler = queries.NewFindNextSlotHandler(repo, pl)

	c.TaskChangeSubscriber = subscribers.NewTaskChangeSubscriber(repo, pl, nil, c.Logger)
}

// ProcessorConfig derives the outbox processor settings from configuration.
func (c *Container) ProcessorConfig() outbox.ProcessorConfig {
	pc := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		pc.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		pc.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		pc.MaxRetries = c.Config.OutboxMaxRetries
	}
	return pc
}

// NewOutboxProcessor creates a processor relaying the outbox to the
// container's publisher.
func (c *Container) NewOutboxProcessor() *outbox.Processor {
	return outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, c.ProcessorConfig(), c.Logger,
		outbox.WithMetrics(c.Metrics),
	)
}

// OutboxProcessor returns the container's processor.
func (c *Container) OutboxProcessor() *outbox.Processor {
	return c.outboxProcessor
}

// FlushOutbox relays pending events once. Short-lived processes call it
// after a command so in-process subscribers see their own changes.
func (c *Container) FlushOutbox(ctx context.Context) error {
	if c.outboxProcessor == nil {
		return nil
	}
	return c.outboxProcessor.ProcessOnce(ctx)
}

// NewEventConsumer creates a RabbitMQ consumer with the task change
// subscriber registered. It fails when no broker is configured.
func (c *Container) NewEventConsumer() (*eventbus.RabbitMQConsumer, error) {
	if c.Config.RabbitMQURL == "" {
		return nil, errors.New("RABBITMQ_URL is not set")
	}
	registry := eventbus.NewConsumerRegistry(c.Logger)
	registry.SetMetrics(c.Metrics)
	consumer, err := eventbus.NewRabbitMQConsumer(c.rabbitConfig(), registry)
	if err != nil {
		return nil, err
	}
	consumer.RegisterConsumer(c.TaskChangeSubscriber)
	return consumer, nil
}

// HealthRegistry registers checks for the connected dependencies.
func (c *Container) HealthRegistry() *observability.HealthRegistry {
	r := observability.NewHealthRegistry(5 * time.Second)
	if c.DBConn != nil {
		r.Register("database", observability.PingChecker("database", true, c.DBConn.Ping))
	}
	if c.RedisClient != nil {
		r.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	if c.outboxProcessor != nil {
		r.Register("outbox", observability.LagChecker(5*time.Minute, func() time.Duration {
			return time.Duration(c.outboxProcessor.GetStats().LagSeconds * float64(time.Second))
		}))
	}
	return r
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.outboxProcessor != nil {
		c.outboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DBConn.Driver())
		}
	}
}
