package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrStorageUnavailable is returned while the breaker is open.
var ErrStorageUnavailable = errors.New("task storage unavailable")

// BreakerConfig configures the circuit breaker around a task repository.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts are cleared.
	Interval time.Duration
	// Timeout before an open breaker becomes half-open.
	Timeout time.Duration
	// FailureThreshold consecutive failures trip the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the settings used by the container.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// ResilientTaskRepository guards a TaskRepository with a circuit breaker so
// an unavailable store fails fast instead of stalling every command.
type ResilientTaskRepository struct {
	inner   domain.TaskRepository
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// NewResilientTaskRepository wraps inner.
func NewResilientTaskRepository(inner domain.TaskRepository, cfg BreakerConfig, logger *slog.Logger) *ResilientTaskRepository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &ResilientTaskRepository{inner: inner, logger: logger}
	r.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "task-repository",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: isStorageSuccess,
	})
	return r
}

// isStorageSuccess treats domain outcomes as healthy responses from the store.
func isStorageSuccess(err error) bool {
	if err == nil {
		return true
	}
	return errors.Is(err, domain.ErrTaskNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, domain.ErrEmptyTitle) ||
		errors.Is(err, domain.ErrInvalidDuration) ||
		errors.Is(err, domain.ErrInvalidQuadrant) ||
		errors.Is(err, domain.ErrInvalidPriority)
}

// State reports the breaker state.
func (r *ResilientTaskRepository) State() gobreaker.State {
	return r.breaker.State()
}

func (r *ResilientTaskRepository) List(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	out, err := r.breaker.Execute(func() (any, error) {
		return r.inner.List(ctx, userID)
	})
	if err != nil {
		return nil, r.translate(err)
	}
	tasks, _ := out.([]domain.Task)
	return tasks, nil
}

func (r *ResilientTaskRepository) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	out, err := r.breaker.Execute(func() (any, error) {
		return r.inner.Create(ctx, t)
	})
	if err != nil {
		return domain.Task{}, r.translate(err)
	}
	return out.(domain.Task), nil
}

func (r *ResilientTaskRepository) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (domain.Task, error) {
	out, err := r.breaker.Execute(func() (any, error) {
		return r.inner.Update(ctx, id, patch)
	})
	if err != nil {
		return domain.Task{}, r.translate(err)
	}
	return out.(domain.Task), nil
}

func (r *ResilientTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.inner.Delete(ctx, id)
	})
	return r.translate(err)
}

// DeleteMany uses the wrapped repository's bulk delete when it has one.
func (r *ResilientTaskRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	_, err := r.breaker.Execute(func() (any, error) {
		if bulk, ok := r.inner.(domain.BulkDeleter); ok {
			return nil, bulk.DeleteMany(ctx, ids)
		}
		for _, id := range ids {
			if err := r.inner.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
				return nil, err
			}
		}
		return nil, nil
	})
	return r.translate(err)
}

func (r *ResilientTaskRepository) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return err
}
