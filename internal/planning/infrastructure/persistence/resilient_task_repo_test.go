package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyRepo struct {
	*InMemoryTaskRepository
	err   error
	calls int
}

func (f *flakyRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.InMemoryTaskRepository.List(ctx, userID)
}

func TestResilientTaskRepository(t *testing.T) {
	ctx := context.Background()
	cfg := BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, FailureThreshold: 3}

	t.Run("opens after consecutive failures", func(t *testing.T) {
		inner := &flakyRepo{InMemoryTaskRepository: NewInMemoryTaskRepository(), err: errors.New("connection refused")}
		repo := NewResilientTaskRepository(inner, cfg, nil)

		for i := 0; i < 3; i++ {
			_, err := repo.List(ctx, uuid.New())
			require.Error(t, err)
			assert.NotErrorIs(t, err, ErrStorageUnavailable)
		}

		_, err := repo.List(ctx, uuid.New())

		assert.ErrorIs(t, err, ErrStorageUnavailable)
		assert.Equal(t, gobreaker.StateOpen, repo.State())
		assert.Equal(t, 3, inner.calls, "open breaker does not reach the store")
	})

	t.Run("missing tasks do not count as failures", func(t *testing.T) {
		repo := NewResilientTaskRepository(NewInMemoryTaskRepository(), cfg, nil)

		for i := 0; i < 5; i++ {
			err := repo.Delete(ctx, uuid.New())
			assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		}

		assert.Equal(t, gobreaker.StateClosed, repo.State())
	})

	t.Run("passes results through", func(t *testing.T) {
		inner := NewInMemoryTaskRepository()
		repo := NewResilientTaskRepository(inner, cfg, nil)
		userID := uuid.New()

		created, err := repo.Create(ctx, newTask(userID, "guarded", 30))
		require.NoError(t, err)
		title := "renamed"
		updated, err := repo.Update(ctx, created.ID, domain.TaskPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "renamed", updated.Title)

		require.NoError(t, repo.DeleteMany(ctx, []uuid.UUID{created.ID}))
		tasks, err := repo.List(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
