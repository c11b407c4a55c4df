package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStateStoreContract(t *testing.T, store domain.StateStore) {
	ctx := context.Background()

	t.Run("unknown users get a fresh state", func(t *testing.T) {
		userID := uuid.New()

		state, err := store.Load(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, userID, state.UserID)
		assert.Nil(t, state.LastAutoMoveDate)
		assert.Zero(t, state.BufferUsedOn(monday))
	})

	t.Run("saved state is loaded back", func(t *testing.T) {
		userID := uuid.New()
		state := domain.NewPlannerState(userID)
		state.MarkAutoMoved(monday)
		state.AddBufferUsage(monday, 5)
		state.AddBufferUsage(monday, 5)
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx, userID)

		require.NoError(t, err)
		assert.True(t, loaded.AutoMovedOn(monday))
		assert.Equal(t, 10, loaded.BufferUsedOn(monday))
	})

	t.Run("save overwrites", func(t *testing.T) {
		userID := uuid.New()
		state := domain.NewPlannerState(userID)
		state.MarkAutoMoved(monday)
		require.NoError(t, store.Save(ctx, state))

		state.MarkAutoMoved(monday.AddDate(0, 0, 1))
		require.NoError(t, store.Save(ctx, state))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.True(t, loaded.AutoMovedOn(monday.AddDate(0, 0, 1)))
	})
}

func TestInMemoryStateStore(t *testing.T) {
	runStateStoreContract(t, NewInMemoryStateStore())
}

func TestInMemoryStateStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStateStore()
	userID := uuid.New()
	state := domain.NewPlannerState(userID)
	require.NoError(t, store.Save(ctx, state))

	state.AddBufferUsage(monday, 30)

	loaded, err := store.Load(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, loaded.BufferUsedOn(monday))
}

func TestSQLStateStore_SQLite(t *testing.T) {
	runStateStoreContract(t, NewSQLStateStore(newSQLiteConn(t)))
}

func TestSQLStateStore_Postgres(t *testing.T) {
	runStateStoreContract(t, NewSQLStateStore(newPostgresConn(t)))
}

func TestRedisStateStore(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL not set, skipping integration test")
	}
	opt, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	runStateStoreContract(t, NewRedisStateStore(client, 0))
}

func TestStateKey(t *testing.T) {
	id := uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")
	assert.Equal(t, "tempo:planner:user:6f1c2d3e-0000-4000-8000-000000000001:state", StateKey(id))
}
