package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func cloneState(s *domain.PlannerState) *domain.PlannerState {
	out := domain.NewPlannerState(s.UserID)
	if s.LastAutoMoveDate != nil {
		d := *s.LastAutoMoveDate
		out.LastAutoMoveDate = &d
	}
	for k, v := range s.BufferUsed {
		out.BufferUsed[k] = v
	}
	return out
}

func decodeState(userID uuid.UUID, data []byte) (*domain.PlannerState, error) {
	state := domain.NewPlannerState(userID)
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode planner state: %w", err)
	}
	state.UserID = userID
	if state.BufferUsed == nil {
		state.BufferUsed = make(map[string]int)
	}
	return state, nil
}

// InMemoryStateStore keeps planner state in process memory.
type InMemoryStateStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]*domain.PlannerState
}

// NewInMemoryStateStore creates an empty store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{states: make(map[uuid.UUID]*domain.PlannerState)}
}

func (s *InMemoryStateStore) Load(_ context.Context, userID uuid.UUID) (*domain.PlannerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[userID]; ok {
		return cloneState(st), nil
	}
	return domain.NewPlannerState(userID), nil
}

func (s *InMemoryStateStore) Save(_ context.Context, state *domain.PlannerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.UserID] = cloneState(state)
	return nil
}

// RedisStateStore keeps planner state as JSON under a per-user key:
// tempo:planner:user:{user_id}:state
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore creates a store. A zero ttl keeps keys forever.
func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

// StateKey returns the redis key holding a user's planner state.
func StateKey(userID uuid.UUID) string {
	return fmt.Sprintf("tempo:planner:user:%s:state", userID)
}

func (s *RedisStateStore) Load(ctx context.Context, userID uuid.UUID) (*domain.PlannerState, error) {
	data, err := s.client.Get(ctx, StateKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewPlannerState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load planner state: %w", err)
	}
	return decodeState(userID, data)
}

func (s *RedisStateStore) Save(ctx context.Context, state *domain.PlannerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, StateKey(state.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save planner state: %w", err)
	}
	return nil
}

// SQLStateStore keeps planner state in the planner_state table.
type SQLStateStore struct {
	conn database.Connection
}

// NewSQLStateStore creates a store on conn.
func NewSQLStateStore(conn database.Connection) *SQLStateStore {
	return &SQLStateStore{conn: conn}
}

func (s *SQLStateStore) Load(ctx context.Context, userID uuid.UUID) (*domain.PlannerState, error) {
	var data string
	query := database.Rebind(s.conn.Driver(), `SELECT state FROM planner_state WHERE user_id = ?`)
	err := database.ExecutorFromContext(ctx, s.conn).QueryRow(ctx, query, userID).Scan(&data)
	if database.IsNoRows(err) {
		return domain.NewPlannerState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load planner state: %w", err)
	}
	return decodeState(userID, []byte(data))
}

func (s *SQLStateStore) Save(ctx context.Context, state *domain.PlannerState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	query := database.Rebind(s.conn.Driver(), `
		INSERT INTO planner_state (user_id, state, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`)
	_, err = database.ExecutorFromContext(ctx, s.conn).Exec(ctx, query, state.UserID, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save planner state: %w", err)
	}
	return nil
}
