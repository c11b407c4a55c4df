package commands

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockTaskRepo is a mock implementation of domain.TaskRepository.
type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

// Create echoes the task back unless the expectation returns one.
func (m *mockTaskRepo) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return t, args.Error(1)
	}
	return args.Get(0).(domain.Task), args.Error(1)
}

// Update accepts either a task or a func(id, patch) task as its return value.
func (m *mockTaskRepo) Update(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (domain.Task, error) {
	args := m.Called(ctx, id, patch)
	switch v := args.Get(0).(type) {
	case func(uuid.UUID, domain.TaskPatch) domain.Task:
		return v(id, patch), args.Error(1)
	case domain.Task:
		return v, args.Error(1)
	}
	return domain.Task{}, args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockBulkTaskRepo adds domain.BulkDeleter.
type mockBulkTaskRepo struct {
	mockTaskRepo
}

func (m *mockBulkTaskRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// mockOutboxRepo is a mock implementation of outbox.Repository.
type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	args := m.Called(ctx, id, errMsg, nextRetryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	args := m.Called(ctx, olderThanDays)
	return args.Get(0).(int64), args.Error(1)
}

// mockUnitOfWork is a mock implementation of application.UnitOfWork.
type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockStateStore is a mock implementation of domain.StateStore.
type mockStateStore struct {
	mock.Mock
}

func (m *mockStateStore) Load(ctx context.Context, userID uuid.UUID) (*domain.PlannerState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlannerState), args.Error(1)
}

func (m *mockStateStore) Save(ctx context.Context, state *domain.PlannerState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// monday is "today" in every command test.
var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

type txKey struct{}

func txContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, "transaction")
}

func newPlanner(t *testing.T, hhmm string) *services.Planner {
	t.Helper()
	now := domain.MustParseTimeOfDay(hhmm).On(monday)
	p, err := services.NewPlanner(domain.DefaultWorkDayConfig(), services.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return p
}

func timedTask(userID uuid.UUID, title string, date time.Time, hhmm string, minutes int) domain.Task {
	d := domain.DateOf(date)
	tm := domain.MustParseTimeOfDay(hhmm)
	return domain.Task{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            title,
		EstimatedMinutes: minutes,
		DueDate:          &d,
		DueTime:          &tm,
		Quadrant:         domain.DefaultQuadrant,
	}
}

func looseTask(userID uuid.UUID, title string, minutes int) domain.Task {
	return domain.Task{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            title,
		EstimatedMinutes: minutes,
		Quadrant:         domain.DefaultQuadrant,
	}
}

// project builds a placeholder with one 30 minute interval per entry of done,
// laid out back to back from 09:00 on monday.
func project(userID uuid.UUID, done ...bool) (domain.Task, []domain.Task) {
	d := monday
	parent := domain.Task{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     "project",
		DueDate:   &d,
		IsProject: true,
		Quadrant:  domain.DefaultQuadrant,
	}
	var children []domain.Task
	start := domain.MustParseTimeOfDay("09:00")
	for i, isDone := range done {
		pid := parent.ID
		c := timedTask(userID, "interval", monday, start.Add(i*30).String(), 30)
		c.ParentTaskID = &pid
		c.IntervalIndex = i + 1
		c.IsCompleted = isDone
		children = append(children, c)
		parent.EstimatedMinutes += 30
	}
	parent.IsCompleted = len(done) > 0 && !containsFalse(done)
	return parent, children
}

func containsFalse(values []bool) bool {
	for _, v := range values {
		if !v {
			return true
		}
	}
	return false
}

// patched returns an Update result func applying the patch to t.
func patched(t domain.Task) func(uuid.UUID, domain.TaskPatch) domain.Task {
	return func(_ uuid.UUID, p domain.TaskPatch) domain.Task {
		return p.Apply(t, time.Now())
	}
}

func messageCount(n int) any {
	return mock.MatchedBy(func(msgs []*outbox.Message) bool { return len(msgs) == n })
}

// expectUnitOfWork wires a successful Begin/Commit pair and returns the tx context.
func expectUnitOfWork(ctx context.Context, uow *mockUnitOfWork) context.Context {
	txCtx := txContext(ctx)
	uow.On("Begin", ctx).Return(txCtx, nil)
	uow.On("Commit", txCtx).Return(nil)
	return txCtx
}
