package persistence

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// InMemoryTaskRepository is a goroutine-safe TaskRepository for tests and
// single-process use.
type InMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]domain.Task
	order []uuid.UUID
	now   func() time.Time
}

// NewInMemoryTaskRepository creates an empty repository.
func NewInMemoryTaskRepository() *InMemoryTaskRepository {
	return &InMemoryTaskRepository{
		tasks: make(map[uuid.UUID]domain.Task),
		now:   time.Now,
	}
}

func (r *InMemoryTaskRepository) List(_ context.Context, userID uuid.UUID) ([]domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Task
	for _, id := range r.order {
		if t := r.tasks[id]; t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *InMemoryTaskRepository) Create(_ context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = r.now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[t.ID]; exists {
		return domain.Task{}, fmt.Errorf("task %s already exists", t.ID)
	}
	r.tasks[t.ID] = t.Clone()
	r.order = append(r.order, t.ID)
	return t.Clone(), nil
}

func (r *InMemoryTaskRepository) Update(_ context.Context, id uuid.UUID, patch domain.TaskPatch) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	if patch.IsEmpty() {
		return current.Clone(), nil
	}
	updated := patch.Apply(current, r.now())
	if err := updated.Validate(); err != nil {
		return domain.Task{}, err
	}
	r.tasks[id] = updated
	return updated.Clone(), nil
}

func (r *InMemoryTaskRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskNotFound, id)
	}
	r.remove(id)
	return nil
}

// DeleteMany removes the given tasks, ignoring ids that do not exist.
func (r *InMemoryTaskRepository) DeleteMany(_ context.Context, ids []uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.tasks[id]; ok {
			r.remove(id)
		}
	}
	return nil
}

// Len returns the number of stored tasks across all users.
func (r *InMemoryTaskRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

func (r *InMemoryTaskRepository) remove(id uuid.UUID) {
	delete(r.tasks, id)
	r.order = slices.DeleteFunc(r.order, func(v uuid.UUID) bool { return v == id })
}
