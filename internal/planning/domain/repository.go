package domain

import (
	"context"

	"github.com/google/uuid"
)

// TaskRepository is the storage contract the planner depends on.
// Only single-record atomicity is assumed.
type TaskRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Task, error)
	Create(ctx context.Context, task Task) (Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BulkDeleter is implemented by repositories that can delete many rows in
// one statement.
type BulkDeleter interface {
	DeleteMany(ctx context.Context, ids []uuid.UUID) error
}
