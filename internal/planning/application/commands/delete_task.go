package commands

import (
	"context"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/tempo/internal/shared/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeleteTaskCommand removes a task.
type DeleteTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// DeleteTaskResult lists what was removed or rewritten.
type DeleteTaskResult struct {
	// Deleted holds every removed ID, intervals before their project.
	Deleted []uuid.UUID
	// Parent is the re-aggregated project after one of its intervals was removed.
	Parent *domain.Task
}

// DeleteTaskHandler handles the DeleteTaskCommand.
//
// Deleting a project deletes its intervals. Deleting an interval recomputes
// the project's duration and completion, and removes the project once its
// last interval is gone.
type DeleteTaskHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo domain.TaskRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, planner *services.Planner) *DeleteTaskHandler {
	return &DeleteTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
	}
}

// Handle executes the DeleteTaskCommand.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) (*DeleteTaskResult, error) {
	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}
	task, err := findOwned(snapshot, cmd.TaskID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	result := &DeleteTaskResult{}
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		var events []sharedDomain.DomainEvent
		switch {
		case task.IsProject:
			var childIDs []uuid.UUID
			for _, c := range domain.ChildrenOf(snapshot, task.ID) {
				childIDs = append(childIDs, c.ID)
			}
			if err := h.deleteAll(txCtx, childIDs); err != nil {
				return err
			}
			if err := h.taskRepo.Delete(txCtx, task.ID); err != nil {
				return err
			}
			result.Deleted = append(childIDs, task.ID)
			events = append(events, domain.NewTaskDeleted(task.ID, childIDs))

		case task.IsChild():
			if err := h.taskRepo.Delete(txCtx, task.ID); err != nil {
				return err
			}
			result.Deleted = append(result.Deleted, task.ID)
			events = append(events, domain.NewTaskDeleted(task.ID, nil))

			parentEvents, err := h.reaggregate(txCtx, snapshot, task, result)
			if err != nil {
				return err
			}
			events = append(events, parentEvents...)

		default:
			if err := h.taskRepo.Delete(txCtx, task.ID); err != nil {
				return err
			}
			result.Deleted = append(result.Deleted, task.ID)
			events = append(events, domain.NewTaskDeleted(task.ID, nil))
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, events...)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// reaggregate brings the parent of a removed interval back in line with its
// remaining intervals.
func (h *DeleteTaskHandler) reaggregate(ctx context.Context, snapshot []domain.Task, removed domain.Task, result *DeleteTaskResult) ([]sharedDomain.DomainEvent, error) {
	parent, ok := domain.FindTask(snapshot, *removed.ParentTaskID)
	if !ok {
		return nil, nil
	}

	var remaining []domain.Task
	for _, c := range domain.ChildrenOf(snapshot, parent.ID) {
		if c.ID != removed.ID {
			remaining = append(remaining, c)
		}
	}

	if len(remaining) == 0 {
		if err := h.taskRepo.Delete(ctx, parent.ID); err != nil {
			return nil, err
		}
		result.Deleted = append(result.Deleted, parent.ID)
		return []sharedDomain.DomainEvent{domain.NewTaskDeleted(parent.ID, nil)}, nil
	}

	next, changed := services.ReaggregateParent(parent, remaining, h.planner.Now())
	if !changed {
		return nil, nil
	}
	updated, err := h.taskRepo.Update(ctx, parent.ID, domain.DiffPatch(parent, next))
	if err != nil {
		return nil, err
	}
	result.Parent = &updated
	if updated.IsCompleted != parent.IsCompleted {
		return []sharedDomain.DomainEvent{completionEvent(updated)}, nil
	}
	return nil, nil
}

func (h *DeleteTaskHandler) deleteAll(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if bulk, ok := h.taskRepo.(domain.BulkDeleter); ok {
		return bulk.DeleteMany(ctx, ids)
	}
	for _, id := range ids {
		if err := h.taskRepo.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
