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

// ToggleCompletionCommand flips the completion state of a task.
type ToggleCompletionCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
}

// ToggleCompletionResult holds the written task and, when its completion
// changed too, the parent project.
type ToggleCompletionResult struct {
	Task   domain.Task
	Parent *domain.Task
}

// ToggleCompletionHandler handles the ToggleCompletionCommand.
type ToggleCompletionHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
}

// NewToggleCompletionHandler creates a new ToggleCompletionHandler.
func NewToggleCompletionHandler(taskRepo domain.TaskRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, planner *services.Planner) *ToggleCompletionHandler {
	return &ToggleCompletionHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
	}
}

// Handle executes the ToggleCompletionCommand.
func (h *ToggleCompletionHandler) Handle(ctx context.Context, cmd ToggleCompletionCommand) (*ToggleCompletionResult, error) {
	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}
	task, err := findOwned(snapshot, cmd.TaskID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	toggled, err := services.ToggleCompletion(task, snapshot, h.planner.Now())
	if err != nil {
		return nil, err
	}

	result := &ToggleCompletionResult{}
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		updated, err := h.taskRepo.Update(txCtx, task.ID, domain.DiffPatch(task, toggled.Updated))
		if err != nil {
			return err
		}
		result.Task = updated
		events := []sharedDomain.DomainEvent{completionEvent(updated)}

		if toggled.ParentUpdate != nil {
			parent, _ := domain.FindTask(snapshot, toggled.ParentUpdate.ID)
			p, err := h.taskRepo.Update(txCtx, parent.ID, domain.DiffPatch(parent, *toggled.ParentUpdate))
			if err != nil {
				return err
			}
			result.Parent = &p
			events = append(events, completionEvent(p))
		}

		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, events...)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func completionEvent(t domain.Task) sharedDomain.DomainEvent {
	if t.IsCompleted {
		return domain.NewTaskCompleted(t)
	}
	return domain.NewTaskReopened(t)
}
