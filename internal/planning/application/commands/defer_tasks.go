package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// DeferTasksCommand pushes tasks to the next work day.
type DeferTasksCommand struct {
	UserID  uuid.UUID
	TaskIDs []uuid.UUID
}

// DeferTasksResult has one item per requested task, in request order.
type DeferTasksResult struct {
	Items []ItemResult
}

// DeferTasksHandler handles the DeferTasksCommand.
//
// Each task moves to the work day after the later of its own date and today,
// keeping its time of day. Items are applied independently; a failure on one
// does not stop the others.
type DeferTasksHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
}

// NewDeferTasksHandler creates a new DeferTasksHandler.
func NewDeferTasksHandler(taskRepo domain.TaskRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, planner *services.Planner) *DeferTasksHandler {
	return &DeferTasksHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
	}
}

// Handle executes the DeferTasksCommand.
func (h *DeferTasksHandler) Handle(ctx context.Context, cmd DeferTasksCommand) (*DeferTasksResult, error) {
	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}

	result := &DeferTasksResult{Items: make([]ItemResult, 0, len(cmd.TaskIDs))}
	for _, id := range cmd.TaskIDs {
		result.Items = append(result.Items, h.deferOne(ctx, cmd.UserID, snapshot, id))
	}
	return result, nil
}

func (h *DeferTasksHandler) deferOne(ctx context.Context, userID uuid.UUID, snapshot []domain.Task, id uuid.UUID) ItemResult {
	item := ItemResult{TaskID: id}

	task, err := findOwned(snapshot, id, userID)
	if err != nil {
		item.Err = err
		return item
	}
	if err := deferrable(task); err != nil {
		item.Err = err
		return item
	}

	from := *task.DueDate
	target := h.TargetDate(from)
	item.Err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		updated, err := h.taskRepo.Update(txCtx, task.ID, domain.ReschedulePatch(target, task.DueTime))
		if err != nil {
			return err
		}
		item.Task = &updated
		return saveEvents(txCtx, h.outboxRepo, userID, domain.NewTaskDeferred(updated, domain.FormatDate(from)))
	})
	if item.Err != nil {
		item.Task = nil
	}
	return item
}

// TargetDate returns the work day a task dated from would be deferred to.
func (h *DeferTasksHandler) TargetDate(from time.Time) time.Time {
	base := domain.DateOf(from)
	if today := h.planner.Today(); base.Before(today) {
		base = today
	}
	return h.planner.Config().NextWorkday(base)
}

func deferrable(t domain.Task) error {
	switch {
	case t.IsProject:
		return domain.ErrProjectNotPlaceable
	case t.IsChild():
		return fmt.Errorf("%w: %s", domain.ErrIntervalNotDeferrable, t.ID)
	case t.IsCompleted:
		return domain.ErrTaskCompleted
	case t.DueDate == nil:
		return domain.ErrMissingDate
	}
	return nil
}
