package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// RolloverCommand moves a user's overdue open tasks onto today.
type RolloverCommand struct {
	UserID uuid.UUID
}

// RolloverResult reports what the rollover did.
type RolloverResult struct {
	Date time.Time
	// Skipped is true when the rollover already ran today.
	Skipped bool
	Items   []ItemResult
}

// RolloverHandler handles the RolloverCommand.
//
// It runs at most once per day per user: the last run date lives in the
// user's PlannerState. Overdue plain tasks move to today without a time so
// they can be packed again. Intervals and projects are left alone because
// moving one interval would break the order of its siblings.
type RolloverHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
	stateStore domain.StateStore
	logger     *slog.Logger
}

// NewRolloverHandler creates a new RolloverHandler.
func NewRolloverHandler(
	taskRepo domain.TaskRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	planner *services.Planner,
	stateStore domain.StateStore,
	logger *slog.Logger,
) *RolloverHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RolloverHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
		stateStore: stateStore,
		logger:     logger,
	}
}

// Handle executes the RolloverCommand.
func (h *RolloverHandler) Handle(ctx context.Context, cmd RolloverCommand) (*RolloverResult, error) {
	today := h.planner.Today()
	result := &RolloverResult{Date: today}

	state, err := h.stateStore.Load(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if state.AutoMovedOn(today) {
		result.Skipped = true
		return result, nil
	}

	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}

	for _, t := range overdue(snapshot, today) {
		item := ItemResult{TaskID: t.ID}
		item.Err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
			updated, err := h.taskRepo.Update(txCtx, t.ID, domain.ReschedulePatch(today, nil))
			if err != nil {
				return err
			}
			item.Task = &updated
			return saveEvents(txCtx, h.outboxRepo, cmd.UserID, domain.NewTaskRescheduled(updated))
		})
		if item.Err != nil {
			item.Task = nil
		}
		result.Items = append(result.Items, item)
	}

	// A partial run is retried on the next call.
	if failed := Failed(result.Items); len(failed) > 0 {
		h.logger.Warn("rollover incomplete", "user_id", cmd.UserID, "failed", len(failed))
		return result, nil
	}

	state.MarkAutoMoved(today)
	state.PruneBefore(today)
	if err := h.stateStore.Save(ctx, state); err != nil {
		return nil, err
	}

	if len(result.Items) > 0 {
		h.logger.Info("rolled over overdue tasks", "user_id", cmd.UserID, "count", len(result.Items))
	}
	return result, nil
}

func overdue(tasks []domain.Task, today time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.IsCompleted || t.IsProject || t.IsChild() || t.DueDate == nil {
			continue
		}
		if domain.DateOf(*t.DueDate).Before(today) {
			out = append(out, t)
		}
	}
	return out
}
