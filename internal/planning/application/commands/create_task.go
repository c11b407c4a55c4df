package commands

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// CreateTaskCommand contains the data needed to create a task.
type CreateTaskCommand struct {
	UserID           uuid.UUID
	Title            string
	EstimatedMinutes int
	DueDate          *time.Time
	DueTime          *domain.TimeOfDay
	Priority         string
	Quadrant         int
	Category         string
	// AutoPlace assigns the next free slot to an untimed task due today.
	AutoPlace bool
	// MaxIntervalsToday caps how many intervals of a split land on today.
	MaxIntervalsToday int
}

// CreateTaskResult contains the created task. For a split task, Task is the
// project placeholder and Intervals holds its children in order.
type CreateTaskResult struct {
	Task      domain.Task
	Intervals []domain.Task
	// Slot is set when auto-placement was attempted.
	Slot *services.SlotResult
}

// Split reports whether the task was decomposed into intervals.
func (r *CreateTaskResult) Split() bool { return len(r.Intervals) > 0 }

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
	stateStore domain.StateStore
	logger     *slog.Logger
}

// NewCreateTaskHandler creates a new CreateTaskHandler. stateStore may be nil.
func NewCreateTaskHandler(
	taskRepo domain.TaskRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	planner *services.Planner,
	stateStore domain.StateStore,
	logger *slog.Logger,
) *CreateTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
		stateStore: stateStore,
		logger:     logger,
	}
}

// Handle executes the CreateTaskCommand.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	t, err := h.buildTask(cmd)
	if err != nil {
		return nil, err
	}

	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if h.planner.NeedsSplit(t.EstimatedMinutes) {
		return h.createSplit(ctx, cmd, t, snapshot)
	}
	return h.createPlain(ctx, cmd, t, snapshot)
}

func (h *CreateTaskHandler) buildTask(cmd CreateTaskCommand) (domain.Task, error) {
	t, err := domain.NewTask(cmd.UserID, cmd.Title, cmd.EstimatedMinutes, h.planner.Now())
	if err != nil {
		return domain.Task{}, err
	}

	priority, err := domain.ParsePriority(cmd.Priority)
	if err != nil {
		return domain.Task{}, err
	}
	t.Priority = priority
	if cmd.Quadrant != 0 {
		t.Quadrant = cmd.Quadrant
	}
	t.Category = cmd.Category
	if cmd.DueDate != nil {
		d := domain.DateOf(*cmd.DueDate)
		t.DueDate = &d
	}
	if cmd.DueTime != nil {
		if !cmd.DueTime.IsValid() {
			return domain.Task{}, domain.ErrInvalidTimeOfDay
		}
		tm := *cmd.DueTime
		t.DueTime = &tm
	}
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (h *CreateTaskHandler) createPlain(ctx context.Context, cmd CreateTaskCommand, t domain.Task, snapshot []domain.Task) (*CreateTaskResult, error) {
	result := &CreateTaskResult{}

	if cmd.AutoPlace && t.DueTime == nil && (t.DueDate == nil || h.planner.IsToday(*t.DueDate)) {
		today := h.planner.Today()
		slot, err := h.planner.FindNextFreeSlot(today, t.EstimatedMinutes, snapshot)
		if err != nil {
			return nil, err
		}
		result.Slot = &slot
		if slot.Found {
			start := slot.Start
			t.DueDate = &today
			t.DueTime = &start
		}
	}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		created, err := h.taskRepo.Create(txCtx, t)
		if err != nil {
			return err
		}
		result.Task = created
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, domain.NewTaskCreated(created))
	})
	if err != nil {
		return nil, err
	}

	if result.Slot != nil && result.Slot.Found && result.Slot.BufferMinutes > 0 {
		h.recordBuffer(ctx, cmd.UserID, *result.Task.DueDate, result.Slot.BufferMinutes)
	}
	return result, nil
}

func (h *CreateTaskHandler) createSplit(ctx context.Context, cmd CreateTaskCommand, t domain.Task, snapshot []domain.Task) (*CreateTaskResult, error) {
	if t.DueDate == nil {
		today := h.planner.Today()
		t.DueDate = &today
	}

	split, err := h.planner.SplitIntoIntervals(services.SplitRequest{
		Task:              t,
		MaxIntervalsToday: cmd.MaxIntervalsToday,
	}, snapshot)
	if err != nil {
		return nil, err
	}

	result := &CreateTaskResult{}
	var created []uuid.UUID
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		parent, err := h.taskRepo.Create(txCtx, split.Parent)
		if err != nil {
			return err
		}
		created = append(created, parent.ID)
		result.Task = parent

		for _, child := range split.Children {
			c, err := h.taskRepo.Create(txCtx, child)
			if err != nil {
				return err
			}
			created = append(created, c.ID)
			result.Intervals = append(result.Intervals, c)
		}

		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, domain.NewTaskSplit(parent, result.Intervals))
	})
	if err != nil {
		if len(created) == 0 {
			return nil, err
		}
		return nil, h.compensate(ctx, created, err)
	}

	h.logger.Info("task split into intervals",
		"task_id", result.Task.ID,
		"intervals", len(result.Intervals),
		"minutes", result.Task.EstimatedMinutes,
	)
	return result, nil
}

// compensate removes records written before a failed split, children first.
// Records already gone, for instance after a transactional rollback, count
// as removed.
func (h *CreateTaskHandler) compensate(ctx context.Context, created []uuid.UUID, cause error) error {
	var errs []error
	for _, id := range slices.Backward(created) {
		if err := h.taskRepo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrTaskNotFound) {
			errs = append(errs, err)
		}
	}

	pcErr := &PartialCommitError{
		Op:              "create intervals",
		Created:         created,
		Err:             cause,
		CompensationErr: errors.Join(errs...),
	}
	h.logger.Warn("interval creation rolled back",
		"written", len(created),
		"error", cause,
		"compensated", pcErr.Compensated(),
	)
	return pcErr
}

func (h *CreateTaskHandler) recordBuffer(ctx context.Context, userID uuid.UUID, date time.Time, minutes int) {
	if h.stateStore == nil {
		return
	}
	state, err := h.stateStore.Load(ctx, userID)
	if err == nil {
		state.AddBufferUsage(date, minutes)
		err = h.stateStore.Save(ctx, state)
	}
	if err != nil {
		h.logger.Warn("failed to record buffer usage", "user_id", userID, "error", err)
	}
}
