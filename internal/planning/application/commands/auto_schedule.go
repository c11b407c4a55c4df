package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/tempo/pkg/observability"
	"github.com/google/uuid"
)

// AutoScheduleCommand packs the user's unplaced tasks into a day.
type AutoScheduleCommand struct {
	UserID uuid.UUID
	Date   time.Time
}

// AutoScheduleResult reports the computed plan and what was written.
type AutoScheduleResult struct {
	Date       time.Time
	Windows    []domain.TimeWindow
	Placements []services.Placement
	Unplaced   []domain.Task
	Items      []ItemResult
}

// AutoScheduleHandler handles the AutoScheduleCommand.
//
// Candidates are open tasks with no date, plus open tasks dated on the target
// day without a time. Each placement is written in its own unit of work; a
// failed write is reported on its item and the rest still go through.
type AutoScheduleHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
	metrics    observability.Metrics
	logger     *slog.Logger
}

// NewAutoScheduleHandler creates a new AutoScheduleHandler.
func NewAutoScheduleHandler(
	taskRepo domain.TaskRepository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	planner *services.Planner,
	metrics observability.Metrics,
	logger *slog.Logger,
) *AutoScheduleHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoScheduleHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle executes the AutoScheduleCommand.
func (h *AutoScheduleHandler) Handle(ctx context.Context, cmd AutoScheduleCommand) (result *AutoScheduleResult, err error) {
	timer := observability.StartTimer("auto_schedule").
		WithLogger(h.logger).
		WithMetrics(h.metrics)
	defer func() { timer.StopWithError(err) }()

	if cmd.Date.IsZero() {
		return nil, domain.ErrMissingDate
	}
	date := domain.DateOf(cmd.Date)

	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}

	windows := h.planner.ComputeFreeWindows(date, snapshot)
	packed, err := h.planner.PackTasks(date, windows, packCandidates(date, snapshot))
	if err != nil {
		return nil, err
	}

	result = &AutoScheduleResult{
		Date:       date,
		Windows:    windows,
		Placements: packed.Placements,
		Unplaced:   packed.Unplaced,
	}
	for _, pl := range packed.Placements {
		result.Items = append(result.Items, h.apply(ctx, cmd.UserID, pl))
	}

	failed := len(Failed(result.Items))
	h.metrics.Counter(observability.MetricTasksPlaced, int64(len(result.Items)-failed))
	h.metrics.Counter(observability.MetricTasksUnplaced, int64(len(result.Unplaced)))
	if failed > 0 {
		h.metrics.Counter(observability.MetricPlacementErrors, int64(failed))
		h.logger.Warn("some placements were not saved",
			"date", domain.FormatDate(date),
			"failed", failed,
			"placed", len(result.Items)-failed,
		)
	}
	return result, nil
}

func (h *AutoScheduleHandler) apply(ctx context.Context, userID uuid.UUID, pl services.Placement) ItemResult {
	item := ItemResult{TaskID: pl.Task.ID}
	start := pl.Start
	item.Err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		updated, err := h.taskRepo.Update(txCtx, pl.Task.ID, domain.ReschedulePatch(pl.Date, &start))
		if err != nil {
			return err
		}
		item.Task = &updated
		return saveEvents(txCtx, h.outboxRepo, userID, domain.NewTaskRescheduled(updated))
	})
	if item.Err != nil {
		item.Task = nil
	}
	return item
}

func packCandidates(date time.Time, tasks []domain.Task) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.IsCompleted || t.IsProject || t.IsChild() || t.DueTime != nil {
			continue
		}
		if t.DueDate == nil || t.OnDate(date) {
			out = append(out, t)
		}
	}
	return out
}
