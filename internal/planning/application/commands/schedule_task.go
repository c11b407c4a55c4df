package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	sharedApplication "github.com/felixgeelhaar/tempo/internal/shared/application"
	sharedDomain "github.com/felixgeelhaar/tempo/internal/shared/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
)

// ScheduleTaskCommand places a task on a date, optionally at a time.
type ScheduleTaskCommand struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Date   time.Time
	Time   *domain.TimeOfDay
	// RequireNoConflict refuses to commit when the placement overlaps other
	// tasks or overloads the day.
	RequireNoConflict bool
}

// ScheduleTaskResult carries the advisory conflict report alongside the
// outcome. Committed is false when RequireNoConflict held the write back.
type ScheduleTaskResult struct {
	Task      domain.Task
	Committed bool
	Overlaps  []domain.Task
	Overload  services.OverloadReport
	// Deferrals is suggested when the day is overloaded.
	Deferrals *services.DeferralPlan
}

// HasConflicts reports whether any check found a problem.
func (r *ScheduleTaskResult) HasConflicts() bool {
	return len(r.Overlaps) > 0 || r.Overload.Overloaded()
}

// ScheduleTaskHandler handles the ScheduleTaskCommand.
type ScheduleTaskHandler struct {
	taskRepo   domain.TaskRepository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	planner    *services.Planner
}

// NewScheduleTaskHandler creates a new ScheduleTaskHandler.
func NewScheduleTaskHandler(taskRepo domain.TaskRepository, outboxRepo outbox.Repository, uow sharedApplication.UnitOfWork, planner *services.Planner) *ScheduleTaskHandler {
	return &ScheduleTaskHandler{
		taskRepo:   taskRepo,
		outboxRepo: outboxRepo,
		uow:        uow,
		planner:    planner,
	}
}

// Handle executes the ScheduleTaskCommand.
func (h *ScheduleTaskHandler) Handle(ctx context.Context, cmd ScheduleTaskCommand) (*ScheduleTaskResult, error) {
	if cmd.Date.IsZero() {
		return nil, domain.ErrMissingDate
	}
	if cmd.Time != nil && !cmd.Time.IsValid() {
		return nil, domain.ErrInvalidTimeOfDay
	}

	snapshot, err := loadSnapshot(ctx, h.taskRepo, cmd.UserID)
	if err != nil {
		return nil, err
	}
	task, err := findOwned(snapshot, cmd.TaskID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if task.IsProject {
		return nil, domain.ErrProjectNotPlaceable
	}

	now := h.planner.Now()
	patch := domain.ReschedulePatch(cmd.Date, cmd.Time)
	candidate := patch.Apply(task, now)

	var siblings []domain.Task
	if task.IsChild() {
		siblings = domain.ChildrenOf(snapshot, *task.ParentTaskID)
		if err := checkIntervalOrder(candidate, siblings); err != nil {
			return nil, err
		}
	}

	result, err := h.assess(candidate, snapshot)
	if err != nil {
		return nil, err
	}
	if cmd.RequireNoConflict && result.HasConflicts() {
		result.Task = task
		return result, nil
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		updated, err := h.taskRepo.Update(txCtx, task.ID, patch)
		if err != nil {
			return err
		}
		result.Task = updated
		events := []sharedDomain.DomainEvent{domain.NewTaskRescheduled(updated)}

		if task.IsChild() {
			moved, err := h.syncParentDate(txCtx, snapshot, updated, siblings)
			if err != nil {
				return err
			}
			if moved != nil {
				events = append(events, domain.NewTaskRescheduled(*moved))
			}
		}
		return saveEvents(txCtx, h.outboxRepo, cmd.UserID, events...)
	})
	if err != nil {
		return nil, err
	}
	result.Committed = true
	return result, nil
}

// assess runs the overlap and overload checks for candidate against every
// other task in the snapshot.
func (h *ScheduleTaskHandler) assess(candidate domain.Task, snapshot []domain.Task) (*ScheduleTaskResult, error) {
	others := make([]domain.Task, 0, len(snapshot))
	for _, t := range snapshot {
		if t.ID != candidate.ID {
			others = append(others, t)
		}
	}

	result := &ScheduleTaskResult{}
	if candidate.DueTime != nil {
		overlaps, err := services.FindOverlaps(candidate, others)
		if err != nil {
			return nil, err
		}
		result.Overlaps = overlaps
	}

	date := *candidate.DueDate
	report, err := h.planner.ComputeOverload(date, candidate.EstimatedMinutes, others)
	if err != nil {
		return nil, err
	}
	result.Overload = report

	if report.Overloaded() {
		plan, err := h.planner.SuggestDeferrals(others, date, report.Deficit)
		if err != nil {
			return nil, err
		}
		result.Deferrals = &plan
	}
	return result, nil
}

// syncParentDate keeps the project's date on its first interval.
func (h *ScheduleTaskHandler) syncParentDate(ctx context.Context, snapshot []domain.Task, moved domain.Task, siblings []domain.Task) (*domain.Task, error) {
	parent, ok := domain.FindTask(snapshot, *moved.ParentTaskID)
	if !ok {
		return nil, nil
	}

	first := moved
	for _, s := range siblings {
		if s.ID != moved.ID && s.IntervalIndex < first.IntervalIndex {
			first = s
		}
	}
	if first.DueDate == nil || (parent.DueDate != nil && domain.SameDate(*parent.DueDate, *first.DueDate)) {
		return nil, nil
	}

	d := *first.DueDate
	updated, err := h.taskRepo.Update(ctx, parent.ID, domain.TaskPatch{DueDate: &d})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// checkIntervalOrder rejects moves that would put an interval before its
// predecessor ends or after its successor starts.
func checkIntervalOrder(candidate domain.Task, siblings []domain.Task) error {
	for _, s := range siblings {
		if s.ID == candidate.ID || s.IntervalIndex == 0 {
			continue
		}
		var ordered bool
		switch {
		case s.IntervalIndex < candidate.IntervalIndex:
			ordered = !startsBefore(candidate, s)
		case s.IntervalIndex > candidate.IntervalIndex:
			ordered = !startsBefore(s, candidate)
		default:
			ordered = true
		}
		if !ordered {
			return fmt.Errorf("%w: interval %d against interval %d", domain.ErrIntervalOrder, candidate.IntervalIndex, s.IntervalIndex)
		}
	}
	return nil
}

// startsBefore reports whether later begins before earlier ends. Without
// times on both, only the dates are compared.
func startsBefore(later, earlier domain.Task) bool {
	if later.DueDate == nil || earlier.DueDate == nil {
		return false
	}
	ls, lok := later.Start()
	es, eok := earlier.Start()
	if !lok || !eok {
		return domain.DateOf(*later.DueDate).Before(domain.DateOf(*earlier.DueDate))
	}
	earlierEnd := es.Add(time.Duration(earlier.EstimatedMinutes) * time.Minute)
	return ls.Before(earlierEnd)
}
