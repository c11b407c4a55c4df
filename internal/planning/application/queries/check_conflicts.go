package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// CheckConflictsQuery describes a prospective placement.
type CheckConflictsQuery struct {
	UserID           uuid.UUID
	Date             time.Time
	Time             *domain.TimeOfDay
	EstimatedMinutes int
	// TaskID, when set, is the task being moved; it is not compared with itself.
	TaskID *uuid.UUID
}

// ConflictReportDTO is the advisory result of a conflict check.
type ConflictReportDTO struct {
	Date             string       `json:"date"`
	Overlaps         []TaskDTO    `json:"overlaps"`
	TotalMinutes     int          `json:"total_minutes"`
	CommittedMinutes int          `json:"committed_minutes"`
	AvailableMinutes int          `json:"available_minutes"`
	RequiredMinutes  int          `json:"required_minutes"`
	Deficit          int          `json:"deficit"`
	Overloaded       bool         `json:"overloaded"`
	Deferral         *DeferralDTO `json:"deferral,omitempty"`
}

// DeferralDTO is a suggestion of tasks to push to TargetDate.
type DeferralDTO struct {
	Tasks        []TaskDTO `json:"tasks"`
	FreedMinutes int       `json:"freed_minutes"`
	Shortfall    int       `json:"shortfall"`
	Sufficient   bool      `json:"sufficient"`
	TargetDate   string    `json:"target_date"`
}

// HasConflicts reports whether the placement overlaps or overloads.
func (r *ConflictReportDTO) HasConflicts() bool {
	return len(r.Overlaps) > 0 || r.Overloaded
}

// CheckConflictsHandler handles the CheckConflictsQuery.
type CheckConflictsHandler struct {
	taskRepo domain.TaskRepository
	planner  *services.Planner
}

// NewCheckConflictsHandler creates a new CheckConflictsHandler.
func NewCheckConflictsHandler(taskRepo domain.TaskRepository, planner *services.Planner) *CheckConflictsHandler {
	return &CheckConflictsHandler{taskRepo: taskRepo, planner: planner}
}

// Handle executes the CheckConflictsQuery.
func (h *CheckConflictsHandler) Handle(ctx context.Context, query CheckConflictsQuery) (*ConflictReportDTO, error) {
	if query.Date.IsZero() {
		return nil, domain.ErrMissingDate
	}
	if query.EstimatedMinutes <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	tasks, err := h.taskRepo.List(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	date := domain.DateOf(query.Date)
	candidate := domain.Task{
		ID:               uuid.New(),
		EstimatedMinutes: query.EstimatedMinutes,
		DueDate:          &date,
		DueTime:          query.Time,
	}
	existing := tasks
	if query.TaskID != nil {
		candidate.ID = *query.TaskID
		if t, ok := domain.FindTask(tasks, *query.TaskID); ok {
			candidate.ParentTaskID = t.ParentTaskID
		}
		existing = make([]domain.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.ID != *query.TaskID {
				existing = append(existing, t)
			}
		}
	}

	report := &ConflictReportDTO{Date: domain.FormatDate(date), Overlaps: []TaskDTO{}}
	if candidate.DueTime != nil {
		overlaps, err := services.FindOverlaps(candidate, existing)
		if err != nil {
			return nil, err
		}
		report.Overlaps = ToDTOs(overlaps)
	}

	overload, err := h.planner.ComputeOverload(date, query.EstimatedMinutes, existing)
	if err != nil {
		return nil, err
	}
	report.TotalMinutes = overload.TotalMinutes
	report.CommittedMinutes = overload.CommittedMinutes
	report.AvailableMinutes = overload.AvailableMinutes
	report.RequiredMinutes = overload.RequiredMinutes
	report.Deficit = overload.Deficit
	report.Overloaded = overload.Overloaded()

	if report.Overloaded {
		plan, err := h.planner.SuggestDeferrals(existing, date, overload.Deficit)
		if err != nil {
			return nil, err
		}
		report.Deferral = &DeferralDTO{
			Tasks:        ToDTOs(plan.Tasks),
			FreedMinutes: plan.FreedMinutes,
			Shortfall:    plan.Shortfall,
			Sufficient:   plan.Sufficient(),
			TargetDate:   domain.FormatDate(plan.TargetDate),
		}
	}
	return report, nil
}
