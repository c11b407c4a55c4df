package queries

import (
	"context"
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// GetDayPlanQuery asks for one day of a user's plan.
type GetDayPlanQuery struct {
	UserID uuid.UUID
	// Date defaults to today.
	Date time.Time
}

// DayPlanDTO summarizes a day: its tasks, free windows and load.
type DayPlanDTO struct {
	Date             string      `json:"date"`
	IsWorkday        bool        `json:"is_workday"`
	WorkStart        string      `json:"work_start"`
	WorkEnd          string      `json:"work_end"`
	Timed            []TaskDTO   `json:"timed"`
	Untimed          []TaskDTO   `json:"untimed"`
	Completed        []TaskDTO   `json:"completed"`
	FreeWindows      []WindowDTO `json:"free_windows"`
	TotalMinutes     int         `json:"total_minutes"`
	CommittedMinutes int         `json:"committed_minutes"`
	FreeMinutes      int         `json:"free_minutes"`
	// Utilization is committed over total minutes, 0 on non-work days.
	Utilization float64 `json:"utilization"`
	// Conflicts lists timed tasks that overlap another task on the day.
	Conflicts []ConflictDTO `json:"conflicts,omitempty"`
}

// ConflictDTO names a task and the tasks it overlaps.
type ConflictDTO struct {
	TaskID uuid.UUID   `json:"task_id"`
	Title  string      `json:"title"`
	With   []uuid.UUID `json:"with"`
}

// Overloaded reports whether more is committed than the day holds.
func (d *DayPlanDTO) Overloaded() bool {
	return d.CommittedMinutes > d.TotalMinutes
}

// GetDayPlanHandler handles the GetDayPlanQuery.
type GetDayPlanHandler struct {
	taskRepo domain.TaskRepository
	planner  *services.Planner
}

// NewGetDayPlanHandler creates a new GetDayPlanHandler.
func NewGetDayPlanHandler(taskRepo domain.TaskRepository, planner *services.Planner) *GetDayPlanHandler {
	return &GetDayPlanHandler{taskRepo: taskRepo, planner: planner}
}

// Handle executes the GetDayPlanQuery.
func (h *GetDayPlanHandler) Handle(ctx context.Context, query GetDayPlanQuery) (*DayPlanDTO, error) {
	date := query.Date
	if date.IsZero() {
		date = h.planner.Today()
	}
	date = domain.DateOf(date)

	tasks, err := h.taskRepo.List(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	cfg := h.planner.Config()
	plan := &DayPlanDTO{
		Date:      domain.FormatDate(date),
		IsWorkday: cfg.IsWorkday(date),
		WorkStart: cfg.StartMinute.String(),
		WorkEnd:   cfg.EndMinute.String(),
	}

	var day []domain.Task
	for _, t := range tasks {
		if t.OnDate(date) && !t.IsProject {
			day = append(day, t)
		}
	}
	slices.SortStableFunc(day, compareSchedule)

	for _, t := range day {
		switch {
		case t.IsCompleted:
			plan.Completed = append(plan.Completed, ToDTO(t))
		case t.DueTime != nil:
			plan.Timed = append(plan.Timed, ToDTO(t))
		default:
			plan.Untimed = append(plan.Untimed, ToDTO(t))
		}
	}

	windows := h.planner.ComputeFreeWindows(date, day)
	plan.FreeWindows = ToWindowDTOs(windows)
	for _, w := range windows {
		plan.FreeMinutes += w.Duration()
	}
	if plan.IsWorkday {
		plan.TotalMinutes = cfg.TotalMinutes()
	}
	plan.CommittedMinutes = services.CommittedMinutes(date, day)
	if plan.TotalMinutes > 0 {
		plan.Utilization = float64(plan.CommittedMinutes) / float64(plan.TotalMinutes)
	}

	for _, t := range day {
		if !t.OccupiesTime() {
			continue
		}
		overlaps, err := services.FindOverlaps(t, day)
		if err != nil || len(overlaps) == 0 {
			continue
		}
		c := ConflictDTO{TaskID: t.ID, Title: t.Title}
		for _, o := range overlaps {
			c.With = append(c.With, o.ID)
		}
		plan.Conflicts = append(plan.Conflicts, c)
	}
	return plan, nil
}
