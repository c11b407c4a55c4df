package queries

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// Task status filters.
const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
	StatusAll       = "all"
)

// ListTasksQuery contains the parameters for listing tasks.
type ListTasksQuery struct {
	UserID uuid.UUID
	Status string // "open" (default), "completed", "all"
	// Date limits the result to tasks due on that day.
	Date *time.Time
	// Unscheduled limits the result to tasks without a date.
	Unscheduled bool
	// ParentID limits the result to the intervals of one project.
	ParentID *uuid.UUID
	// HideProjects drops project placeholders.
	HideProjects bool
	Limit        int
}

// ListTasksHandler handles the ListTasksQuery.
type ListTasksHandler struct {
	taskRepo domain.TaskRepository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(taskRepo domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{taskRepo: taskRepo}
}

// Handle executes the ListTasksQuery. Results are ordered by date, time,
// interval position and title; undated tasks come last.
func (h *ListTasksHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskDTO, error) {
	tasks, err := h.taskRepo.List(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	filtered := slices.DeleteFunc(slices.Clone(tasks), func(t domain.Task) bool {
		return !query.matches(t)
	})
	slices.SortStableFunc(filtered, compareSchedule)

	if query.Limit > 0 && len(filtered) > query.Limit {
		filtered = filtered[:query.Limit]
	}
	return ToDTOs(filtered), nil
}

func (q ListTasksQuery) matches(t domain.Task) bool {
	switch q.Status {
	case StatusCompleted:
		if !t.IsCompleted {
			return false
		}
	case StatusAll:
	default:
		if t.IsCompleted {
			return false
		}
	}
	if q.Date != nil && !t.OnDate(*q.Date) {
		return false
	}
	if q.Unscheduled && t.DueDate != nil {
		return false
	}
	if q.ParentID != nil && !t.IsChildOf(*q.ParentID) {
		return false
	}
	if q.HideProjects && t.IsProject {
		return false
	}
	return true
}

// compareSchedule orders tasks by date, then time with untimed last, then
// interval position and title.
func compareSchedule(a, b domain.Task) int {
	if c := compareDates(a.DueDate, b.DueDate); c != 0 {
		return c
	}
	if c := compareTimes(a.DueTime, b.DueTime); c != 0 {
		return c
	}
	return cmp.Or(
		cmp.Compare(a.IntervalIndex, b.IntervalIndex),
		cmp.Compare(a.Title, b.Title),
	)
}

func compareDates(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func compareTimes(a, b *domain.TimeOfDay) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
