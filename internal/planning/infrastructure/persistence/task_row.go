package persistence

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

const taskColumns = `id, user_id, title, estimated_minutes, due_date, due_time, priority,
	quadrant, category, is_completed, completed_at, parent_task_id, is_project,
	interval_index, created_at, updated_at`

// taskRow mirrors the tasks table. Conversion to domain.Task happens only here.
type taskRow struct {
	ID               uuid.UUID
	UserID           uuid.UUID
	Title            string
	EstimatedMinutes int
	DueDate          *time.Time
	DueTime          *int
	Priority         string
	Quadrant         int
	Category         string
	IsCompleted      bool
	CompletedAt      *time.Time
	ParentTaskID     *uuid.UUID
	IsProject        bool
	IntervalIndex    int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func rowFromTask(t domain.Task) taskRow {
	r := taskRow{
		ID:               t.ID,
		UserID:           t.UserID,
		Title:            t.Title,
		EstimatedMinutes: t.EstimatedMinutes,
		Priority:         t.Priority.String(),
		Quadrant:         t.Quadrant,
		Category:         t.Category,
		IsCompleted:      t.IsCompleted,
		CompletedAt:      t.CompletedAt,
		ParentTaskID:     t.ParentTaskID,
		IsProject:        t.IsProject,
		IntervalIndex:    t.IntervalIndex,
		CreatedAt:        t.CreatedAt.UTC(),
		UpdatedAt:        t.UpdatedAt.UTC(),
	}
	if t.DueDate != nil {
		d := domain.DateOf(*t.DueDate)
		r.DueDate = &d
	}
	if t.DueTime != nil {
		m := t.DueTime.Minutes()
		r.DueTime = &m
	}
	return r
}

// args returns the column values in taskColumns order.
func (r taskRow) args() []any {
	return []any{
		r.ID, r.UserID, r.Title, r.EstimatedMinutes, r.DueDate, r.DueTime, r.Priority,
		r.Quadrant, r.Category, r.IsCompleted, r.CompletedAt, r.ParentTaskID, r.IsProject,
		r.IntervalIndex, r.CreatedAt, r.UpdatedAt,
	}
}

func (r taskRow) toDomain() (domain.Task, error) {
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.Task{}, fmt.Errorf("task %s: %w", r.ID, err)
	}

	t := domain.Task{
		ID:               r.ID,
		UserID:           r.UserID,
		Title:            r.Title,
		EstimatedMinutes: r.EstimatedMinutes,
		Priority:         priority,
		Quadrant:         r.Quadrant,
		Category:         r.Category,
		IsCompleted:      r.IsCompleted,
		ParentTaskID:     r.ParentTaskID,
		IsProject:        r.IsProject,
		IntervalIndex:    r.IntervalIndex,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		d := domain.DateOf(*r.DueDate)
		t.DueDate = &d
	}
	if r.DueTime != nil {
		tm := domain.TimeOfDay(*r.DueTime)
		if !tm.IsValid() {
			return domain.Task{}, fmt.Errorf("task %s: %w: %d", r.ID, domain.ErrInvalidTimeOfDay, *r.DueTime)
		}
		t.DueTime = &tm
	}
	if r.CompletedAt != nil {
		at := r.CompletedAt.UTC()
		t.CompletedAt = &at
	}
	return t, nil
}

func scanTask(row database.Row) (domain.Task, error) {
	var r taskRow
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.EstimatedMinutes,
		&r.DueDate,
		&r.DueTime,
		&r.Priority,
		&r.Quadrant,
		&r.Category,
		&r.IsCompleted,
		&r.CompletedAt,
		&r.ParentTaskID,
		&r.IsProject,
		&r.IntervalIndex,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return domain.Task{}, err
	}
	return r.toDomain()
}
