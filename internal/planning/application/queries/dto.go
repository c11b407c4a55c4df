package queries

import (
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// TaskDTO is a data transfer object for tasks.
type TaskDTO struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	Duration         string     `json:"duration"`
	DueDate          string     `json:"due_date,omitempty"`
	DueTime          string     `json:"due_time,omitempty"`
	EndTime          string     `json:"end_time,omitempty"`
	Priority         string     `json:"priority"`
	Quadrant         int        `json:"quadrant"`
	Category         string     `json:"category,omitempty"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	ParentTaskID     *uuid.UUID `json:"parent_task_id,omitempty"`
	IsProject        bool       `json:"is_project"`
	IntervalIndex    int        `json:"interval_index,omitempty"`
}

// WindowDTO is a free or occupied stretch of the work day.
type WindowDTO struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Minutes int    `json:"minutes"`
}

// ToDTO converts a task for presentation.
func ToDTO(t domain.Task) TaskDTO {
	dto := TaskDTO{
		ID:               t.ID,
		Title:            t.Title,
		EstimatedMinutes: t.EstimatedMinutes,
		Duration:         domain.FormatMinutes(t.EstimatedMinutes),
		Priority:         t.Priority.String(),
		Quadrant:         t.Quadrant,
		Category:         t.Category,
		IsCompleted:      t.IsCompleted,
		CompletedAt:      t.CompletedAt,
		ParentTaskID:     t.ParentTaskID,
		IsProject:        t.IsProject,
		IntervalIndex:    t.IntervalIndex,
	}
	if t.DueDate != nil {
		dto.DueDate = domain.FormatDate(*t.DueDate)
	}
	if w, ok := t.Window(); ok {
		dto.DueTime = w.Start.String()
		dto.EndTime = w.End.String()
	}
	return dto
}

// ToDTOs converts a slice of tasks.
func ToDTOs(tasks []domain.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToDTO(t))
	}
	return out
}

// ToWindowDTOs converts time windows.
func ToWindowDTOs(windows []domain.TimeWindow) []WindowDTO {
	out := make([]WindowDTO, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowDTO{Start: w.Start.String(), End: w.End.String(), Minutes: w.Duration()})
	}
	return out
}
