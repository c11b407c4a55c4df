package domain

import (
	sharedDomain "github.com/felixgeelhaar/tempo/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "Task"

	RoutingKeyCreated     = "planning.task.created"
	RoutingKeySplit       = "planning.task.split"
	RoutingKeyCompleted   = "planning.task.completed"
	RoutingKeyReopened    = "planning.task.reopened"
	RoutingKeyRescheduled = "planning.task.rescheduled"
	RoutingKeyDeferred    = "planning.task.deferred"
	RoutingKeyDeleted     = "planning.task.deleted"
)

// TaskCreated is emitted when a plain task is created.
type TaskCreated struct {
	sharedDomain.BaseEvent
	Title            string `json:"title"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	DueDate          string `json:"due_date,omitempty"`
	DueTime          string `json:"due_time,omitempty"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(t Task) *TaskCreated {
	e := &TaskCreated{
		BaseEvent:        sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyCreated),
		Title:            t.Title,
		EstimatedMinutes: t.EstimatedMinutes,
	}
	if t.DueDate != nil {
		e.DueDate = FormatDate(*t.DueDate)
	}
	if t.DueTime != nil {
		e.DueTime = t.DueTime.String()
	}
	return e
}

// TaskSplit is emitted when a task is decomposed into intervals.
type TaskSplit struct {
	sharedDomain.BaseEvent
	Title            string      `json:"title"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	IntervalIDs      []uuid.UUID `json:"interval_ids"`
}

// NewTaskSplit creates a TaskSplit event for the parent placeholder.
func NewTaskSplit(parent Task, children []Task) *TaskSplit {
	ids := make([]uuid.UUID, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	return &TaskSplit{
		BaseEvent:        sharedDomain.NewBaseEvent(parent.ID, AggregateType, RoutingKeySplit),
		Title:            parent.Title,
		EstimatedMinutes: parent.EstimatedMinutes,
		IntervalIDs:      ids,
	}
}

// TaskCompleted is emitted when a task becomes complete.
type TaskCompleted struct {
	sharedDomain.BaseEvent
	ParentTaskID *uuid.UUID `json:"parent_task_id,omitempty"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(t Task) *TaskCompleted {
	return &TaskCompleted{
		BaseEvent:    sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyCompleted),
		ParentTaskID: t.ParentTaskID,
	}
}

// TaskReopened is emitted when a completed task is marked incomplete.
type TaskReopened struct {
	sharedDomain.BaseEvent
	ParentTaskID *uuid.UUID `json:"parent_task_id,omitempty"`
}

// NewTaskReopened creates a TaskReopened event.
func NewTaskReopened(t Task) *TaskReopened {
	return &TaskReopened{
		BaseEvent:    sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyReopened),
		ParentTaskID: t.ParentTaskID,
	}
}

// TaskRescheduled is emitted when a task's date or time changes.
type TaskRescheduled struct {
	sharedDomain.BaseEvent
	DueDate string `json:"due_date,omitempty"`
	DueTime string `json:"due_time,omitempty"`
}

// NewTaskRescheduled creates a TaskRescheduled event from the updated task.
func NewTaskRescheduled(t Task) *TaskRescheduled {
	return &TaskRescheduled{
		BaseEvent: sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyRescheduled),
		DueDate:   optionalDate(t),
		DueTime:   optionalTime(t),
	}
}

// TaskDeferred is emitted when a task is pushed to a later day.
type TaskDeferred struct {
	sharedDomain.BaseEvent
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// NewTaskDeferred creates a TaskDeferred event.
func NewTaskDeferred(t Task, from string) *TaskDeferred {
	return &TaskDeferred{
		BaseEvent: sharedDomain.NewBaseEvent(t.ID, AggregateType, RoutingKeyDeferred),
		FromDate:  from,
		ToDate:    optionalDate(t),
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	sharedDomain.BaseEvent
	CascadedIDs []uuid.UUID `json:"cascaded_ids,omitempty"`
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(id uuid.UUID, cascaded []uuid.UUID) *TaskDeleted {
	return &TaskDeleted{
		BaseEvent:   sharedDomain.NewBaseEvent(id, AggregateType, RoutingKeyDeleted),
		CascadedIDs: cascaded,
	}
}

func optionalDate(t Task) string {
	if t.DueDate == nil {
		return ""
	}
	return FormatDate(*t.DueDate)
}

func optionalTime(t Task) string {
	if t.DueTime == nil {
		return ""
	}
	return t.DueTime.String()
}
