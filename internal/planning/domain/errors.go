package domain

import "errors"

var (
	ErrEmptyTitle       = errors.New("task title cannot be empty")
	ErrInvalidDuration  = errors.New("estimated duration must be positive")
	ErrMissingDate      = errors.New("a due date is required for this operation")
	ErrMissingTime      = errors.New("a due time is required for this operation")
	ErrInvalidPriority  = errors.New("invalid priority value")
	ErrInvalidQuadrant  = errors.New("quadrant must be between 1 and 4")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidWindow    = errors.New("time window end must be after start")
	ErrInvalidWorkDay   = errors.New("invalid work day configuration")
	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskCompleted    = errors.New("task is already completed")

	// ErrNoSplitNeeded is returned when a task fits within one chunk.
	ErrNoSplitNeeded = errors.New("task duration does not exceed the chunk size")
	// ErrProjectCompletionDerived is returned when a parent is toggled directly.
	ErrProjectCompletionDerived = errors.New("project completion is derived from its intervals")
	// ErrProjectNotPlaceable is returned when a parent is given a time slot.
	ErrProjectNotPlaceable = errors.New("project placeholders cannot be placed on the work day")
	// ErrIntervalOrder is returned when an interval would start before its predecessor ends.
	ErrIntervalOrder = errors.New("interval must not start before the previous interval ends")
	// ErrIntervalNotDeferrable is returned when deferral targets a child interval.
	ErrIntervalNotDeferrable = errors.New("intervals move with their project and cannot be deferred alone")
)
