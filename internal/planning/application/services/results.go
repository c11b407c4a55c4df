package services

import (
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// Placement assigns a task to a start time on a date.
type Placement struct {
	Task  domain.Task
	Date  time.Time
	Start domain.TimeOfDay
	// ReservedMinutes is the task duration rounded up to the slot granularity.
	ReservedMinutes int
}

// Window returns the reserved window of the placement.
func (pl Placement) Window() domain.TimeWindow {
	return domain.TimeWindow{Start: pl.Start, End: pl.Start.Add(pl.ReservedMinutes)}
}

// PackResult is the outcome of best-fit packing.
type PackResult struct {
	Placements []Placement
	Unplaced   []domain.Task
}

// SplitRequest describes a task to decompose into intervals.
type SplitRequest struct {
	// Task supplies the title, duration, date, optional time and classification.
	Task domain.Task
	// MaxIntervalsToday caps intervals placed on the current day. Zero means no cap.
	MaxIntervalsToday int
}

// SplitResult holds the project placeholder and its ordered intervals.
type SplitResult struct {
	Parent   domain.Task
	Children []domain.Task
}

// CompletionResult is the outcome of toggling a task's completion.
// ParentUpdate is set only when the parent's completion state changes.
type CompletionResult struct {
	Updated      domain.Task
	ParentUpdate *domain.Task
}

// OverloadReport describes day-level capacity for a prospective task.
type OverloadReport struct {
	Date             time.Time
	TotalMinutes     int
	CommittedMinutes int
	AvailableMinutes int
	RequiredMinutes  int
	Deficit          int
}

// Overloaded reports whether the day cannot hold the required minutes.
func (r OverloadReport) Overloaded() bool {
	return r.AvailableMinutes < r.RequiredMinutes
}

// DeferralPlan lists tasks to push to TargetDate.
type DeferralPlan struct {
	Tasks           []domain.Task
	FreedMinutes    int
	RequiredMinutes int
	Shortfall       int
	TargetDate      time.Time
}

// Sufficient reports whether the plan frees at least the required minutes.
func (d DeferralPlan) Sufficient() bool {
	return d.Shortfall == 0
}

// SlotResult is either a found start time or NotFound.
type SlotResult struct {
	Found bool
	Start domain.TimeOfDay
	// BufferMinutes is the gap inserted after the latest committed task.
	BufferMinutes int
}

// NotFound is the empty slot result.
func NotFound() SlotResult {
	return SlotResult{}
}

// FoundAt returns a slot result for start.
func FoundAt(start domain.TimeOfDay, buffer int) SlotResult {
	return SlotResult{Found: true, Start: start, BufferMinutes: buffer}
}
