package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority represents task urgency.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
	PriorityUrgent
)

var priorityNames = map[Priority]string{
	PriorityNormal: "normal",
	PriorityHigh:   "high",
	PriorityUrgent: "urgent",
}

// ParsePriority converts a string into a Priority. Empty input means normal.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return PriorityNormal, nil
	case "high":
		return PriorityHigh, nil
	case "urgent":
		return PriorityUrgent, nil
	default:
		return PriorityNormal, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
}

func (p Priority) String() string {
	if name, ok := priorityNames[p]; ok {
		return name
	}
	return "unknown"
}

// Rank orders priorities from most to least urgent, starting at 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	default:
		return 2
	}
}

// IsValid returns true for the known priority values.
func (p Priority) IsValid() bool {
	_, ok := priorityNames[p]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	parsed, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DefaultQuadrant is used when no Eisenhower quadrant is supplied.
const DefaultQuadrant = 2

// Task is the canonical task record used by every planning operation.
type Task struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	Title            string     `json:"title"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DueTime          *TimeOfDay `json:"due_time,omitempty"`
	Priority         Priority   `json:"priority"`
	Quadrant         int        `json:"quadrant"`
	Category         string     `json:"category,omitempty"`
	IsCompleted      bool       `json:"is_completed"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	ParentTaskID     *uuid.UUID `json:"parent_task_id,omitempty"`
	IsProject        bool       `json:"is_project"`
	// IntervalIndex is the 1-based position among siblings; 0 for non-intervals.
	IntervalIndex int       `json:"interval_index,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewTask creates a plain task with defaults applied.
func NewTask(userID uuid.UUID, title string, minutes int, now time.Time) (Task, error) {
	t := Task{
		ID:               uuid.New(),
		UserID:           userID,
		Title:            strings.TrimSpace(title),
		EstimatedMinutes: minutes,
		Priority:         PriorityNormal,
		Quadrant:         DefaultQuadrant,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// Validate checks the fields every persisted task must satisfy.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.EstimatedMinutes <= 0 {
		return ErrInvalidDuration
	}
	if t.Quadrant < 1 || t.Quadrant > 4 {
		return ErrInvalidQuadrant
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.DueTime != nil && !t.DueTime.IsValid() {
		return ErrInvalidTimeOfDay
	}
	return nil
}

// IsChild reports whether t is an interval of some project.
func (t Task) IsChild() bool {
	return t.ParentTaskID != nil
}

// IsChildOf reports whether t is an interval of the given parent.
func (t Task) IsChildOf(parentID uuid.UUID) bool {
	return t.ParentTaskID != nil && *t.ParentTaskID == parentID
}

// OnDate reports whether t is due on the given calendar date.
func (t Task) OnDate(date time.Time) bool {
	return t.DueDate != nil && SameDate(*t.DueDate, date)
}

// IsUnscheduled reports whether t has neither a date nor a time.
func (t Task) IsUnscheduled() bool {
	return t.DueDate == nil && t.DueTime == nil
}

// Window returns the occupied window of a timed task.
// The second result is false when t has no time or duration.
func (t Task) Window() (TimeWindow, bool) {
	if t.DueTime == nil || t.EstimatedMinutes <= 0 {
		return TimeWindow{}, false
	}
	start := *t.DueTime
	return TimeWindow{Start: start, End: start.Add(t.EstimatedMinutes)}, true
}

// OccupiesTime reports whether t blocks a window of the work day.
// Project placeholders and completed tasks never do.
func (t Task) OccupiesTime() bool {
	return !t.IsProject && !t.IsCompleted && t.DueTime != nil && t.EstimatedMinutes > 0
}

// CountsTowardLoad reports whether t consumes capacity on its day.
func (t Task) CountsTowardLoad() bool {
	return !t.IsProject && !t.IsCompleted && t.EstimatedMinutes > 0
}

// Start returns the absolute start instant for a timed task.
func (t Task) Start() (time.Time, bool) {
	if t.DueDate == nil || t.DueTime == nil {
		return time.Time{}, false
	}
	return t.DueTime.On(*t.DueDate), true
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.DueTime != nil {
		tm := *t.DueTime
		c.DueTime = &tm
	}
	if t.CompletedAt != nil {
		ca := *t.CompletedAt
		c.CompletedAt = &ca
	}
	if t.ParentTaskID != nil {
		p := *t.ParentTaskID
		c.ParentTaskID = &p
	}
	return c
}

// ChildrenOf returns the intervals of parentID in interval order.
func ChildrenOf(tasks []Task, parentID uuid.UUID) []Task {
	var children []Task
	for _, t := range tasks {
		if t.IsChildOf(parentID) {
			children = append(children, t)
		}
	}
	slices.SortStableFunc(children, func(a, b Task) int {
		if a.IntervalIndex != b.IntervalIndex {
			return a.IntervalIndex - b.IntervalIndex
		}
		return compareStart(a, b)
	})
	return children
}

// FindTask looks up a task by ID in a snapshot.
func FindTask(tasks []Task, id uuid.UUID) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

func compareStart(a, b Task) int {
	as, aok := a.Start()
	bs, bok := b.Start()
	switch {
	case aok && bok:
		return as.Compare(bs)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}
