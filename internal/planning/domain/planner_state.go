package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlannerState carries the per-user counters that survive between sessions.
// The engine never stores it; callers load it, pass it in and save it back.
type PlannerState struct {
	UserID           uuid.UUID      `json:"user_id"`
	LastAutoMoveDate *time.Time     `json:"last_auto_move_date,omitempty"`
	BufferUsed       map[string]int `json:"buffer_used_minutes,omitempty"`
}

// NewPlannerState returns an empty state for a user.
func NewPlannerState(userID uuid.UUID) *PlannerState {
	return &PlannerState{UserID: userID, BufferUsed: make(map[string]int)}
}

// AutoMovedOn reports whether the rollover already ran for date.
func (s *PlannerState) AutoMovedOn(date time.Time) bool {
	return s.LastAutoMoveDate != nil && SameDate(*s.LastAutoMoveDate, date)
}

// MarkAutoMoved records that the rollover ran for date.
func (s *PlannerState) MarkAutoMoved(date time.Time) {
	s.LastAutoMoveDate = datePtr(date)
}

// AddBufferUsage accumulates buffer minutes consumed on date.
func (s *PlannerState) AddBufferUsage(date time.Time, minutes int) {
	if s.BufferUsed == nil {
		s.BufferUsed = make(map[string]int)
	}
	s.BufferUsed[FormatDate(date)] += minutes
}

// BufferUsedOn returns the buffer minutes consumed on date.
func (s *PlannerState) BufferUsedOn(date time.Time) int {
	return s.BufferUsed[FormatDate(date)]
}

// PruneBefore drops buffer counters older than date.
func (s *PlannerState) PruneBefore(date time.Time) {
	cutoff := FormatDate(date)
	for k := range s.BufferUsed {
		if k < cutoff {
			delete(s.BufferUsed, k)
		}
	}
}

// StateStore persists PlannerState on behalf of callers.
type StateStore interface {
	// Load returns the stored state, or a fresh one when none exists.
	Load(ctx context.Context, userID uuid.UUID) (*PlannerState, error)
	Save(ctx context.Context, state *PlannerState) error
}
