package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// FindNextSlotQuery asks for the earliest start for a task of a given length.
type FindNextSlotQuery struct {
	UserID           uuid.UUID
	EstimatedMinutes int
	// Date defaults to today.
	Date time.Time
}

// SlotDTO is the answer to a FindNextSlotQuery.
type SlotDTO struct {
	Found         bool   `json:"found"`
	Date          string `json:"date"`
	Start         string `json:"start,omitempty"`
	End           string `json:"end,omitempty"`
	BufferMinutes int    `json:"buffer_minutes,omitempty"`
}

// FindNextSlotHandler handles the FindNextSlotQuery.
type FindNextSlotHandler struct {
	taskRepo domain.TaskRepository
	planner  *services.Planner
}

// NewFindNextSlotHandler creates a new FindNextSlotHandler.
func NewFindNextSlotHandler(taskRepo domain.TaskRepository, planner *services.Planner) *FindNextSlotHandler {
	return &FindNextSlotHandler{taskRepo: taskRepo, planner: planner}
}

// Handle executes the FindNextSlotQuery.
func (h *FindNextSlotHandler) Handle(ctx context.Context, query FindNextSlotQuery) (*SlotDTO, error) {
	date := query.Date
	if date.IsZero() {
		date = h.planner.Today()
	}
	date = domain.DateOf(date)

	tasks, err := h.taskRepo.List(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	slot, err := h.planner.FindNextFreeSlot(date, query.EstimatedMinutes, tasks)
	if err != nil {
		return nil, err
	}

	dto := &SlotDTO{Found: slot.Found, Date: domain.FormatDate(date)}
	if slot.Found {
		dto.Start = slot.Start.String()
		dto.End = slot.Start.Add(query.EstimatedMinutes).String()
		dto.BufferMinutes = slot.BufferMinutes
	}
	return dto, nil
}
