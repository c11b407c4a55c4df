package services

import (
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// FindNextFreeSlot returns the earliest start on date at or after the later
// of "now" (rounded to the slot granularity) and the end of the latest
// committed task. When the day has committed tasks the buffer is added to
// that bound and the result is rounded up to the slot grid.
//
// It returns NotFound when that start falls at or after closing time, when
// date is in the past, or when date is not a work day. Callers should then
// leave the task unplaced or ask for an explicit time.
func (p *Planner) FindNextFreeSlot(date time.Time, durationMinutes int, existing []domain.Task) (SlotResult, error) {
	if date.IsZero() {
		return NotFound(), domain.ErrMissingDate
	}
	if durationMinutes <= 0 {
		return NotFound(), domain.ErrInvalidDuration
	}

	cfg := p.config
	day := domain.DateOf(date)
	today := p.Today()
	if day.Before(today) || !cfg.IsWorkday(day) {
		return NotFound(), nil
	}

	start := cfg.StartMinute
	if day.Equal(today) {
		start = max(start, p.currentSlot())
	}

	buffer := 0
	if latest, ok := latestEnd(day, existing); ok {
		start = max(start, latest).Add(cfg.BufferMinutes).RoundUp(cfg.SlotGranularityMinutes)
		buffer = cfg.BufferMinutes
	}

	if start >= cfg.EndMinute {
		return NotFound(), nil
	}
	return FoundAt(start, buffer), nil
}

func latestEnd(day time.Time, tasks []domain.Task) (domain.TimeOfDay, bool) {
	var latest domain.TimeOfDay
	found := false
	for _, t := range tasks {
		if !t.OnDate(day) || !t.OccupiesTime() {
			continue
		}
		w, _ := t.Window()
		if !found || w.End > latest {
			latest, found = w.End, true
		}
	}
	return latest, found
}
