package services

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
)

// NeedsSplit reports whether minutes exceeds the chunk size.
func (p *Planner) NeedsSplit(minutes int) bool {
	return minutes > p.config.ChunkDurationMinutes
}

// IntervalDurations distributes minutes over ceil(minutes/chunk) intervals.
// The first minutes%count intervals get one extra minute.
func IntervalDurations(minutes, chunk int) []int {
	if minutes <= 0 || chunk <= 0 {
		return nil
	}
	count := (minutes + chunk - 1) / chunk
	base, extra := minutes/count, minutes%count
	out := make([]int, count)
	for i := range out {
		out[i] = base
		if i < extra {
			out[i]++
		}
	}
	return out
}

// SplitIntoIntervals decomposes an over-long task into a project placeholder
// and ordered child intervals laid out across work days.
//
// The first interval starts at the opening time for a future date and at the
// current slot for today. An overdue task starts today at its requested time
// or the current slot, whichever is later. Intervals never cross the closing time; the cursor rolls to the
// next work day instead. On today, committed tasks are stepped over.
func (p *Planner) SplitIntoIntervals(req SplitRequest, committedToday []domain.Task) (SplitResult, error) {
	tmpl := req.Task
	if tmpl.EstimatedMinutes <= 0 {
		return SplitResult{}, domain.ErrInvalidDuration
	}
	if tmpl.DueDate == nil {
		return SplitResult{}, domain.ErrMissingDate
	}
	if !p.NeedsSplit(tmpl.EstimatedMinutes) {
		return SplitResult{}, domain.ErrNoSplitNeeded
	}

	durations := IntervalDurations(tmpl.EstimatedMinutes, p.config.ChunkDurationMinutes)
	date, cursor := p.splitCursor(tmpl)
	now := p.now().UTC()

	parent := tmpl.Clone()
	if parent.ID == uuid.Nil {
		parent.ID = uuid.New()
	}
	parent.IsProject = true
	parent.DueTime = nil
	parent.ParentTaskID = nil
	parent.IntervalIndex = 0
	parent.IsCompleted = false
	parent.CompletedAt = nil
	parent.CreatedAt = now
	parent.UpdatedAt = now

	cfg := p.config
	todayCount := 0
	children := make([]domain.Task, 0, len(durations))
	for i, dur := range durations {
		if req.MaxIntervalsToday > 0 && p.IsToday(date) && todayCount >= req.MaxIntervalsToday {
			date, cursor = cfg.NextWorkday(date), cfg.StartMinute
		}
		date, cursor = p.fitInterval(date, cursor, dur, committedToday)

		day, start := date, cursor
		parentID := parent.ID
		child := domain.Task{
			ID:               uuid.New(),
			UserID:           tmpl.UserID,
			Title:            fmt.Sprintf("%s (%d/%d)", tmpl.Title, i+1, len(durations)),
			EstimatedMinutes: dur,
			DueDate:          &day,
			DueTime:          &start,
			Priority:         tmpl.Priority,
			Quadrant:         tmpl.Quadrant,
			Category:         tmpl.Category,
			ParentTaskID:     &parentID,
			IntervalIndex:    i + 1,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		children = append(children, child)
		if p.IsToday(date) {
			todayCount++
		}

		cursor = cursor.Add(dur + cfg.IntervalGapMinutes)
		if cursor >= cfg.EndMinute && i < len(durations)-1 {
			date, cursor = cfg.NextWorkday(date), cfg.StartMinute
		}
	}

	first := *children[0].DueDate
	parent.DueDate = &first
	return SplitResult{Parent: parent, Children: children}, nil
}

// splitCursor resolves the starting date and time for the first interval.
func (p *Planner) splitCursor(t domain.Task) (time.Time, domain.TimeOfDay) {
	cfg := p.config
	today := p.Today()
	date := domain.DateOf(*t.DueDate)

	var cursor domain.TimeOfDay
	switch {
	case date.After(today):
		cursor = cfg.StartMinute
	case date.Equal(today):
		cursor = p.clamp(p.currentSlot())
	default:
		// Overdue: the requested time applies on today, never before now.
		date = today
		cursor = p.clamp(p.currentSlot())
		if t.DueTime != nil {
			cursor = max(cursor, p.clamp(*t.DueTime))
		}
	}

	if !cfg.IsWorkday(date) {
		return p.firstWorkday(date), cfg.StartMinute
	}
	if cursor >= cfg.EndMinute {
		return cfg.NextWorkday(date), cfg.StartMinute
	}
	return date, cursor
}

// fitInterval moves the cursor forward until an interval of dur minutes fits
// before closing time without overlapping today's committed tasks.
func (p *Planner) fitInterval(date time.Time, cursor domain.TimeOfDay, dur int, committed []domain.Task) (time.Time, domain.TimeOfDay) {
	cfg := p.config
	for {
		if int(cursor)+dur > int(cfg.EndMinute) {
			date, cursor = cfg.NextWorkday(date), cfg.StartMinute
			continue
		}
		if !p.IsToday(date) {
			return date, cursor
		}
		next, moved := skipCommitted(date, cursor, dur, committed)
		if !moved {
			return date, cursor
		}
		cursor = next
	}
}

// skipCommitted returns the end of the first committed task overlapping
// [cursor, cursor+dur) on date.
func skipCommitted(date time.Time, cursor domain.TimeOfDay, dur int, committed []domain.Task) (domain.TimeOfDay, bool) {
	want := domain.TimeWindow{Start: cursor, End: cursor.Add(dur)}
	for _, t := range committed {
		if !t.OnDate(date) || !t.OccupiesTime() {
			continue
		}
		w, _ := t.Window()
		if w.Overlaps(want) {
			return w.End, true
		}
	}
	return cursor, false
}
