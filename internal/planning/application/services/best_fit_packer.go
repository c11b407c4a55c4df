package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// PackTasks assigns untimed tasks to the free windows of date using best fit.
//
// Tasks are taken shortest first. Each task's duration is rounded up to the
// slot granularity and placed in the smallest window that can hold it, ties
// going to the earliest window. The chosen window is removed on an exact fit
// and shrunk from the front otherwise. This is a greedy heuristic and may
// leave tasks unplaced even when a full packing exists.
//
// Completed tasks, project placeholders and tasks that already have a time are
// ignored. Placements are returned in start order.
func (p *Planner) PackTasks(date time.Time, windows []domain.TimeWindow, tasks []domain.Task) (PackResult, error) {
	if date.IsZero() {
		return PackResult{}, domain.ErrMissingDate
	}

	var pending []domain.Task
	for _, t := range tasks {
		if t.IsCompleted || t.IsProject || t.DueTime != nil {
			continue
		}
		if t.EstimatedMinutes <= 0 {
			return PackResult{}, fmt.Errorf("task %s: %w", t.ID, domain.ErrInvalidDuration)
		}
		pending = append(pending, t)
	}
	slices.SortStableFunc(pending, func(a, b domain.Task) int {
		return a.EstimatedMinutes - b.EstimatedMinutes
	})

	free := make([]domain.TimeWindow, 0, len(windows))
	for _, w := range windows {
		if w.Duration() > 0 {
			free = append(free, w)
		}
	}

	day := domain.DateOf(date)
	var result PackResult
	for _, t := range pending {
		need := domain.RoundUp(t.EstimatedMinutes, p.config.SlotGranularityMinutes)
		best := bestFit(free, need)
		if best < 0 {
			result.Unplaced = append(result.Unplaced, t)
			continue
		}

		start := free[best].Start
		result.Placements = append(result.Placements, Placement{
			Task:            t,
			Date:            day,
			Start:           start,
			ReservedMinutes: need,
		})

		if free[best].Duration() == need {
			free = slices.Delete(free, best, best+1)
		} else {
			free[best].Start = start.Add(need)
		}
	}

	slices.SortStableFunc(result.Placements, func(a, b Placement) int {
		return int(a.Start - b.Start)
	})
	return result, nil
}

// bestFit returns the index of the smallest window holding need minutes,
// preferring the earliest start on ties, or -1.
func bestFit(windows []domain.TimeWindow, need int) int {
	best := -1
	for i, w := range windows {
		if w.Duration() < need {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		bw := windows[best]
		if w.Duration() < bw.Duration() || (w.Duration() == bw.Duration() && w.Start < bw.Start) {
			best = i
		}
	}
	return best
}
