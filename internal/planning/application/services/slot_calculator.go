package services

import (
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// ComputeFreeWindows returns the ordered free windows of day's work window
// after removing every window occupied by committed tasks. Gaps shorter than
// one slot granularity are dropped. Non-work days have no free windows.
func (p *Planner) ComputeFreeWindows(day time.Time, committed []domain.Task) []domain.TimeWindow {
	if !p.config.IsWorkday(day) {
		return nil
	}

	work := p.config.Window()
	occupied := occupiedWindows(day, committed, work)

	var free []domain.TimeWindow
	gran := p.config.SlotGranularityMinutes
	cursor := work.Start
	for _, w := range occupied {
		if int(w.Start-cursor) >= gran {
			free = append(free, domain.TimeWindow{Start: cursor, End: w.Start})
		}
		if w.End > cursor {
			cursor = w.End
		}
	}
	if int(work.End-cursor) >= gran {
		free = append(free, domain.TimeWindow{Start: cursor, End: work.End})
	}
	return free
}

// occupiedWindows collects the windows of tasks on day, clipped to bounds
// and sorted by start.
func occupiedWindows(day time.Time, tasks []domain.Task, bounds domain.TimeWindow) []domain.TimeWindow {
	var out []domain.TimeWindow
	for _, t := range tasks {
		if !t.OnDate(day) || !t.OccupiesTime() {
			continue
		}
		w, _ := t.Window()
		if !w.Overlaps(bounds) {
			continue
		}
		w.Start = max(w.Start, bounds.Start)
		w.End = min(w.End, bounds.End)
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b domain.TimeWindow) int {
		if a.Start != b.Start {
			return int(a.Start - b.Start)
		}
		return int(a.End - b.End)
	})
	return out
}
