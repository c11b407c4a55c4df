package services

import (
	"slices"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// FindOverlaps returns the existing tasks whose windows intersect candidate's
// window on the same date, ordered by start time.
//
// The candidate itself, its own intervals, completed tasks and project
// placeholders are never reported. Sibling intervals are.
func FindOverlaps(candidate domain.Task, existing []domain.Task) ([]domain.Task, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	want, _ := candidate.Window()
	var overlaps []domain.Task
	for _, t := range existing {
		if t.ID == candidate.ID || t.IsChildOf(candidate.ID) {
			continue
		}
		if !t.OnDate(*candidate.DueDate) || !t.OccupiesTime() {
			continue
		}
		if w, _ := t.Window(); w.Overlaps(want) {
			overlaps = append(overlaps, t)
		}
	}

	slices.SortStableFunc(overlaps, func(a, b domain.Task) int {
		return int(*a.DueTime - *b.DueTime)
	})
	return overlaps, nil
}

func validateCandidate(t domain.Task) error {
	if t.EstimatedMinutes <= 0 {
		return domain.ErrInvalidDuration
	}
	if t.DueDate == nil {
		return domain.ErrMissingDate
	}
	if t.DueTime == nil {
		return domain.ErrMissingTime
	}
	if t.IsProject {
		return domain.ErrProjectNotPlaceable
	}
	return nil
}

// ComputeOverload compares the minutes still available on date with the
// minutes a new task requires. Non-work days have no capacity. Completed
// tasks and project placeholders are not counted.
func (p *Planner) ComputeOverload(date time.Time, requiredMinutes int, existing []domain.Task) (OverloadReport, error) {
	if date.IsZero() {
		return OverloadReport{}, domain.ErrMissingDate
	}
	if requiredMinutes <= 0 {
		return OverloadReport{}, domain.ErrInvalidDuration
	}

	total := 0
	if p.config.IsWorkday(date) {
		total = p.config.TotalMinutes()
	}
	committed := CommittedMinutes(date, existing)
	available := total - committed

	return OverloadReport{
		Date:             domain.DateOf(date),
		TotalMinutes:     total,
		CommittedMinutes: committed,
		AvailableMinutes: available,
		RequiredMinutes:  requiredMinutes,
		Deficit:          max(0, requiredMinutes-available),
	}, nil
}

// CommittedMinutes sums the load of tasks due on date.
func CommittedMinutes(date time.Time, tasks []domain.Task) int {
	sum := 0
	for _, t := range tasks {
		if t.OnDate(date) && t.CountsTowardLoad() {
			sum += t.EstimatedMinutes
		}
	}
	return sum
}
