package services

import (
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// ToggleCompletion flips task's completion state and derives the parent's.
//
// A parent is complete exactly when every one of its intervals is complete,
// so completing the last open interval completes the parent and reopening
// any interval reopens it. The parent's new state is returned as a value;
// nothing is written. Toggling a project placeholder directly is rejected.
func ToggleCompletion(task domain.Task, snapshot []domain.Task, now time.Time) (CompletionResult, error) {
	if task.IsProject {
		return CompletionResult{}, domain.ErrProjectCompletionDerived
	}

	updated := domain.CompletionPatch(!task.IsCompleted, now).Apply(task, now)
	result := CompletionResult{Updated: updated}
	if !task.IsChild() {
		return result, nil
	}

	parent, ok := domain.FindTask(snapshot, *task.ParentTaskID)
	if !ok {
		return result, nil
	}

	children := replaceTask(domain.ChildrenOf(snapshot, parent.ID), updated)
	if next, changed := aggregateCompletion(parent, children, now); changed {
		result.ParentUpdate = &next
	}
	return result, nil
}

// ReaggregateParent recomputes a parent's duration and completion from its
// remaining intervals. The bool reports whether anything changed.
func ReaggregateParent(parent domain.Task, children []domain.Task, now time.Time) (domain.Task, bool) {
	total := 0
	for _, c := range children {
		total += c.EstimatedMinutes
	}

	next, changed := aggregateCompletion(parent, children, now)
	if total > 0 && next.EstimatedMinutes != total {
		minutes := total
		next = domain.TaskPatch{EstimatedMinutes: &minutes}.Apply(next, now)
		changed = true
	}
	return next, changed
}

func aggregateCompletion(parent domain.Task, children []domain.Task, now time.Time) (domain.Task, bool) {
	allDone := len(children) > 0
	for _, c := range children {
		if !c.IsCompleted {
			allDone = false
			break
		}
	}
	if parent.IsCompleted == allDone {
		return parent, false
	}
	return domain.CompletionPatch(allDone, now).Apply(parent, now), true
}

// replaceTask swaps the entry with t's ID for t, appending when absent.
func replaceTask(tasks []domain.Task, t domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks)+1)
	found := false
	for _, existing := range tasks {
		if existing.ID == t.ID {
			out = append(out, t)
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, t)
	}
	return out
}
