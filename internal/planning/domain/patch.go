package domain

import "time"

// TaskPatch is a partial update. Nil fields are left unchanged; the Clear
// flags reset nullable fields.
type TaskPatch struct {
	Title            *string
	EstimatedMinutes *int
	DueDate          *time.Time
	ClearDueDate     bool
	DueTime          *TimeOfDay
	ClearDueTime     bool
	Priority         *Priority
	IsCompleted      *bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.EstimatedMinutes == nil &&
		p.DueDate == nil && !p.ClearDueDate &&
		p.DueTime == nil && !p.ClearDueTime &&
		p.Priority == nil && p.IsCompleted == nil &&
		p.CompletedAt == nil && !p.ClearCompletedAt
}

// Apply returns a copy of t with the patch applied and UpdatedAt set to now.
func (p TaskPatch) Apply(t Task, now time.Time) Task {
	out := t.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.EstimatedMinutes != nil {
		out.EstimatedMinutes = *p.EstimatedMinutes
	}
	if p.ClearDueDate {
		out.DueDate = nil
	} else if p.DueDate != nil {
		out.DueDate = datePtr(*p.DueDate)
	}
	if p.ClearDueTime {
		out.DueTime = nil
	} else if p.DueTime != nil {
		tm := *p.DueTime
		out.DueTime = &tm
	}
	if p.Priority != nil {
		out.Priority = *p.Priority
	}
	if p.IsCompleted != nil {
		out.IsCompleted = *p.IsCompleted
	}
	if p.ClearCompletedAt {
		out.CompletedAt = nil
	} else if p.CompletedAt != nil {
		ca := p.CompletedAt.UTC()
		out.CompletedAt = &ca
	}
	out.UpdatedAt = now.UTC()
	return out
}

// CompletionPatch sets the completion state, keeping CompletedAt in step.
func CompletionPatch(completed bool, now time.Time) TaskPatch {
	p := TaskPatch{IsCompleted: &completed}
	if completed {
		at := now.UTC()
		p.CompletedAt = &at
	} else {
		p.ClearCompletedAt = true
	}
	return p
}

// ReschedulePatch moves a task to date, at tm when given or untimed otherwise.
func ReschedulePatch(date time.Time, tm *TimeOfDay) TaskPatch {
	d := DateOf(date)
	p := TaskPatch{DueDate: &d}
	if tm != nil {
		v := *tm
		p.DueTime = &v
	} else {
		p.ClearDueTime = true
	}
	return p
}

// DiffPatch builds the patch that turns from into to for the mutable fields.
func DiffPatch(from, to Task) TaskPatch {
	var p TaskPatch
	if from.Title != to.Title {
		p.Title = &to.Title
	}
	if from.EstimatedMinutes != to.EstimatedMinutes {
		m := to.EstimatedMinutes
		p.EstimatedMinutes = &m
	}
	if !equalDate(from.DueDate, to.DueDate) {
		if to.DueDate == nil {
			p.ClearDueDate = true
		} else {
			d := *to.DueDate
			p.DueDate = &d
		}
	}
	if !equalTime(from.DueTime, to.DueTime) {
		if to.DueTime == nil {
			p.ClearDueTime = true
		} else {
			tm := *to.DueTime
			p.DueTime = &tm
		}
	}
	if from.Priority != to.Priority {
		pr := to.Priority
		p.Priority = &pr
	}
	if from.IsCompleted != to.IsCompleted {
		c := to.IsCompleted
		p.IsCompleted = &c
		if to.CompletedAt == nil {
			p.ClearCompletedAt = true
		} else {
			at := *to.CompletedAt
			p.CompletedAt = &at
		}
	}
	return p
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return SameDate(*a, *b)
}

func equalTime(a, b *TimeOfDay) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
