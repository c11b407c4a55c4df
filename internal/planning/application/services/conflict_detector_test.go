package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOverlaps(t *testing.T) {
	candidate := timed("candidate", monday, "10:00", 60)

	t.Run("reports intersecting tasks in start order", func(t *testing.T) {
		late := timed("late", monday, "10:45", 30)
		early := timed("early", monday, "09:30", 45)
		adjacentBefore := timed("before", monday, "09:00", 60)
		adjacentAfter := timed("after", monday, "11:00", 30)

		overlaps, err := FindOverlaps(candidate, []domain.Task{late, adjacentAfter, early, adjacentBefore})

		require.NoError(t, err)
		require.Len(t, overlaps, 2)
		assert.Equal(t, early.ID, overlaps[0].ID)
		assert.Equal(t, late.ID, overlaps[1].ID)
	})

	t.Run("excludes tasks that do not compete for time", func(t *testing.T) {
		self := candidate
		done := timed("done", monday, "10:00", 60)
		done.IsCompleted = true
		project := timed("project", monday, "10:00", 60)
		project.IsProject = true
		otherDay := timed("tomorrow", monday.AddDate(0, 0, 1), "10:00", 60)
		cid := candidate.ID
		ownChild := timed("own interval", monday, "10:15", 30)
		ownChild.ParentTaskID = &cid
		loose := untimed("untimed", 60)

		overlaps, err := FindOverlaps(candidate, []domain.Task{self, done, project, otherDay, ownChild, loose})

		require.NoError(t, err)
		assert.Empty(t, overlaps)
	})

	t.Run("siblings are still checked", func(t *testing.T) {
		parentID := uuid.New()
		child := timed("interval 2", monday, "10:00", 45)
		child.ParentTaskID = &parentID
		sibling := timed("interval 1", monday, "09:30", 45)
		sibling.ParentTaskID = &parentID

		overlaps, err := FindOverlaps(child, []domain.Task{sibling})

		require.NoError(t, err)
		assert.Len(t, overlaps, 1)
	})

	t.Run("validates the candidate", func(t *testing.T) {
		noTime := candidate
		noTime.DueTime = nil
		_, err := FindOverlaps(noTime, nil)
		assert.ErrorIs(t, err, domain.ErrMissingTime)

		noDate := candidate
		noDate.DueDate = nil
		_, err = FindOverlaps(noDate, nil)
		assert.ErrorIs(t, err, domain.ErrMissingDate)

		zero := candidate
		zero.EstimatedMinutes = 0
		_, err = FindOverlaps(zero, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		project := candidate
		project.IsProject = true
		_, err = FindOverlaps(project, nil)
		assert.ErrorIs(t, err, domain.ErrProjectNotPlaceable)
	})
}

func TestComputeOverload(t *testing.T) {
	p := newTestPlanner(t, at(monday, "08:00"))

	t.Run("reports the deficit", func(t *testing.T) {
		existing := []domain.Task{
			timed("a", monday, "09:00", 200),
			timed("b", monday, "12:20", 250),
		}

		report, err := p.ComputeOverload(monday, 60, existing)

		require.NoError(t, err)
		assert.Equal(t, 480, report.TotalMinutes)
		assert.Equal(t, 450, report.CommittedMinutes)
		assert.Equal(t, 30, report.AvailableMinutes)
		assert.Equal(t, 30, report.Deficit)
		assert.True(t, report.Overloaded())
	})

	t.Run("no deficit when the task fits", func(t *testing.T) {
		report, err := p.ComputeOverload(monday, 60, []domain.Task{timed("a", monday, "09:00", 120)})

		require.NoError(t, err)
		assert.Equal(t, 360, report.AvailableMinutes)
		assert.Zero(t, report.Deficit)
		assert.False(t, report.Overloaded())
	})

	t.Run("counts untimed tasks but not completed tasks or projects", func(t *testing.T) {
		d := monday
		dated := untimed("dated", 100)
		dated.DueDate = &d
		done := timed("done", monday, "09:00", 100)
		done.IsCompleted = true
		project := timed("project", monday, "09:00", 100)
		project.IsProject = true
		otherDay := timed("other", monday.AddDate(0, 0, 2), "09:00", 100)

		report, err := p.ComputeOverload(monday, 30, []domain.Task{dated, done, project, otherDay})

		require.NoError(t, err)
		assert.Equal(t, 100, report.CommittedMinutes)
	})

	t.Run("non-work days have no capacity", func(t *testing.T) {
		weekdays := newTestPlanner(t, at(monday, "08:00"), func(c *domain.WorkDayConfig) {
			c.Workdays = []time.Weekday{time.Monday}
		})

		report, err := weekdays.ComputeOverload(monday.AddDate(0, 0, 5), 15, nil)

		require.NoError(t, err)
		assert.Zero(t, report.TotalMinutes)
		assert.Equal(t, 15, report.Deficit)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := p.ComputeOverload(monday, 0, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = p.ComputeOverload(time.Time{}, 30, nil)
		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})
}
