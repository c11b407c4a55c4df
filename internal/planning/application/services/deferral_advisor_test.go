package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categorized(title, category string, minutes int, priority domain.Priority, quadrant int) domain.Task {
	t := timed(title, monday, "09:00", minutes)
	t.Category = category
	t.Priority = priority
	t.Quadrant = quadrant
	return t
}

func TestSuggestDeferrals(t *testing.T) {
	p := newTestPlanner(t, at(monday, "08:00"))

	t.Run("ranks by category, priority, quadrant then duration", func(t *testing.T) {
		admin := categorized("expenses", "admin", 30, domain.PriorityNormal, 2)
		errand := categorized("post office", "errand", 20, domain.PriorityNormal, 2)
		highWork := categorized("review", "work", 60, domain.PriorityHigh, 2)
		normalQ4 := categorized("tidy", "work", 15, domain.PriorityNormal, 4)
		normalQ2Long := categorized("draft", "work", 90, domain.PriorityNormal, 2)
		normalQ2Short := categorized("notes", "work", 25, domain.PriorityNormal, 2)
		existing := []domain.Task{highWork, normalQ2Short, normalQ4, admin, normalQ2Long, errand}

		plan, err := p.SuggestDeferrals(existing, monday, 1000)

		require.NoError(t, err)
		var got []uuid.UUID
		for _, task := range plan.Tasks {
			got = append(got, task.ID)
		}
		assert.Equal(t, []uuid.UUID{admin.ID, errand.ID, normalQ4.ID, normalQ2Long.ID, normalQ2Short.ID, highWork.ID}, got)
	})

	t.Run("stops once enough time is freed", func(t *testing.T) {
		existing := []domain.Task{
			categorized("a", "admin", 30, domain.PriorityNormal, 2),
			categorized("b", "errand", 30, domain.PriorityNormal, 2),
			categorized("c", "work", 60, domain.PriorityNormal, 2),
		}

		plan, err := p.SuggestDeferrals(existing, monday, 45)

		require.NoError(t, err)
		assert.True(t, plan.Sufficient())
		assert.Len(t, plan.Tasks, 2)
		assert.Equal(t, 60, plan.FreedMinutes)
		assert.GreaterOrEqual(t, plan.FreedMinutes, plan.RequiredMinutes)
		assert.Equal(t, monday.AddDate(0, 0, 1), plan.TargetDate)
	})

	t.Run("reports a shortfall after exhausting candidates", func(t *testing.T) {
		meeting := categorized("1:1", "meeting", 60, domain.PriorityNormal, 2)
		urgent := categorized("incident", "work", 60, domain.PriorityUrgent, 1)
		done := categorized("done", "admin", 60, domain.PriorityNormal, 2)
		done.IsCompleted = true
		parentID := uuid.New()
		interval := categorized("interval", "admin", 60, domain.PriorityNormal, 2)
		interval.ParentTaskID = &parentID
		deferrable := categorized("inbox", "admin", 20, domain.PriorityNormal, 3)

		plan, err := p.SuggestDeferrals([]domain.Task{meeting, urgent, done, interval, deferrable}, monday, 100)

		require.NoError(t, err)
		assert.False(t, plan.Sufficient())
		require.Len(t, plan.Tasks, 1)
		assert.Equal(t, deferrable.ID, plan.Tasks[0].ID)
		assert.Equal(t, 20, plan.FreedMinutes)
		assert.Equal(t, 80, plan.Shortfall)
	})

	t.Run("only considers tasks on the date", func(t *testing.T) {
		other := categorized("other", "admin", 60, domain.PriorityNormal, 2)
		next := monday.AddDate(0, 0, 1)
		other.DueDate = &next

		plan, err := p.SuggestDeferrals([]domain.Task{other}, monday, 30)

		require.NoError(t, err)
		assert.Empty(t, plan.Tasks)
		assert.Equal(t, 30, plan.Shortfall)
	})

	t.Run("nothing to free", func(t *testing.T) {
		plan, err := p.SuggestDeferrals([]domain.Task{categorized("a", "admin", 30, domain.PriorityNormal, 2)}, monday, 0)

		require.NoError(t, err)
		assert.True(t, plan.Sufficient())
		assert.Empty(t, plan.Tasks)
	})

	t.Run("target skips non-work days", func(t *testing.T) {
		weekdays := newTestPlanner(t, at(monday, "08:00"), func(c *domain.WorkDayConfig) {
			c.Workdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
		})
		friday := monday.AddDate(0, 0, 4)

		plan, err := weekdays.SuggestDeferrals(nil, friday, 30)

		require.NoError(t, err)
		assert.Equal(t, monday.AddDate(0, 0, 7), plan.TargetDate)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := p.SuggestDeferrals(nil, monday, -1)
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)

		_, err = p.SuggestDeferrals(nil, time.Time{}, 10)
		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})
}
