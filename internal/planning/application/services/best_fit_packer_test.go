package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackTasks(t *testing.T) {
	p := newTestPlanner(t, at(monday, "08:00"))

	t.Run("smallest fitting window wins", func(t *testing.T) {
		windows := []domain.TimeWindow{{Start: 0, End: 30}, {Start: 30, End: 90}, {Start: 200, End: 240}}
		short := untimed("short", 20)
		medium := untimed("medium", 45)
		long := untimed("long", 50)

		result, err := p.PackTasks(monday, windows, []domain.Task{long, medium, short})

		require.NoError(t, err)
		require.Len(t, result.Placements, 2)
		assert.Equal(t, short.ID, result.Placements[0].Task.ID)
		assert.Equal(t, domain.TimeOfDay(0), result.Placements[0].Start)
		assert.Equal(t, 30, result.Placements[0].ReservedMinutes)
		assert.Equal(t, medium.ID, result.Placements[1].Task.ID)
		assert.Equal(t, domain.TimeOfDay(30), result.Placements[1].Start)
		require.Len(t, result.Unplaced, 1)
		assert.Equal(t, long.ID, result.Unplaced[0].ID)
	})

	t.Run("leftover of a shrunk window stays available", func(t *testing.T) {
		windows := []domain.TimeWindow{{Start: 0, End: 30}, {Start: 30, End: 90}, {Start: 200, End: 260}}
		tasks := []domain.Task{untimed("a", 20), untimed("b", 45), untimed("c", 50)}

		result, err := p.PackTasks(monday, windows, tasks)

		require.NoError(t, err)
		require.Len(t, result.Placements, 3)
		assert.Empty(t, result.Unplaced)
		assert.Equal(t, domain.TimeOfDay(200), result.Placements[2].Start)
		assert.Equal(t, 60, result.Placements[2].ReservedMinutes)
	})

	t.Run("ties go to the earliest window", func(t *testing.T) {
		windows := []domain.TimeWindow{{Start: 300, End: 360}, {Start: 100, End: 160}}

		result, err := p.PackTasks(monday, windows, []domain.Task{untimed("a", 30)})

		require.NoError(t, err)
		require.Len(t, result.Placements, 1)
		assert.Equal(t, domain.TimeOfDay(100), result.Placements[0].Start)
	})

	t.Run("shorter tasks are packed first regardless of priority", func(t *testing.T) {
		windows := []domain.TimeWindow{{Start: 540, End: 600}}
		urgent := untimed("urgent", 60)
		urgent.Priority = domain.PriorityUrgent
		small := untimed("small", 15)

		result, err := p.PackTasks(monday, windows, []domain.Task{urgent, small})

		require.NoError(t, err)
		require.Len(t, result.Placements, 1)
		assert.Equal(t, small.ID, result.Placements[0].Task.ID)
		require.Len(t, result.Unplaced, 1)
		assert.Equal(t, urgent.ID, result.Unplaced[0].ID)
	})

	t.Run("placements are sound", func(t *testing.T) {
		windows := p.ComputeFreeWindows(monday, []domain.Task{
			timed("standup", monday, "10:00", 30),
			timed("lunch", monday, "12:00", 60),
		})
		var tasks []domain.Task
		for _, m := range []int{25, 40, 90, 10, 120, 55, 70, 35} {
			tasks = append(tasks, untimed("t", m))
		}

		result, err := p.PackTasks(monday, windows, tasks)

		require.NoError(t, err)
		assert.Equal(t, len(tasks), len(result.Placements)+len(result.Unplaced))
		for i, a := range result.Placements {
			assert.Equal(t, monday, a.Date)
			contained := false
			for _, w := range windows {
				if w.Contains(a.Window()) {
					contained = true
				}
			}
			assert.True(t, contained, "placement %s outside free windows", a.Window())
			for _, b := range result.Placements[i+1:] {
				assert.False(t, a.Window().Overlaps(b.Window()), "%s overlaps %s", a.Window(), b.Window())
			}
		}
	})

	t.Run("skips completed, project and timed tasks", func(t *testing.T) {
		done := untimed("done", 15)
		done.IsCompleted = true
		project := untimed("project", 15)
		project.IsProject = true
		fixed := timed("fixed", monday, "09:00", 15)

		result, err := p.PackTasks(monday, []domain.TimeWindow{{Start: 540, End: 1020}}, []domain.Task{done, project, fixed})

		require.NoError(t, err)
		assert.Empty(t, result.Placements)
		assert.Empty(t, result.Unplaced)
	})

	t.Run("rejects non-positive durations", func(t *testing.T) {
		_, err := p.PackTasks(monday, nil, []domain.Task{untimed("bad", 0)})
		assert.ErrorIs(t, err, domain.ErrInvalidDuration)
	})

	t.Run("requires a date", func(t *testing.T) {
		_, err := p.PackTasks(time.Time{}, nil, nil)
		assert.ErrorIs(t, err, domain.ErrMissingDate)
	})
}
