package services

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNextFreeSlot(t *testing.T) {
	tests := []struct {
		name       string
		now        string
		date       time.Time
		existing   []domain.Task
		wantFound  bool
		wantStart  string
		wantBuffer int
	}{
		{
			name:      "empty today starts at the rounded current time",
			now:       "10:07",
			date:      monday,
			wantFound: true,
			wantStart: "10:15",
		},
		{
			name:      "before opening starts at opening",
			now:       "07:40",
			date:      monday,
			wantFound: true,
			wantStart: "09:00",
		},
		{
			name:       "after the latest committed task plus buffer",
			now:        "10:07",
			date:       monday,
			existing:   []domain.Task{timed("a", monday, "09:00", 60), timed("b", monday, "11:00", 30)},
			wantFound:  true,
			wantStart:  "11:45",
			wantBuffer: 5,
		},
		{
			name:       "buffer follows now when earlier tasks have ended",
			now:        "11:00",
			date:       monday,
			existing:   []domain.Task{timed("a", monday, "10:00", 30)},
			wantFound:  true,
			wantStart:  "11:15",
			wantBuffer: 5,
		},
		{
			name:       "start stays on the slot grid",
			now:        "11:00",
			date:       monday,
			existing:   []domain.Task{timed("a", monday, "11:00", 20)},
			wantFound:  true,
			wantStart:  "11:30",
			wantBuffer: 5,
		},
		{
			name:     "buffer pushes past closing",
			now:      "10:00",
			date:     monday,
			existing: []domain.Task{timed("a", monday, "16:00", 58)},
		},
		{
			name: "after closing time",
			now:  "17:10",
			date: monday,
		},
		{
			name:      "future day starts at opening",
			now:       "16:00",
			date:      monday.AddDate(0, 0, 1),
			wantFound: true,
			wantStart: "09:00",
		},
		{
			name:       "future day after committed tasks",
			now:        "16:00",
			date:       monday.AddDate(0, 0, 1),
			existing:   []domain.Task{timed("a", monday.AddDate(0, 0, 1), "09:00", 180)},
			wantFound:  true,
			wantStart:  "12:15",
			wantBuffer: 5,
		},
		{
			name: "past day",
			now:  "10:00",
			date: monday.AddDate(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t, at(monday, tt.now))

			result, err := p.FindNextFreeSlot(tt.date, 30, tt.existing)

			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, result.Found)
			if tt.wantFound {
				assert.Equal(t, tt.wantStart, result.Start.String())
				assert.Equal(t, tt.wantBuffer, result.BufferMinutes)
			}
		})
	}
}

func TestFindNextFreeSlot_Validation(t *testing.T) {
	p := newTestPlanner(t, at(monday, "08:00"))

	_, err := p.FindNextFreeSlot(monday, 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, err = p.FindNextFreeSlot(time.Time{}, 30, nil)
	assert.ErrorIs(t, err, domain.ErrMissingDate)
}

func TestFindNextFreeSlot_NonWorkday(t *testing.T) {
	p := newTestPlanner(t, at(monday, "08:00"), func(c *domain.WorkDayConfig) {
		c.Workdays = []time.Weekday{time.Monday}
	})

	result, err := p.FindNextFreeSlot(monday.AddDate(0, 0, 1), 30, nil)

	require.NoError(t, err)
	assert.False(t, result.Found)
}
