package app

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkDayFromConfig(t *testing.T) {
	pc := *config.DefaultPlanner()
	pc.WorkDay.DayStart = "08:30"
	pc.WorkDay.DayEnd = "16:00"
	pc.WorkDay.Workdays = []string{"mon", "tue", "wed", "thu", "fri"}
	pc.WorkDay.Timezone = "UTC"

	wd, err := WorkDayFromConfig(pc)
	require.NoError(t, err)
	assert.Equal(t, domain.TimeOfDay(8*60+30), wd.StartMinute)
	assert.Equal(t, domain.TimeOfDay(16*60), wd.EndMinute)
	assert.Equal(t, 45, wd.ChunkDurationMinutes)
	assert.Equal(t, 15, wd.SlotGranularityMinutes)
	assert.Equal(t, 5, wd.BufferMinutes)
	assert.Equal(t, time.UTC, wd.Location)
	assert.Len(t, wd.Workdays, 5)
	assert.NotContains(t, wd.Workdays, time.Sunday)
}

func TestWorkDayFromConfig_Location(t *testing.T) {
	t.Run("unconfigured file plans in local time", func(t *testing.T) {
		pc := *config.DefaultPlanner()
		require.Equal(t, "Local", pc.WorkDay.Timezone)

		wd, err := WorkDayFromConfig(pc)
		require.NoError(t, err)
		assert.Equal(t, time.Local, wd.Loc())
	})

	t.Run("zero-value work day plans in UTC", func(t *testing.T) {
		assert.Equal(t, time.UTC, domain.WorkDayConfig{}.Loc())
	})
}

func TestWorkDayFromConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.PlannerConfig)
	}{
		{"bad start", func(pc *config.PlannerConfig) { pc.WorkDay.DayStart = "9am" }},
		{"bad end", func(pc *config.PlannerConfig) { pc.WorkDay.DayEnd = "25:00" }},
		{"end before start", func(pc *config.PlannerConfig) { pc.WorkDay.DayEnd = "08:00" }},
		{"zero chunk", func(pc *config.PlannerConfig) { pc.WorkDay.ChunkMinutes = 0 }},
		{"unknown weekday", func(pc *config.PlannerConfig) { pc.WorkDay.Workdays = []string{"funday"} }},
		{"unknown zone", func(pc *config.PlannerConfig) { pc.WorkDay.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pc := *config.DefaultPlanner()
			tt.mutate(&pc)
			_, err := WorkDayFromConfig(pc)
			assert.Error(t, err)
		})
	}
}

func TestDeferralPolicyFromConfig(t *testing.T) {
	pc := *config.DefaultPlanner()
	pc.Deferral.CategoryRank = []string{" Admin ", "Errand"}
	pc.Deferral.ExcludeUrgent = false

	policy := DeferralPolicyFromConfig(pc)
	assert.Equal(t, []string{"admin", "errand"}, policy.CategoryRank)
	assert.Equal(t, []string{"meeting", "appointment"}, policy.NonDeferrable)
	assert.False(t, policy.ExcludeUrgent)
}

func TestNewPlanner_UsesClock(t *testing.T) {
	pc := *config.DefaultPlanner()
	pc.WorkDay.Timezone = "UTC"
	fixed := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	planner, err := NewPlanner(pc, func() time.Time { return fixed })
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), planner.Today())
	assert.Equal(t, []string{"admin", "errand", "personal"}, planner.Policy().CategoryRank)
}
