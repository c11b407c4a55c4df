package app

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/application/services"
	"github.com/felixgeelhaar/tempo/internal/planning/domain"
	"github.com/felixgeelhaar/tempo/pkg/config"
)

// WorkDayFromConfig converts the planner file settings into the engine's
// work day configuration.
func WorkDayFromConfig(pc config.PlannerConfig) (domain.WorkDayConfig, error) {
	start, err := config.ParseClock(pc.WorkDay.DayStart)
	if err != nil {
		return domain.WorkDayConfig{}, fmt.Errorf("day_start: %w", err)
	}
	end, err := config.ParseClock(pc.WorkDay.DayEnd)
	if err != nil {
		return domain.WorkDayConfig{}, fmt.Errorf("day_end: %w", err)
	}
	weekdays, err := pc.WorkDay.Weekdays()
	if err != nil {
		return domain.WorkDayConfig{}, err
	}
	loc, err := pc.WorkDay.Location()
	if err != nil {
		return domain.WorkDayConfig{}, err
	}

	wd := domain.WorkDayConfig{
		StartMinute:            domain.TimeOfDay(start),
		EndMinute:              domain.TimeOfDay(end),
		ChunkDurationMinutes:   pc.WorkDay.ChunkMinutes,
		SlotGranularityMinutes: pc.WorkDay.GranularityMinutes,
		IntervalGapMinutes:     pc.WorkDay.IntervalGapMinutes,
		BufferMinutes:          pc.WorkDay.BufferMinutes,
		Workdays:               weekdays,
		Location:               loc,
	}
	if err := wd.Validate(); err != nil {
		return domain.WorkDayConfig{}, err
	}
	return wd, nil
}

// DeferralPolicyFromConfig converts the [deferral] table.
func DeferralPolicyFromConfig(pc config.PlannerConfig) domain.DeferralPolicy {
	return domain.DeferralPolicy{
		CategoryRank:  pc.Deferral.CategoryRank,
		NonDeferrable: pc.Deferral.NonDeferrable,
		ExcludeUrgent: pc.Deferral.ExcludeUrgent,
	}.Normalize()
}

// NewPlanner builds the planning engine from configuration. now may be nil.
func NewPlanner(pc config.PlannerConfig, now func() time.Time) (*services.Planner, error) {
	wd, err := WorkDayFromConfig(pc)
	if err != nil {
		return nil, err
	}
	return services.NewPlanner(wd,
		services.WithDeferralPolicy(DeferralPolicyFromConfig(pc)),
		services.WithClock(now),
	)
}
