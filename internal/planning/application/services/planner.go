package services

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/tempo/internal/planning/domain"
)

// Planner runs the scheduling computations over in-memory task snapshots.
// It holds only read-only configuration and a clock, so every method is safe
// to re-run against a refreshed snapshot at any time.
type Planner struct {
	config domain.WorkDayConfig
	policy domain.DeferralPolicy
	now    func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithClock overrides the wall clock used to resolve "today" and "now".
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// WithDeferralPolicy overrides the default deferral policy.
func WithDeferralPolicy(policy domain.DeferralPolicy) Option {
	return func(p *Planner) {
		p.policy = policy.Normalize()
	}
}

// NewPlanner creates a planner for the given work day.
func NewPlanner(config domain.WorkDayConfig, opts ...Option) (*Planner, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}
	p := &Planner{
		config: config,
		policy: domain.DefaultDeferralPolicy(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the work day configuration.
func (p *Planner) Config() domain.WorkDayConfig { return p.config }

// Policy returns the deferral policy.
func (p *Planner) Policy() domain.DeferralPolicy { return p.policy }

// Now returns the current instant in the configured location.
func (p *Planner) Now() time.Time {
	return p.now().In(p.config.Loc())
}

// Today returns the current calendar date in the configured location.
func (p *Planner) Today() time.Time {
	return domain.DateOf(p.Now())
}

// IsToday reports whether date is the current calendar date.
func (p *Planner) IsToday(date time.Time) bool {
	return domain.SameDate(date, p.Today())
}

// currentSlot returns "now" rounded up to the slot granularity.
func (p *Planner) currentSlot() domain.TimeOfDay {
	now := p.Now()
	minute := domain.TimeOfDayOf(now)
	if now.Second() > 0 || now.Nanosecond() > 0 {
		minute++
	}
	return minute.RoundUp(p.config.SlotGranularityMinutes)
}

// clamp limits t to the work window.
func (p *Planner) clamp(t domain.TimeOfDay) domain.TimeOfDay {
	if t < p.config.StartMinute {
		return p.config.StartMinute
	}
	if t > p.config.EndMinute {
		return p.config.EndMinute
	}
	return t
}

// firstWorkday returns date if it is a work day, otherwise the next one.
func (p *Planner) firstWorkday(date time.Time) time.Time {
	d := domain.DateOf(date)
	if p.config.IsWorkday(d) {
		return d
	}
	return p.config.NextWorkday(d)
}
