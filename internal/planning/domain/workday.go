package domain

import (
	"fmt"
	"slices"
	"time"
)

// Default work day settings.
const (
	DefaultChunkMinutes       = 45
	DefaultGranularityMinutes = 15
	DefaultBufferMinutes      = 5
)

// WorkDayConfig describes the daily window tasks may be placed in.
// It is read-only to the planning engine.
type WorkDayConfig struct {
	StartMinute            TimeOfDay
	EndMinute              TimeOfDay
	ChunkDurationMinutes   int
	SlotGranularityMinutes int
	// IntervalGapMinutes separates consecutive intervals of a split task.
	IntervalGapMinutes int
	// BufferMinutes is added after the latest committed task when finding
	// the next free slot.
	BufferMinutes int
	// Workdays lists the weekdays that have a work window. Empty means every day.
	Workdays []time.Weekday
	// Location is the zone "today" and "now" are evaluated in. Nil means UTC.
	Location *time.Location
}

// DefaultWorkDayConfig returns a 09:00-17:00 day with 45 minute chunks.
func DefaultWorkDayConfig() WorkDayConfig {
	return WorkDayConfig{
		StartMinute:            9 * 60,
		EndMinute:              17 * 60,
		ChunkDurationMinutes:   DefaultChunkMinutes,
		SlotGranularityMinutes: DefaultGranularityMinutes,
		IntervalGapMinutes:     0,
		BufferMinutes:          DefaultBufferMinutes,
	}
}

// Validate checks the configuration for internal consistency.
func (c WorkDayConfig) Validate() error {
	if !c.StartMinute.IsValid() || !c.EndMinute.IsValid() {
		return fmt.Errorf("%w: bounds must lie within a day", ErrInvalidWorkDay)
	}
	if c.EndMinute <= c.StartMinute {
		return fmt.Errorf("%w: end %s must be after start %s", ErrInvalidWorkDay, c.EndMinute, c.StartMinute)
	}
	if c.ChunkDurationMinutes <= 0 {
		return fmt.Errorf("%w: chunk duration must be positive", ErrInvalidWorkDay)
	}
	if c.ChunkDurationMinutes > c.TotalMinutes() {
		return fmt.Errorf("%w: chunk duration exceeds the work day", ErrInvalidWorkDay)
	}
	if c.SlotGranularityMinutes <= 0 {
		return fmt.Errorf("%w: slot granularity must be positive", ErrInvalidWorkDay)
	}
	if c.IntervalGapMinutes < 0 || c.BufferMinutes < 0 {
		return fmt.Errorf("%w: gaps cannot be negative", ErrInvalidWorkDay)
	}
	return nil
}

// TotalMinutes returns the length of the work window.
func (c WorkDayConfig) TotalMinutes() int {
	return int(c.EndMinute - c.StartMinute)
}

// Window returns the work window as a TimeWindow.
func (c WorkDayConfig) Window() TimeWindow {
	return TimeWindow{Start: c.StartMinute, End: c.EndMinute}
}

// IsWorkday reports whether the given date has a work window.
func (c WorkDayConfig) IsWorkday(date time.Time) bool {
	if len(c.Workdays) == 0 {
		return true
	}
	return slices.Contains(c.Workdays, date.Weekday())
}

// NextWorkday returns the first work day strictly after date.
func (c WorkDayConfig) NextWorkday(date time.Time) time.Time {
	d := DateOf(date).AddDate(0, 0, 1)
	for range 7 {
		if c.IsWorkday(d) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Loc returns the configured location, defaulting to UTC.
func (c WorkDayConfig) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}
