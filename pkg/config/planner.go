package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// PlannerConfig is the planner.toml document.
type PlannerConfig struct {
	WorkDay  WorkDayConfig  `toml:"workday"`
	Deferral DeferralConfig `toml:"deferral"`
}

// WorkDayConfig holds the daily window and slot arithmetic settings.
type WorkDayConfig struct {
	DayStart           string   `toml:"day_start"` // "09:00"
	DayEnd             string   `toml:"day_end"`   // "17:00"
	ChunkMinutes       int      `toml:"chunk_minutes"`
	GranularityMinutes int      `toml:"granularity_minutes"`
	IntervalGapMinutes int      `toml:"interval_gap_minutes"`
	BufferMinutes      int      `toml:"buffer_minutes"`
	Workdays           []string `toml:"workdays"` // empty means every day
	Timezone           string   `toml:"timezone"`
}

// DeferralConfig orders and filters deferral candidates.
type DeferralConfig struct {
	CategoryRank  []string `toml:"category_rank"`
	NonDeferrable []string `toml:"non_deferrable"`
	ExcludeUrgent bool     `toml:"exclude_urgent"`
}

// DefaultPlanner returns the built-in planner settings.
func DefaultPlanner() *PlannerConfig {
	return &PlannerConfig{
		WorkDay: WorkDayConfig{
			DayStart:           "09:00",
			DayEnd:             "17:00",
			ChunkMinutes:       45,
			GranularityMinutes: 15,
			IntervalGapMinutes: 0,
			BufferMinutes:      5,
			Timezone:           "Local",
		},
		Deferral: DeferralConfig{
			CategoryRank:  []string{"admin", "errand", "personal"},
			NonDeferrable: []string{"meeting", "appointment"},
			ExcludeUrgent: true,
		},
	}
}

// LoadPlanner starts from defaults, overlays the file at path when it exists
// and applies TEMPO_* environment overrides.
func LoadPlanner(path string) (*PlannerConfig, error) {
	cfg := DefaultPlanner()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse planner file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read planner file: %w", err)
		}
	}

	applyPlannerEnv(cfg)
	return cfg, nil
}

func applyPlannerEnv(cfg *PlannerConfig) {
	w := &cfg.WorkDay
	if v := os.Getenv("TEMPO_DAY_START"); v != "" {
		w.DayStart = v
	}
	if v := os.Getenv("TEMPO_DAY_END"); v != "" {
		w.DayEnd = v
	}
	w.ChunkMinutes = getIntEnv("TEMPO_CHUNK_MINUTES", w.ChunkMinutes)
	w.GranularityMinutes = getIntEnv("TEMPO_GRANULARITY_MINUTES", w.GranularityMinutes)
	w.IntervalGapMinutes = getIntEnv("TEMPO_INTERVAL_GAP_MINUTES", w.IntervalGapMinutes)
	w.BufferMinutes = getIntEnv("TEMPO_BUFFER_MINUTES", w.BufferMinutes)
	if v := os.Getenv("TEMPO_WORKDAYS"); v != "" {
		w.Workdays = splitList(v)
	}
	if v := os.Getenv("TEMPO_TIMEZONE"); v != "" {
		w.Timezone = v
	}
	if v := os.Getenv("TEMPO_DEFER_ORDER"); v != "" {
		cfg.Deferral.CategoryRank = splitList(v)
	}
}

// Save writes the document to path, creating parent directories.
func (p *PlannerConfig) Save(path string) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks field syntax. Range checks that depend on the planning
// model happen when the work day is built.
func (p *PlannerConfig) Validate() error {
	var errs []error
	if _, err := ParseClock(p.WorkDay.DayStart); err != nil {
		errs = append(errs, fmt.Errorf("workday.day_start: %w", err))
	}
	if _, err := ParseClock(p.WorkDay.DayEnd); err != nil {
		errs = append(errs, fmt.Errorf("workday.day_end: %w", err))
	}
	if _, err := p.WorkDay.Weekdays(); err != nil {
		errs = append(errs, fmt.Errorf("workday.workdays: %w", err))
	}
	if _, err := p.WorkDay.Location(); err != nil {
		errs = append(errs, fmt.Errorf("workday.timezone: %w", err))
	}
	return errors.Join(errs...)
}

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// Weekdays parses the workday names.
func (w WorkDayConfig) Weekdays() ([]time.Weekday, error) {
	out := make([]time.Weekday, 0, len(w.Workdays))
	for _, name := range w.Workdays {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		out = append(out, d)
	}
	return out, nil
}

// Location resolves the timezone name.
func (w WorkDayConfig) Location() (*time.Location, error) {
	switch w.Timezone {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	return time.LoadLocation(w.Timezone)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
