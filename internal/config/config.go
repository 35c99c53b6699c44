// Package config loads and validates the YAML configuration document
// described in spec.md §6: the target year/month, the minimum contiguous
// session length, the solver's wall-clock budget, and the per-day
// availability table.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockMinutes is a nullable "HH:MM" wall-clock value, parsed from either
// a YAML string or a null scalar (meaning "unavailable").
type ClockMinutes struct {
	Minutes int
	Valid   bool
}

func (c *ClockMinutes) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" || value.Value == "" {
		c.Valid = false
		c.Minutes = 0
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("invalid clock value: %w", err)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}
	c.Minutes = t.Hour()*60 + t.Minute()
	c.Valid = true
	return nil
}

// AvailabilityEntry is the 4-tuple [start1,end1,start2,end2] for one day
// of the month. Either window may be entirely absent (both ends null).
type AvailabilityEntry struct {
	Start1, End1, Start2, End2 ClockMinutes
}

func (a *AvailabilityEntry) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("availability entry must be a 4-element list")
	}
	var items []ClockMinutes
	if err := value.Decode(&items); err != nil {
		return fmt.Errorf("decoding availability entry: %w", err)
	}
	if len(items) != 4 {
		return fmt.Errorf("availability entry must have exactly 4 elements, got %d", len(items))
	}
	a.Start1, a.End1, a.Start2, a.End2 = items[0], items[1], items[2], items[3]
	return nil
}

// Window1 returns the first allowed window, or ok=false if absent.
func (a AvailabilityEntry) Window1() (start, end int, ok bool) {
	if !a.Start1.Valid || !a.End1.Valid {
		return 0, 0, false
	}
	return a.Start1.Minutes, a.End1.Minutes, true
}

// Window2 returns the second allowed window, or ok=false if absent.
func (a AvailabilityEntry) Window2() (start, end int, ok bool) {
	if !a.Start2.Valid || !a.End2.Valid {
		return 0, 0, false
	}
	return a.Start2.Minutes, a.End2.Minutes, true
}

// Config is the parsed, validated configuration document.
type Config struct {
	Year            int                       `yaml:"year"`
	Month           int                       `yaml:"month"`
	MinSlots        int                       `yaml:"min_slots"`
	MaxSolveSeconds int                       `yaml:"max_solve_seconds"`
	Availability    map[int]AvailabilityEntry `yaml:"availability"`
}

// LastDay returns the number of days in the target month.
func (c *Config) LastDay() int {
	return time.Date(c.Year, time.Month(c.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

func (c *Config) validate() error {
	if c.Year < 1 {
		return fmt.Errorf("year is required")
	}
	if c.Month < 1 || c.Month > 12 {
		return fmt.Errorf("month must be between 1 and 12, got %d", c.Month)
	}
	if c.MinSlots < 1 {
		return fmt.Errorf("min_slots must be at least 1")
	}
	if c.MaxSolveSeconds < 1 {
		return fmt.Errorf("max_solve_seconds must be at least 1")
	}

	last := c.LastDay()
	for day := 1; day <= last; day++ {
		entry, ok := c.Availability[day]
		if !ok {
			return fmt.Errorf("availability entry missing for day %d of %04d-%02d", day, c.Year, c.Month)
		}
		if s1, e1, ok1 := entry.Window1(); ok1 && e1 <= s1 {
			return fmt.Errorf("availability day %d: window1 end %d must be after start %d", day, e1, s1)
		}
		if s2, e2, ok2 := entry.Window2(); ok2 && e2 <= s2 {
			return fmt.Errorf("availability day %d: window2 end %d must be after start %d", day, e2, s2)
		}
	}

	return nil
}
