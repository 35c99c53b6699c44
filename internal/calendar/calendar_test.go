package calendar

import (
	"testing"

	"github.com/kasugagym/allocator/internal/config"
)

func baseConfig() *config.Config {
	avail := map[int]config.AvailabilityEntry{}
	for d := 1; d <= 31; d++ {
		avail[d] = config.AvailabilityEntry{}
	}
	return &config.Config{
		Year:            2026,
		Month:           1,
		MinSlots:        3,
		MaxSolveSeconds: 30,
		Availability:    avail,
	}
}

func withWindow(cfg *config.Config, day int, s1, e1 int) *config.Config {
	cfg.Availability[day] = config.AvailabilityEntry{
		Start1: config.ClockMinutes{Minutes: s1, Valid: true},
		End1:   config.ClockMinutes{Minutes: e1, Valid: true},
	}
	return cfg
}

func TestBuild_UsableDay(t *testing.T) {
	cfg := withWindow(baseConfig(), 10, 18*60, 22*60)
	days := Build(cfg)
	d := days[9] // day 10
	if d.Unusable {
		t.Fatalf("day 10 should be usable")
	}
	if len(d.Slots) != 8 {
		t.Fatalf("expected 8 slots (18:00-22:00), got %d", len(d.Slots))
	}
	if d.Slots[0] != 18*60 {
		t.Fatalf("first slot = %d, want %d", d.Slots[0], 18*60)
	}
}

func TestBuild_TooShortForMinBlock(t *testing.T) {
	cfg := withWindow(baseConfig(), 5, 9*60, 9*60+30) // only 1 slot, min_slots=3
	days := Build(cfg)
	if !days[4].Unusable {
		t.Fatalf("expected day 5 unusable")
	}
	if len(days[4].Slots) != 0 {
		t.Fatalf("expected no slots for unusable day")
	}
}

func TestBuild_NoAvailability(t *testing.T) {
	cfg := baseConfig()
	days := Build(cfg)
	if !days[0].Unusable {
		t.Fatalf("day with no windows should be unusable")
	}
}

func TestBuild_TwoWindowsConcatenated(t *testing.T) {
	cfg := baseConfig()
	cfg.Availability[12] = config.AvailabilityEntry{
		Start1: config.ClockMinutes{Minutes: 9 * 60, Valid: true},
		End1:   config.ClockMinutes{Minutes: 9*60 + 90, Valid: true}, // 3 slots
		Start2: config.ClockMinutes{Minutes: 18 * 60, Valid: true},
		End2:   config.ClockMinutes{Minutes: 18*60 + 90, Valid: true}, // 3 slots
	}
	days := Build(cfg)
	d := days[11]
	if d.Unusable {
		t.Fatalf("day 12 should be usable (each window alone satisfies min_slots)")
	}
	if len(d.Slots) != 6 {
		t.Fatalf("expected 6 slots total, got %d", len(d.Slots))
	}
}
