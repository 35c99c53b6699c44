package intake

import (
	"io"
	"log/slog"
	"testing"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/runctx"
)

func testContext() *runctx.Context {
	return runctx.New(slog.New(slog.NewTextHandler(io.Discard, nil)), "")
}

func testDays() []domain.Day {
	days := make([]domain.Day, 0, 31)
	for d := 1; d <= 31; d++ {
		day := domain.Day{DayOfMonth: d}
		if d == 31 {
			day.Unusable = true
		} else {
			day.Slots = []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60}
		}
		days = append(days, day)
	}
	return days
}

func testConfig() *config.Config {
	return &config.Config{Year: 2026, Month: 1, MinSlots: 3}
}

func TestNormalizePreferences_DropsOutOfMonthAndUnusable(t *testing.T) {
	rc := testContext()
	raw := map[string][]string{
		"A": {"2026-01-10", "2026-02-01", "not-a-date", "2026-01-31"},
	}
	prefs := NormalizePreferences(rc, testConfig(), testDays(), raw)

	if !prefs.Wants("A", 10) {
		t.Fatal("expected day 10 retained")
	}
	if prefs.Wants("A", 1) {
		t.Fatal("february date should have been dropped") // day 1 of Feb parsed as month mismatch
	}
	if prefs.Count("A") != 1 {
		t.Fatalf("pref_count = %d, want 1", prefs.Count("A"))
	}
	if len(rc.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d: %v", len(rc.Warnings), rc.Warnings)
	}
}

func TestValidateEvents_ValidRecord(t *testing.T) {
	rc := testContext()
	raw := []RawEvent{
		{Team: "A", Date: "2026-01-15", Start: "09:00", DurationHours: 1.5},
	}
	events := ValidateEvents(rc, testConfig(), testDays(), raw)
	if len(events) != 1 {
		t.Fatalf("expected 1 valid event, got %d", len(events))
	}
	if events[0].Duration != 90 {
		t.Fatalf("duration = %d, want 90", events[0].Duration)
	}
	if len(rc.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", rc.Warnings)
	}
}

func TestValidateEvents_MisalignedStartDropped(t *testing.T) {
	rc := testContext()
	raw := []RawEvent{
		{Team: "A", Date: "2026-01-15", Start: "18:15", DurationHours: 4},
	}
	events := ValidateEvents(rc, testConfig(), testDays(), raw)
	if len(events) != 0 {
		t.Fatalf("expected 0 valid events, got %d", len(events))
	}
	if len(rc.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(rc.Warnings))
	}
}

func TestValidateEvents_ForbiddenWindowDropped(t *testing.T) {
	rc := testContext()
	raw := []RawEvent{
		// The day has 9:00, 9:30 and 10:00 only; an event at 10:00 for 60
		// minutes covers 10:00 and 10:30, the latter absent from the day's
		// slot list.
		{Team: "A", Date: "2026-01-15", Start: "10:00", DurationHours: 1},
	}
	events := ValidateEvents(rc, testConfig(), testDays(), raw)
	if len(events) != 0 {
		t.Fatalf("expected event rejected, got %d", len(events))
	}
}

func TestValidateEvents_UnusableDayDropped(t *testing.T) {
	rc := testContext()
	raw := []RawEvent{
		{Team: "A", Date: "2026-01-31", Start: "09:00", DurationHours: 1},
	}
	events := ValidateEvents(rc, testConfig(), testDays(), raw)
	if len(events) != 0 {
		t.Fatalf("expected event on unusable day rejected, got %d", len(events))
	}
}

func TestTeamUniverse(t *testing.T) {
	prefs := domain.PreferenceSet{"A": {1: true}, "B": {2: true}}
	events := []domain.EventRecord{{Team: "C", DayOfMonth: 3}}
	teams := TeamUniverse(prefs, events)
	if len(teams) != 3 {
		t.Fatalf("expected 3 teams, got %v", teams)
	}
}
