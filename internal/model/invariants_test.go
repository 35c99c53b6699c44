package model

import (
	"testing"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/events"
)

func TestCheckInvariants_CleanStateHasNoViolations(t *testing.T) {
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60}}}
	prefs := domain.PreferenceSet{"A": {1: true}}
	idx := events.Build(days, nil)
	m := Build(&config.Config{MinSlots: 3}, days, []domain.Team{"A"}, prefs, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: 9 * 60, End: 10*60 + 30})

	if v := CheckInvariants(s); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestCheckInvariants_PreferenceGateViolation(t *testing.T) {
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60}}}
	idx := events.Build(days, nil)
	m := Build(&config.Config{MinSlots: 3}, days, []domain.Team{"A"}, domain.PreferenceSet{}, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: 9 * 60, End: 10*60 + 30})

	v := CheckInvariants(s)
	found := false
	for _, violation := range v {
		if violation.Constraint == "preference-gate" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a preference-gate violation, got %v", v)
	}
}

func TestCheckInvariants_MinimumSessionViolation(t *testing.T) {
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60}}}
	prefs := domain.PreferenceSet{"A": {1: true}}
	idx := events.Build(days, nil)
	m := Build(&config.Config{MinSlots: 3}, days, []domain.Team{"A"}, prefs, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: 9 * 60, End: 9*60 + 30})

	v := CheckInvariants(s)
	found := false
	for _, violation := range v {
		if violation.Constraint == "minimum-session" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a minimum-session violation, got %v", v)
	}
}

func TestCheckInvariants_DailyEquitySpreadViolation(t *testing.T) {
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60, 10*60 + 30, 11 * 60}}}
	prefs := domain.PreferenceSet{"A": {1: true}, "B": {1: true}}
	idx := events.Build(days, nil)
	m := Build(&config.Config{MinSlots: 1}, days, []domain.Team{"A", "B"}, prefs, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: 9 * 60, End: 9*60 + 30})
	s.AddBlock(Block{Team: "B", DayOfMonth: 1, Start: 9*60 + 30, End: 11 * 60})

	v := CheckInvariants(s)
	found := false
	for _, violation := range v {
		if violation.Constraint == "daily-equity" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a daily-equity violation, got %v", v)
	}
}
