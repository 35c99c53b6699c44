package model

import (
	"testing"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/events"
)

func testDays() []domain.Day {
	return []domain.Day{
		{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60, 10*60 + 30}},
		{DayOfMonth: 2, Unusable: true},
	}
}

func TestNewState_PinsEventBlocks(t *testing.T) {
	days := testDays()
	evs := []domain.EventRecord{
		{Team: "A", DayOfMonth: 1, Start: 9 * 60, Duration: 60},
	}
	idx := events.Build(days, evs)
	m := Build(&config.Config{}, days, []domain.Team{"A", "B"}, domain.PreferenceSet{}, idx)

	s := NewState(m)
	if len(s.Blocks) != 1 {
		t.Fatalf("expected 1 pinned block, got %d", len(s.Blocks))
	}
	if !s.Used("A", 1) {
		t.Fatal("expected team A marked used on day 1")
	}
	if s.Usage("A", 1) != 2 {
		t.Fatalf("usage = %d, want 2", s.Usage("A", 1))
	}
}

func TestState_IdleSlots(t *testing.T) {
	days := testDays()
	idx := events.Build(days, nil)
	m := Build(&config.Config{}, days, []domain.Team{"A"}, domain.PreferenceSet{}, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: 9 * 60, End: 9*60 + 60})

	if got := s.IdleSlots(); got != 2 {
		t.Fatalf("idle slots = %d, want 2", got)
	}
}

func TestState_ZoneAndMorningBurden(t *testing.T) {
	const early domain.SlotMinutes = 8*60 + 30 // 08:30, first morning slot
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{early}}}
	idx := events.Build(days, nil)
	m := Build(&config.Config{}, days, []domain.Team{"A"}, domain.PreferenceSet{}, idx)
	s := NewState(m)
	s.AddBlock(Block{Team: "A", DayOfMonth: 1, Start: early, End: early + 30})

	totals := s.ZoneTotals("A")
	if totals[domain.ZoneMorning] != 1 {
		t.Fatalf("zone totals = %v, want 1 morning slot", totals)
	}
	if got := s.MorningBurden("A"); got != 7 {
		t.Fatalf("morning burden = %d, want 7", got)
	}
}

func TestModel_PrefZeroDays(t *testing.T) {
	days := testDays()
	idx := events.Build(days, nil)
	prefs := domain.PreferenceSet{"A": {2: true}}
	m := Build(&config.Config{}, days, []domain.Team{"A"}, prefs, idx)
	zero := m.PrefZeroDays()
	if !zero[1] {
		t.Fatal("expected day 1 (no preferences) flagged as pref-zero")
	}
}

func TestModel_SingleTeamNoBlockDays_FlagsFragmentedLeftover(t *testing.T) {
	// Day 1: 5 slots (09:00-11:30), min_slots=3. An event pins the middle
	// slot (10:00), splitting the remaining free slots into two runs of
	// length 2 each — neither long enough for a session — while team B
	// is the sole non-event team preferring the day.
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{
		9 * 60, 9*60 + 30, 10 * 60, 10*60 + 30, 11 * 60,
	}}}
	evs := []domain.EventRecord{{Team: "A", DayOfMonth: 1, Start: 10 * 60, Duration: 30}}
	idx := events.Build(days, evs)
	prefs := domain.PreferenceSet{"B": {1: true}}
	m := Build(&config.Config{MinSlots: 3}, days, []domain.Team{"A", "B"}, prefs, idx)

	got := m.SingleTeamNoBlockDays()
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("SingleTeamNoBlockDays = %v, want [1]", got)
	}
}

func TestModel_SingleTeamNoBlockDays_ClearWhenRoomExists(t *testing.T) {
	days := testDays() // day 1 has 4 contiguous slots, no events
	idx := events.Build(days, nil)
	prefs := domain.PreferenceSet{"A": {1: true}}
	m := Build(&config.Config{MinSlots: 3}, days, []domain.Team{"A"}, prefs, idx)

	if got := m.SingleTeamNoBlockDays(); len(got) != 0 {
		t.Fatalf("expected no flagged days, got %v", got)
	}
}

func TestModel_EligibleNonEventTeams_ExcludesEventOwner(t *testing.T) {
	days := testDays()
	evs := []domain.EventRecord{{Team: "A", DayOfMonth: 1, Start: 9 * 60, Duration: 60}}
	idx := events.Build(days, evs)
	prefs := domain.PreferenceSet{"A": {1: true}, "B": {1: true}}
	m := Build(&config.Config{}, days, []domain.Team{"A", "B"}, prefs, idx)

	eligible := m.EligibleNonEventTeams(1)
	if len(eligible) != 1 || eligible[0] != "B" {
		t.Fatalf("expected only team B eligible, got %v", eligible)
	}
}
