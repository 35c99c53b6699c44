package events

import (
	"testing"

	"github.com/kasugagym/allocator/internal/domain"
)

func TestBuild_FullEventDay(t *testing.T) {
	days := []domain.Day{
		{DayOfMonth: 15, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60}},
	}
	evs := []domain.EventRecord{
		{Team: "A", DayOfMonth: 15, Start: 9 * 60, Duration: 90},
	}
	idx := Build(days, evs)
	if !idx.FullEventDays[15] {
		t.Fatal("expected day 15 marked as full event day")
	}
	if !idx.IsEventTeam(15, "A") {
		t.Fatal("expected team A recognized as event owner")
	}
}

func TestBuild_PartialEventDay(t *testing.T) {
	days := []domain.Day{
		{DayOfMonth: 15, Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30, 10 * 60, 10*60 + 30}},
	}
	evs := []domain.EventRecord{
		{Team: "A", DayOfMonth: 15, Start: 9 * 60, Duration: 60},
	}
	idx := Build(days, evs)
	if idx.FullEventDays[15] {
		t.Fatal("did not expect full event day")
	}
	if idx.EventOwner(15, 10*60+30) != "" {
		t.Fatal("expected no owner for unpinned slot")
	}
	if idx.EventOwner(15, 9*60) != "A" {
		t.Fatal("expected team A to own pinned slot")
	}
}

func TestBuild_NoEvents(t *testing.T) {
	days := []domain.Day{{DayOfMonth: 1, Slots: []domain.SlotMinutes{9 * 60}}}
	idx := Build(days, nil)
	if len(idx.FullEventDays) != 0 {
		t.Fatal("expected no full event days")
	}
}
