// Package events implements the Event Integrator (spec.md §4.3): it
// derives per-day event ownership sets and identifies full-event days
// that are excluded from fairness scoring.
package events

import "github.com/kasugagym/allocator/internal/domain"

// Index is the derived event structure consumed by the model and
// solver stages.
type Index struct {
	// ByDay maps day-of-month to the events pinned that day.
	ByDay map[int][]domain.EventRecord
	// TeamsByDay maps day-of-month to the set of teams owning an event
	// that day.
	TeamsByDay map[int]map[domain.Team]bool
	// PinnedSlots maps day-of-month to the set of slot-minutes consumed
	// by any event that day, regardless of owner.
	PinnedSlots map[int]map[domain.SlotMinutes]bool
	// FullEventDays is the set of day-of-month values whose event slots
	// cover every slot in that day's availability.
	FullEventDays map[int]bool
}

// Build computes the Index from the validated event list and the day
// calendar.
func Build(days []domain.Day, events []domain.EventRecord) *Index {
	idx := &Index{
		ByDay:         make(map[int][]domain.EventRecord),
		TeamsByDay:    make(map[int]map[domain.Team]bool),
		PinnedSlots:   make(map[int]map[domain.SlotMinutes]bool),
		FullEventDays: make(map[int]bool),
	}

	for _, ev := range events {
		idx.ByDay[ev.DayOfMonth] = append(idx.ByDay[ev.DayOfMonth], ev)
		if idx.TeamsByDay[ev.DayOfMonth] == nil {
			idx.TeamsByDay[ev.DayOfMonth] = make(map[domain.Team]bool)
		}
		idx.TeamsByDay[ev.DayOfMonth][ev.Team] = true
		if idx.PinnedSlots[ev.DayOfMonth] == nil {
			idx.PinnedSlots[ev.DayOfMonth] = make(map[domain.SlotMinutes]bool)
		}
		for _, s := range ev.Slots() {
			idx.PinnedSlots[ev.DayOfMonth][s] = true
		}
	}

	for _, d := range days {
		if d.Unusable || len(d.Slots) == 0 {
			continue
		}
		pinned := idx.PinnedSlots[d.DayOfMonth]
		if len(pinned) == 0 {
			continue
		}
		full := true
		for _, s := range d.Slots {
			if !pinned[s] {
				full = false
				break
			}
		}
		if full {
			idx.FullEventDays[d.DayOfMonth] = true
		}
	}

	return idx
}

// EventOwner returns the team that owns an event at the given
// day/slot, or "" if none.
func (idx *Index) EventOwner(dayOfMonth int, slot domain.SlotMinutes) domain.Team {
	for _, ev := range idx.ByDay[dayOfMonth] {
		if slot >= ev.Start && slot < ev.End() {
			return ev.Team
		}
	}
	return ""
}

// IsEventTeam reports whether team owns at least one event on the
// given day.
func (idx *Index) IsEventTeam(dayOfMonth int, team domain.Team) bool {
	return idx.TeamsByDay[dayOfMonth][team]
}
