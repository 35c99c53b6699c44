package model

import "github.com/kasugagym/allocator/internal/domain"

// Violation is one failed hard constraint from spec.md §4.4, identified
// by the constraint it failed and the (team, day) it failed at.
type Violation struct {
	Constraint string
	DayOfMonth int
	Team       domain.Team
	Detail     string
}

// CheckInvariants re-derives every hard constraint of spec.md §4.4
// against an already-realized State and reports every violation found.
// It is used both by tests and by the validate subcommand's re-check of
// a materialized schedule.
func CheckInvariants(s *State) []Violation {
	var out []Violation
	out = append(out, checkEventPinning(s)...)
	out = append(out, checkPreferenceGate(s)...)
	out = append(out, checkSlotOccupancy(s)...)
	out = append(out, checkMinimumSession(s)...)
	out = append(out, checkDailyEquity(s)...)
	return out
}

// checkEventPinning verifies constraint 1: an event-owning team's block
// on its event day covers every event slot and nothing outside it, and
// no other team occupies an event slot.
func checkEventPinning(s *State) []Violation {
	var out []Violation
	for dayOfMonth, evs := range s.Model.Events.ByDay {
		byTeam := make(map[domain.Team][]domain.EventRecord)
		for _, ev := range evs {
			byTeam[ev.Team] = append(byTeam[ev.Team], ev)
		}
		for team, recs := range byTeam {
			b, ok := s.BlockFor(team, dayOfMonth)
			if !ok {
				out = append(out, Violation{"event-pinning", dayOfMonth, team, "event-owning team has no block"})
				continue
			}
			for _, ev := range recs {
				for _, slot := range ev.Slots() {
					if slot < b.Start || slot >= b.End {
						out = append(out, Violation{"event-pinning", dayOfMonth, team, "event slot not covered by team's block"})
					}
				}
			}
			for _, slot := range b.Slots() {
				covered := false
				for _, ev := range recs {
					if slot >= ev.Start && slot < ev.End() {
						covered = true
						break
					}
				}
				if !covered {
					out = append(out, Violation{"event-pinning", dayOfMonth, team, "team's block extends outside its event slots"})
				}
			}
		}
		for slot := range s.Model.Events.PinnedSlots[dayOfMonth] {
			owner := s.Model.Events.EventOwner(dayOfMonth, slot)
			if assigned := s.TeamAt(dayOfMonth, slot); assigned != "" && assigned != owner {
				out = append(out, Violation{"event-pinning", dayOfMonth, assigned, "non-owning team occupies an event slot"})
			}
		}
	}
	return out
}

// checkPreferenceGate verifies constraint 2: a non-event-owning team
// must prefer a day to be assigned usage on it.
func checkPreferenceGate(s *State) []Violation {
	var out []Violation
	for _, b := range s.Blocks {
		if b.FromEvent {
			continue
		}
		if !s.Model.Prefs.Wants(b.Team, b.DayOfMonth) {
			out = append(out, Violation{"preference-gate", b.DayOfMonth, b.Team, "assigned on a day not in the team's preferences"})
		}
	}
	return out
}

// checkSlotOccupancy verifies constraint 3 as gated by DESIGN.md's
// eligible-team interpretation: an idle slot is a violation only when an
// eligible, non-event, preferring team that is not yet used that day
// could have been placed there.
func checkSlotOccupancy(s *State) []Violation {
	var out []Violation
	for _, d := range s.Model.Days {
		if d.Unusable || s.Model.Events.FullEventDays[d.DayOfMonth] {
			continue
		}
		eligible := s.Model.EligibleNonEventTeams(d.DayOfMonth)
		if len(eligible) == 0 {
			continue
		}
		anyUnused := false
		for _, team := range eligible {
			if !s.Used(team, d.DayOfMonth) {
				anyUnused = true
				break
			}
		}
		if !anyUnused {
			continue
		}
		runs := domain.ContiguousRuns(d.Slots, func(slot domain.SlotMinutes) bool {
			return s.TeamAt(d.DayOfMonth, slot) != ""
		})
		for _, run := range runs {
			if len(run) < s.Model.Cfg.MinSlots {
				continue
			}
			for range run {
				out = append(out, Violation{"slot-occupancy", d.DayOfMonth, "", "idle run long enough for min_slots with an eligible unused team available"})
			}
		}
	}
	return out
}

// checkMinimumSession verifies constraint 5: any team with positive
// usage on a day must meet min_slots.
func checkMinimumSession(s *State) []Violation {
	var out []Violation
	for _, b := range s.Blocks {
		if b.Usage() > 0 && b.Usage() < s.Model.Cfg.MinSlots {
			out = append(out, Violation{"minimum-session", b.DayOfMonth, b.Team, "usage below min_slots"})
		}
	}
	return out
}

// checkDailyEquity verifies constraints 8 and 9: used-only usage spread
// of at most one slot, and the start-time/usage ordering rule, applied
// to non-event days over every team and to event days restricted to
// eligible non-event-owning teams.
func checkDailyEquity(s *State) []Violation {
	var out []Violation
	for _, d := range s.Model.Days {
		if d.Unusable {
			continue
		}
		isEventDay := len(s.Model.Events.ByDay[d.DayOfMonth]) > 0
		if isEventDay && s.Model.Events.FullEventDays[d.DayOfMonth] {
			continue
		}

		var pool []domain.Team
		if isEventDay {
			pool = s.Model.EligibleNonEventTeams(d.DayOfMonth)
		} else {
			pool = s.Model.Teams
		}

		var used []domain.Team
		for _, team := range pool {
			if s.Used(team, d.DayOfMonth) {
				used = append(used, team)
			}
		}
		if len(used) < 2 {
			continue
		}
		for i := 0; i < len(used); i++ {
			for j := i + 1; j < len(used); j++ {
				a, b := used[i], used[j]
				ua, ub := s.Usage(a, d.DayOfMonth), s.Usage(b, d.DayOfMonth)
				if abs(ua-ub) > 1 {
					out = append(out, Violation{"daily-equity", d.DayOfMonth, a, "usage spread exceeds one slot against " + string(b)})
				}
				sa, sb := s.StartTime(a, d.DayOfMonth), s.StartTime(b, d.DayOfMonth)
				if sa <= sb && ua > ub {
					out = append(out, Violation{"daily-equity", d.DayOfMonth, a, "earlier starter has more usage than " + string(b)})
				}
				if sb <= sa && ub > ua {
					out = append(out, Violation{"daily-equity", d.DayOfMonth, b, "earlier starter has more usage than " + string(a)})
				}
			}
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
