// Package model declares the decision variables of spec.md §3/§4.4 (the
// assignment matrix, usage counts/indicators, start times, zone and
// monthly totals) and the hard constraints posted against them. Rather
// than a dense x[team,day,slot] array of solver-handle variables (no
// CP-SAT binding is available anywhere in this codebase's dependency
// corpus — see DESIGN.md), the assignment is realized directly as one
// contiguous Block per (team, day) pairing, which by construction
// satisfies invariant 4 (single block per team/day) and lets every other
// invariant be expressed as a plain predicate over Blocks.
package model

import (
	"sort"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/events"
)

// Model bundles the static, already-validated inputs the solver and
// objective stages need.
type Model struct {
	Cfg      *config.Config
	Days     []domain.Day
	DayByNum map[int]domain.Day
	Teams    []domain.Team
	Prefs    domain.PreferenceSet
	Events   *events.Index
}

// Build assembles a Model from the outputs of the calendar, intake and
// event-integration stages.
func Build(cfg *config.Config, days []domain.Day, teams []domain.Team, prefs domain.PreferenceSet, eventIdx *events.Index) *Model {
	byNum := make(map[int]domain.Day, len(days))
	for _, d := range days {
		byNum[d.DayOfMonth] = d
	}
	return &Model{Cfg: cfg, Days: days, DayByNum: byNum, Teams: teams, Prefs: prefs, Events: eventIdx}
}

// PrefZeroDays returns the day-of-month set of usable, non-event days
// that no team prefers.
func (m *Model) PrefZeroDays() map[int]bool {
	out := make(map[int]bool)
	for _, d := range m.Days {
		if d.Unusable {
			continue
		}
		if len(m.Events.ByDay[d.DayOfMonth]) > 0 {
			continue
		}
		anyWants := false
		for _, team := range m.Teams {
			if m.Prefs.Wants(team, d.DayOfMonth) {
				anyWants = true
				break
			}
		}
		if !anyWants {
			out[d.DayOfMonth] = true
		}
	}
	return out
}

// EligibleNonEventTeams returns the non-event-owning teams that prefer
// the given day, sorted for determinism.
func (m *Model) EligibleNonEventTeams(dayOfMonth int) []domain.Team {
	var out []domain.Team
	for _, team := range m.Teams {
		if m.Events.IsEventTeam(dayOfMonth, team) {
			continue
		}
		if m.Prefs.Wants(team, dayOfMonth) {
			out = append(out, team)
		}
	}
	return out
}

// SingleTeamNoBlockDays returns, in day-of-month order, the usable,
// non-full-event days where exactly one non-event team prefers the day
// but no free run left after event pinning is long enough to host one
// min_slots session — a day that stays unassigned despite a single
// willing team, because there is no availability left to synthesize a
// block from.
func (m *Model) SingleTeamNoBlockDays() []int {
	var out []int
	for _, d := range m.Days {
		if d.Unusable || m.Events.FullEventDays[d.DayOfMonth] {
			continue
		}
		if len(m.EligibleNonEventTeams(d.DayOfMonth)) != 1 {
			continue
		}
		pinned := m.Events.PinnedSlots[d.DayOfMonth]
		runs := domain.ContiguousRuns(d.Slots, func(s domain.SlotMinutes) bool { return pinned[s] })
		hasRoom := false
		for _, run := range runs {
			if len(run) >= m.Cfg.MinSlots {
				hasRoom = true
				break
			}
		}
		if !hasRoom {
			out = append(out, d.DayOfMonth)
		}
	}
	sort.Ints(out)
	return out
}

// Block is one contiguous, single-team assignment on a single day: the
// realized value of x[team,day,slot]=1 for slot in [Start,End).
type Block struct {
	Team       domain.Team
	DayOfMonth int
	Start      domain.SlotMinutes
	End        domain.SlotMinutes
	FromEvent  bool
}

// Slots returns the ordered slot starts covered by the block.
func (b Block) Slots() []domain.SlotMinutes {
	var out []domain.SlotMinutes
	for s := b.Start; s < b.End; s += 30 {
		out = append(out, s)
	}
	return out
}

// Usage returns U (the number of 30-minute slots) for the block.
func (b Block) Usage() int {
	return int(b.End-b.Start) / 30
}

// State is a realized assignment: one Block per (team, day) pairing
// that uses the gym that day, plus the static Model it was built
// against.
type State struct {
	Model  *Model
	Blocks []Block
}

// NewState seeds a State with every event's pinned block already placed
// (hard constraint 1: Event Pinning).
func NewState(m *Model) *State {
	s := &State{Model: m}
	for dayOfMonth, evs := range m.Events.ByDay {
		byTeam := make(map[domain.Team][]domain.EventRecord)
		for _, ev := range evs {
			byTeam[ev.Team] = append(byTeam[ev.Team], ev)
		}
		for team, recs := range byTeam {
			sort.Slice(recs, func(i, j int) bool { return recs[i].Start < recs[j].Start })
			start := recs[0].Start
			end := recs[0].End()
			for _, r := range recs[1:] {
				if r.Start < end {
					if r.End() > end {
						end = r.End()
					}
					continue
				}
				end = r.End()
			}
			s.Blocks = append(s.Blocks, Block{Team: team, DayOfMonth: dayOfMonth, Start: start, End: end, FromEvent: true})
		}
	}
	return s
}

// AddBlock appends a solver-chosen (non-event) block.
func (s *State) AddBlock(b Block) {
	s.Blocks = append(s.Blocks, b)
}

// BlocksOnDay returns every block on the given day, event and non-event
// alike.
func (s *State) BlocksOnDay(dayOfMonth int) []Block {
	var out []Block
	for _, b := range s.Blocks {
		if b.DayOfMonth == dayOfMonth {
			out = append(out, b)
		}
	}
	return out
}

// BlockFor returns the block for (team, day), if any.
func (s *State) BlockFor(team domain.Team, dayOfMonth int) (Block, bool) {
	for _, b := range s.Blocks {
		if b.Team == team && b.DayOfMonth == dayOfMonth {
			return b, true
		}
	}
	return Block{}, false
}

// Usage returns U[team,day].
func (s *State) Usage(team domain.Team, dayOfMonth int) int {
	if b, ok := s.BlockFor(team, dayOfMonth); ok {
		return b.Usage()
	}
	return 0
}

// Used reports y[team,day].
func (s *State) Used(team domain.Team, dayOfMonth int) bool {
	_, ok := s.BlockFor(team, dayOfMonth)
	return ok
}

// StartTime returns start_time[team,day].
func (s *State) StartTime(team domain.Team, dayOfMonth int) domain.SlotMinutes {
	if b, ok := s.BlockFor(team, dayOfMonth); ok {
		return b.Start
	}
	return 0
}

// MonthlyTotal returns totalM[team].
func (s *State) MonthlyTotal(team domain.Team) int {
	total := 0
	for _, b := range s.Blocks {
		if b.Team == team {
			total += b.Usage()
		}
	}
	return total
}

// ZoneTotals returns zone[zone,team] for every zone.
func (s *State) ZoneTotals(team domain.Team) map[domain.Zone]int {
	totals := map[domain.Zone]int{}
	for _, b := range s.Blocks {
		if b.Team != team {
			continue
		}
		for _, slot := range b.Slots() {
			totals[domain.ZoneOf(slot)]++
		}
	}
	return totals
}

// MorningBurden returns the team's total weighted morning penalty.
func (s *State) MorningBurden(team domain.Team) int {
	burden := 0
	for _, b := range s.Blocks {
		if b.Team != team {
			continue
		}
		for _, slot := range b.Slots() {
			burden += domain.MorningPenalty(slot)
		}
	}
	return burden
}

// IdleSlots counts positions in usable, non-full-event days that have
// no team assigned.
func (s *State) IdleSlots() int {
	idle := 0
	for _, d := range s.Model.Days {
		if d.Unusable {
			continue
		}
		occupied := make(map[domain.SlotMinutes]bool)
		for _, b := range s.BlocksOnDay(d.DayOfMonth) {
			for _, slot := range b.Slots() {
				occupied[slot] = true
			}
		}
		for _, slot := range d.Slots {
			if !occupied[slot] {
				idle++
			}
		}
	}
	return idle
}

// TeamAt returns the team occupying (day, slot), or "" if empty.
func (s *State) TeamAt(dayOfMonth int, slot domain.SlotMinutes) domain.Team {
	for _, b := range s.BlocksOnDay(dayOfMonth) {
		if slot >= b.Start && slot < b.End {
			return b.Team
		}
	}
	return ""
}
