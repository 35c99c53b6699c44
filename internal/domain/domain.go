// Package domain holds the core value types shared across the allocation
// pipeline: calendar days, teams, preferences, events, and the slot-level
// assignment produced by the solver.
package domain

import "time"

// SlotMinutes is a slot start time expressed as minutes after midnight.
// Always a multiple of 30, in [0, 1440).
type SlotMinutes int

const slotStep = 30

// Day is one calendar day of the target month together with the ordered
// list of 30-minute slot starts it can host. Unusable is true when the
// day's availability cannot host one full min-slots session, in which
// case Slots is empty.
type Day struct {
	DayOfMonth int
	Date       time.Time
	Slots      []SlotMinutes
	Unusable   bool
}

// HasContiguousRun reports whether d has a run of n consecutive 30-minute
// slots (clock-contiguous, i.e. back to back with no gap).
func (d Day) HasContiguousRun(n int) bool {
	return ContiguousRunStart(d.Slots, n) >= 0
}

// ContiguousRunStart returns the index into slots of the first position
// starting a clock-contiguous run of n slots, or -1 if none exists.
func ContiguousRunStart(slots []SlotMinutes, n int) int {
	if n <= 0 {
		return -1
	}
	for i := 0; i+n <= len(slots); i++ {
		ok := true
		for k := 1; k < n; k++ {
			if slots[i+k] != slots[i]+SlotMinutes(slotStep*k) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// ContiguousRuns splits slots into maximal clock-contiguous runs,
// treating any slot for which exclude returns true as a break (and
// omitting it from the output). Used to find the free sub-runs left in
// a day's slot list once pinned or already-assigned slots are removed.
func ContiguousRuns(slots []SlotMinutes, exclude func(SlotMinutes) bool) [][]SlotMinutes {
	var runs [][]SlotMinutes
	var cur []SlotMinutes
	for _, slot := range slots {
		if exclude != nil && exclude(slot) {
			if len(cur) > 0 {
				runs = append(runs, cur)
				cur = nil
			}
			continue
		}
		if len(cur) > 0 && slot == cur[len(cur)-1]+slotStep {
			cur = append(cur, slot)
		} else {
			if len(cur) > 0 {
				runs = append(runs, cur)
			}
			cur = []SlotMinutes{slot}
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// Team is a unique team name.
type Team string

// PreferenceSet maps a team to the set of day-of-month values (within the
// target month) it has declared willingness to use, after validation.
type PreferenceSet map[Team]map[int]bool

// Count returns the number of in-month preference days for team, i.e.
// pref_count.
func (p PreferenceSet) Count(team Team) int {
	return len(p[team])
}

// Wants reports whether team prefers the given day-of-month.
func (p PreferenceSet) Wants(team Team, dayOfMonth int) bool {
	return p[team][dayOfMonth]
}

// Teams returns the set of all teams with at least one preference.
func (p PreferenceSet) Teams() []Team {
	teams := make([]Team, 0, len(p))
	for t := range p {
		teams = append(teams, t)
	}
	return teams
}

// EventRecord is a pre-confirmed reservation pinned before optimization.
type EventRecord struct {
	Team       Team
	DayOfMonth int
	Start      SlotMinutes
	Duration   int // minutes
	Note       string
}

// End returns the event's exclusive end time in minutes.
func (e EventRecord) End() SlotMinutes {
	return e.Start + SlotMinutes(e.Duration)
}

// Slots returns the ordered 30-minute slot starts covered by the event.
func (e EventRecord) Slots() []SlotMinutes {
	var out []SlotMinutes
	for m := e.Start; m < e.End(); m += slotStep {
		out = append(out, m)
	}
	return out
}

// Zone is one of the four named time bands used by the objective's
// zone-proportional-fairness term.
type Zone int

const (
	ZoneMorning Zone = iota
	ZoneDaytime
	ZoneEvening
	ZoneNight
)

var zoneNames = [...]string{"morning", "daytime", "evening", "night"}

func (z Zone) String() string {
	if int(z) < 0 || int(z) >= len(zoneNames) {
		return "unknown"
	}
	return zoneNames[z]
}

// AllZones lists the four zones in a stable order.
var AllZones = []Zone{ZoneMorning, ZoneDaytime, ZoneEvening, ZoneNight}

// ZoneOf classifies a slot start time into one of the four bands. Slots
// outside 08:30-21:00 fall into ZoneNight per the spec's "otherwise"
// bucket for the morning penalty and the night band's wide definition.
func ZoneOf(start SlotMinutes) Zone {
	switch {
	case start >= 8*60+30 && start < 11*60:
		return ZoneMorning
	case start >= 11*60 && start < 15*60:
		return ZoneDaytime
	case start >= 15*60 && start < 18*60:
		return ZoneEvening
	case start >= 18*60 && start < 21*60:
		return ZoneNight
	default:
		return ZoneNight
	}
}

// MorningPenalty is the per-slot hardship weight used by the
// morning-burden-spread objective term.
func MorningPenalty(start SlotMinutes) int {
	switch {
	case start >= 8*60+30 && start < 9*60+30:
		return 7
	case start >= 9*60+30 && start < 10*60:
		return 4
	case start >= 10*60 && start < 11*60:
		return 2
	default:
		return 0
	}
}

// FormatClock renders minutes-after-midnight as "HH:MM".
func FormatClock(m SlotMinutes) string {
	h := int(m) / 60
	mm := int(m) % 60
	return time.Date(0, 1, 1, h, mm, 0, 0, time.UTC).Format("15:04")
}
