// Package objective implements the Objective Composer (spec.md §4.5)
// and the Objective Breakdown Reporter (spec.md §4.8): the six weighted
// terms the solver maximizes, and a post-hoc recomputation of each term
// against a finished assignment for diagnostic reporting.
package objective

import (
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/model"
)

// Weights, as named in spec.md §4.5.
const (
	WeightParticipation    = 10000
	WeightDailySpread      = -100
	WeightDailySpreadEvent = -100
	WeightMonthlyFairness  = -13
	WeightMorningSpread    = -10
	WeightZoneFairness     = -10
	WeightIdleSlots        = -100000
)

// Breakdown is the side-by-side score report of spec.md §4.8: one field
// per weighted term plus the total.
type Breakdown struct {
	Participation    int
	DailySpread      int
	DailySpreadEvent int
	MonthlyFairness  int
	MorningSpread    int
	ZoneFairness     int
	IdleSlots        int
	Total            int
}

// Evaluate scores a State against its Model, returning the weighted
// total the solver is trying to maximize.
func Evaluate(s *model.State) int {
	return Score(s).Total
}

// Score computes the full Breakdown, recomputing every term from the
// assignment itself rather than incremental bookkeeping, so that the
// reported figures always exactly match what Evaluate returns.
func Score(s *model.State) Breakdown {
	b := Breakdown{}

	b.Participation = participation(s)
	b.DailySpread = dailySpread(s, false)
	b.DailySpreadEvent = dailySpread(s, true)
	b.MonthlyFairness = monthlyFairness(s)
	b.MorningSpread = morningSpread(s)
	b.ZoneFairness = zoneFairness(s)
	b.IdleSlots = s.IdleSlots()

	b.Total = WeightParticipation*b.Participation +
		WeightDailySpread*b.DailySpread +
		WeightDailySpreadEvent*b.DailySpreadEvent +
		WeightMonthlyFairness*b.MonthlyFairness +
		WeightMorningSpread*b.MorningSpread +
		WeightZoneFairness*b.ZoneFairness +
		WeightIdleSlots*b.IdleSlots
	return b
}

// participation sums y[team,d] across every day and team: the raw count
// of (team, day) pairs that used the gym at all.
func participation(s *model.State) int {
	return len(s.Blocks)
}

// dailySpread sums, over days matching the eventDay filter, the
// used-only max-minus-min usage spread across teams that actually used
// the gym that day (gated to 0 when fewer than two teams used it).
//
// eventDay selects which of spec.md §4.4's two equity constraints (8 or
// 9) the term mirrors: false sums over every usable, non-event day
// using every team; true restricts to partial event days using only
// non-event-owning teams that prefer the day, and skips full-event days
// entirely.
func dailySpread(s *model.State, eventDay bool) int {
	total := 0
	for _, d := range s.Model.Days {
		if d.Unusable {
			continue
		}
		isEventDay := len(s.Model.Events.ByDay[d.DayOfMonth]) > 0
		if isEventDay != eventDay {
			continue
		}
		if eventDay && s.Model.Events.FullEventDays[d.DayOfMonth] {
			continue
		}

		var pool []domain.Team
		if eventDay {
			pool = s.Model.EligibleNonEventTeams(d.DayOfMonth)
		} else {
			pool = s.Model.Teams
		}

		usedCount := 0
		max, min := 0, len(d.Slots)
		for _, team := range pool {
			if s.Used(team, d.DayOfMonth) {
				usedCount++
				u := s.Usage(team, d.DayOfMonth)
				if u > max {
					max = u
				}
				if u < min {
					min = u
				}
			}
		}
		if usedCount < 2 {
			continue
		}
		total += max - min
	}
	return total
}

// monthlyFairness sums |totalM[a]*pref_count[b] - totalM[b]*pref_count[a]|
// over every pair of teams with a nonzero preference count.
func monthlyFairness(s *model.State) int {
	teams := fairnessEligible(s)
	total := 0
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			a, b := teams[i], teams[j]
			diff := s.MonthlyTotal(a)*s.Model.Prefs.Count(b) - s.MonthlyTotal(b)*s.Model.Prefs.Count(a)
			total += abs(diff)
		}
	}
	return total
}

// morningSpread is max_team - min_team of weighted morning burden,
// over every team in the universe.
func morningSpread(s *model.State) int {
	if len(s.Model.Teams) == 0 {
		return 0
	}
	max, min := 0, -1
	for _, team := range s.Model.Teams {
		burden := s.MorningBurden(team)
		if burden > max {
			max = burden
		}
		if min < 0 || burden < min {
			min = burden
		}
	}
	return max - min
}

// zoneFairness sums, for each of the four zones independently, the same
// proportional-fairness pairing used by monthlyFairness but over
// per-zone slot counts instead of monthly totals.
func zoneFairness(s *model.State) int {
	teams := fairnessEligible(s)
	zoneTotals := make(map[domain.Team]map[domain.Zone]int, len(teams))
	for _, t := range teams {
		zoneTotals[t] = s.ZoneTotals(t)
	}

	total := 0
	for _, z := range domain.AllZones {
		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				a, b := teams[i], teams[j]
				diff := zoneTotals[a][z]*s.Model.Prefs.Count(b) - zoneTotals[b][z]*s.Model.Prefs.Count(a)
				total += abs(diff)
			}
		}
	}
	return total
}

// fairnessEligible returns the teams with a nonzero preference count, in
// the Model's stable team order, since pairs involving pref_count=0 are
// excluded from every proportional-fairness sum.
func fairnessEligible(s *model.State) []domain.Team {
	var out []domain.Team
	for _, t := range s.Model.Teams {
		if s.Model.Prefs.Count(t) > 0 {
			out = append(out, t)
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
