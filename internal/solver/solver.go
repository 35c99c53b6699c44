// Package solver implements the Solver Driver (spec.md §4.6): a
// budgeted multi-restart constructive search. No CP-SAT or ILP binding
// is available anywhere in this module's dependency corpus (see
// DESIGN.md), so the driver builds feasible assignments directly — one
// contiguous block per (team, day) — and keeps the best-scoring attempt
// found, mirroring the restart/scoring shape of a bounded local-search
// engine.
package solver

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/model"
	"github.com/kasugagym/allocator/internal/objective"
)

// Status is the solver's terminal status, per spec.md §4.6.
type Status int

const (
	StatusOptimal Status = iota
	StatusFeasible
	StatusNoSolution
)

func (st Status) String() string {
	switch st {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	default:
		return "NO_SOLUTION"
	}
}

// maxRestarts bounds the search independent of the configured budget, so
// a generous max_solve_seconds on a tiny input can't demand an
// unreasonable restart count.
const maxRestarts = 2000

// restartsPerSecond turns max_solve_seconds into a restart count without
// ever consulting a live clock: the search must be deterministic given
// identical inputs and seed/settings (spec.md §5, §8's round-trip
// property), so how many restarts run can only be a pure function of
// the config, never of how fast the machine executing it happens to be.
const restartsPerSecond = 50

// restartBudget derives the number of restarts to run from the config
// alone.
func restartBudget(cfg *config.Config) int {
	n := cfg.MaxSolveSeconds * restartsPerSecond
	if n > maxRestarts {
		n = maxRestarts
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Solve searches for the best-scoring feasible assignment within the
// model's configured restart budget, returning the terminal status per
// spec.md §4.6. The search is deterministic for identical inputs: both
// the restart count and the restart order are driven entirely by the
// config and a seed derived from the target month, never from
// wall-clock entropy.
func Solve(m *model.Model) (*model.State, Status, error) {
	seed := int64(m.Cfg.Year)*100 + int64(m.Cfg.Month)
	rng := rand.New(rand.NewSource(seed))

	candidateDays := placementCandidates(m)
	restarts := restartBudget(m.Cfg)

	var best *model.State
	bestScore := 0
	for i := 0; i < restarts; i++ {
		order := make([]int, len(candidateDays))
		copy(order, candidateDays)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		state := model.NewState(m)
		for _, dayOfMonth := range order {
			placeDay(m, state, dayOfMonth, rng)
		}

		score := objective.Evaluate(state)
		if best == nil || score > bestScore {
			best = state
			bestScore = score
		}
	}

	if best == nil {
		best = model.NewState(m)
	}

	if violations := model.CheckInvariants(best); len(violations) > 0 {
		return best, StatusNoSolution, fmt.Errorf("solver produced %d hard-constraint violation(s); first: %s on day %d", len(violations), violations[0].Constraint, violations[0].DayOfMonth)
	}

	status := StatusFeasible
	if restarts >= maxRestarts {
		status = StatusOptimal
	}
	return best, status, nil
}

// placementCandidates returns the days eligible for non-event
// placement: usable, not fully saturated by events, and not a
// preference-zero day.
func placementCandidates(m *model.Model) []int {
	prefZero := m.PrefZeroDays()
	var out []int
	for _, d := range m.Days {
		if d.Unusable || m.Events.FullEventDays[d.DayOfMonth] || prefZero[d.DayOfMonth] {
			continue
		}
		out = append(out, d.DayOfMonth)
	}
	return out
}

// placeDay fills one day's free capacity (slots left after event
// pinning) with need-ranked blocks sized against a single target shared
// across every run on the day, rather than maximizing each run in
// isolation: if a day's free slots split into more than one run (two
// disjoint availability windows, or an event pinned mid-day), sizing
// each run independently can force whichever teams land in a short
// leftover run into a block far larger or smaller than everyone else's,
// breaking the daily-equity invariant (spec.md §4.4 #8) on every
// restart. Computing one base/extra pair for the day's whole free
// capacity and handing every chosen team a block of size base or
// base+1, wherever it ends up placed, keeps every used team's usage
// within one slot of every other regardless of how the runs split.
func placeDay(m *model.Model, state *model.State, dayOfMonth int, rng *rand.Rand) {
	day := m.DayByNum[dayOfMonth]
	pinned := m.Events.PinnedSlots[dayOfMonth]
	eligible := m.EligibleNonEventTeams(dayOfMonth)
	if len(eligible) == 0 {
		return
	}

	// Shuffle so which team breaks a need tie varies across restarts,
	// letting the morning-burden spread term be explored rather than
	// pinned to document order every attempt.
	rng.Shuffle(len(eligible), func(i, j int) { eligible[i], eligible[j] = eligible[j], eligible[i] })

	runs := domain.ContiguousRuns(day.Slots, func(s domain.SlotMinutes) bool { return pinned[s] })
	var usable [][]domain.SlotMinutes
	totalFree := 0
	for _, run := range runs {
		if len(run) >= m.Cfg.MinSlots {
			usable = append(usable, run)
			totalFree += len(run)
		}
	}
	if totalFree == 0 {
		return
	}
	sort.Slice(usable, func(i, j int) bool { return len(usable[i]) > len(usable[j]) })

	k := totalFree / m.Cfg.MinSlots
	if k > len(eligible) {
		k = len(eligible)
	}
	if k == 0 {
		return
	}

	candidates := make([]domain.Team, len(eligible))
	copy(candidates, eligible)
	sortByNeed(candidates, state)
	chosen := candidates[:k]

	base := totalFree / k
	extra := totalFree % k

	type pending struct {
		team domain.Team
		size int
	}
	// chosen is need-ascending (most behind first); give the neediest
	// teams the larger base+1 block.
	queue := make([]pending, k)
	for i, t := range chosen {
		size := base
		if i < extra {
			size = base + 1
		}
		queue[i] = pending{t, size}
	}
	sort.SliceStable(queue, func(i, j int) bool { return queue[i].size > queue[j].size })

	for _, run := range usable {
		remaining := len(run)
		pos := 0
		for remaining >= m.Cfg.MinSlots && len(queue) > 0 {
			fit := -1
			for i, item := range queue {
				if item.size <= remaining {
					fit = i
					break
				}
			}
			if fit < 0 {
				break
			}
			item := queue[fit]
			queue = append(queue[:fit], queue[fit+1:]...)

			start := run[pos]
			end := start + domain.SlotMinutes(item.size*30)
			state.AddBlock(model.Block{Team: item.team, DayOfMonth: dayOfMonth, Start: start, End: end})
			pos += item.size
			remaining -= item.size
		}
	}
}

// sortByNeed orders candidates by ascending totalM/pref_count, the
// teams furthest behind their fair share of monthly usage first.
func sortByNeed(candidates []domain.Team, state *model.State) {
	need := func(t domain.Team) float64 {
		prefCount := state.Model.Prefs.Count(t)
		if prefCount == 0 {
			prefCount = 1
		}
		return float64(state.MonthlyTotal(t)) / float64(prefCount)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return need(candidates[i]) < need(candidates[j])
	})
}
