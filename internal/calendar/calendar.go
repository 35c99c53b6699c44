// Package calendar builds the per-day slot lists for the target month
// from the configuration's availability table, pruning any day that
// cannot host one full minimum session (spec.md §4.1).
package calendar

import (
	"sort"
	"time"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
)

const slotStep = 30

// Build expands the target month into one domain.Day per calendar day,
// applying window expansion and the min-block rule.
func Build(cfg *config.Config) []domain.Day {
	last := cfg.LastDay()
	days := make([]domain.Day, 0, last)

	for d := 1; d <= last; d++ {
		entry := cfg.Availability[d]
		slots := expandEntry(entry)

		unusable := false
		if domain.ContiguousRunStart(slots, cfg.MinSlots) < 0 {
			slots = nil
			unusable = true
		}

		days = append(days, domain.Day{
			DayOfMonth: d,
			Date:       time.Date(cfg.Year, time.Month(cfg.Month), d, 0, 0, 0, 0, time.UTC),
			Slots:      slots,
			Unusable:   unusable,
		})
	}

	return days
}

func expandEntry(entry config.AvailabilityEntry) []domain.SlotMinutes {
	var slots []domain.SlotMinutes
	if s, e, ok := entry.Window1(); ok {
		slots = append(slots, expandWindow(s, e)...)
	}
	if s, e, ok := entry.Window2(); ok {
		slots = append(slots, expandWindow(s, e)...)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return dedupe(slots)
}

func expandWindow(start, end int) []domain.SlotMinutes {
	var out []domain.SlotMinutes
	for m := start; m < end; m += slotStep {
		out = append(out, domain.SlotMinutes(m))
	}
	return out
}

func dedupe(slots []domain.SlotMinutes) []domain.SlotMinutes {
	if len(slots) < 2 {
		return slots
	}
	out := slots[:1]
	for _, s := range slots[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
