// Package intake implements the Input Validator (spec.md §4.2): it
// normalizes the preferences and events documents, discarding malformed
// or out-of-month/out-of-availability entries with structured warnings,
// and never aborts the run.
package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/runctx"
)

// LoadPreferencesFile reads the preferences document: a JSON object
// mapping team name to an array of ISO-8601 date strings.
func LoadPreferencesFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preferences file: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing preferences file: %w", err)
	}
	return raw, nil
}

// RawEvent is the on-the-wire shape of one events.json entry.
type RawEvent struct {
	Team          string  `json:"team"`
	Date          string  `json:"date"`
	Start         string  `json:"start"`
	DurationHours float64 `json:"duration_hours"`
	Note          string  `json:"note"`
}

// LoadEventsFile reads the events document: a JSON array of event
// objects.
func LoadEventsFile(path string) ([]RawEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading events file: %w", err)
	}
	var raw []RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing events file: %w", err)
	}
	return raw, nil
}

// NormalizePreferences strips dates outside the target month or on
// unusable days, emitting a warning per dropped entry.
func NormalizePreferences(rc *runctx.Context, cfg *config.Config, days []domain.Day, raw map[string][]string) domain.PreferenceSet {
	prefs := make(domain.PreferenceSet)
	unusable := make(map[int]bool, len(days))
	for _, d := range days {
		unusable[d.DayOfMonth] = d.Unusable
	}

	teamNames := make([]string, 0, len(raw))
	for team := range raw {
		teamNames = append(teamNames, team)
	}
	sort.Strings(teamNames)

	for _, teamName := range teamNames {
		dates := raw[teamName]
		team := domain.Team(teamName)
		for i, dateStr := range dates {
			t, err := time.Parse("2006-01-02", dateStr)
			if err != nil {
				rc.Warn(runctx.Warning{Index: i, Team: teamName, Date: dateStr, Field: "date", Reason: "unparseable date"})
				continue
			}
			if int(t.Year()) != cfg.Year || int(t.Month()) != cfg.Month {
				rc.Warn(runctx.Warning{Index: i, Team: teamName, Date: dateStr, Field: "date", Reason: "date outside target month"})
				continue
			}
			dom := t.Day()
			if unusable[dom] {
				rc.Warn(runctx.Warning{Index: i, Team: teamName, Date: dateStr, Field: "date", Reason: "day is unusable (no min-slots block available)"})
				continue
			}
			if prefs[team] == nil {
				prefs[team] = make(map[int]bool)
			}
			prefs[team][dom] = true
		}
	}

	return prefs
}

// ValidateEvents applies the per-record rules of spec.md §4.2 and returns
// the canonical EVENT_SLOTS list: valid event records only.
func ValidateEvents(rc *runctx.Context, cfg *config.Config, days []domain.Day, raw []RawEvent) []domain.EventRecord {
	dayByNum := make(map[int]domain.Day, len(days))
	for _, d := range days {
		dayByNum[d.DayOfMonth] = d
	}

	var out []domain.EventRecord
	for i, ev := range raw {
		reject := func(field, reason string) {
			rc.Warn(runctx.Warning{Index: i, Team: ev.Team, Date: ev.Date, Field: field, Reason: reason})
		}

		if ev.Team == "" {
			reject("team", "missing team")
			continue
		}
		if ev.Date == "" {
			reject("date", "missing date")
			continue
		}
		if ev.Start == "" {
			reject("start", "missing start")
			continue
		}
		if ev.DurationHours <= 0 {
			reject("duration_hours", "duration must be a positive number")
			continue
		}

		t, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			reject("date", "unparseable date")
			continue
		}
		if int(t.Year()) != cfg.Year || int(t.Month()) != cfg.Month {
			reject("date", "date outside target month")
			continue
		}
		dom := t.Day()

		day, ok := dayByNum[dom]
		if !ok || day.Unusable {
			reject("date", "day has no slot list")
			continue
		}

		startTime, err := time.Parse("15:04", ev.Start)
		if err != nil {
			reject("start", "start is not HH:MM")
			continue
		}
		startMin := startTime.Hour()*60 + startTime.Minute()
		if startMin%30 != 0 {
			reject("start", "start not aligned to 30-minute grid")
			continue
		}

		durationMin := int(ev.DurationHours * 60)
		if durationMin <= 0 || durationMin%30 != 0 {
			reject("duration_hours", "duration not aligned to 30-minute grid")
			continue
		}

		rec := domain.EventRecord{
			Team:       domain.Team(ev.Team),
			DayOfMonth: dom,
			Start:      domain.SlotMinutes(startMin),
			Duration:   durationMin,
			Note:       ev.Note,
		}

		slotSet := make(map[domain.SlotMinutes]bool, len(day.Slots))
		for _, s := range day.Slots {
			slotSet[s] = true
		}
		covered := rec.Slots()
		allPresent := true
		for _, s := range covered {
			if !slotSet[s] {
				allPresent = false
				break
			}
		}
		if !allPresent {
			reject("start", "event falls in a forbidden (unavailable) window")
			continue
		}

		out = append(out, rec)
	}

	return out
}

// TeamUniverse recomputes the team universe from surviving preferences and
// surviving event records, per spec.md §3/§4.2.
func TeamUniverse(prefs domain.PreferenceSet, events []domain.EventRecord) []domain.Team {
	set := make(map[domain.Team]bool)
	for t := range prefs {
		set[t] = true
	}
	for _, e := range events {
		set[e.Team] = true
	}
	teams := make([]domain.Team, 0, len(set))
	for t := range set {
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}
