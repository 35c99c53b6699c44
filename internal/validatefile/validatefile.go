// Package validatefile supports the `validate` subcommand: it re-reads
// a previously materialized schedule workbook and checks it against a
// model's hard constraints, independent of whatever process produced
// the workbook.
package validatefile

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/model"
	"github.com/xuri/excelize/v2"
)

const masterSheetName = "Master Schedule"

var blockPattern = regexp.MustCompile(`^(.*) (\d{2}:\d{2})-(\d{2}:\d{2})$`)

// ReadAssignments parses the Master Schedule sheet's block strings back
// into model.Blocks, skipping unusable/preference-zero/unassigned
// segments.
func ReadAssignments(path string, m *model.Model) ([]model.Block, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(masterSheetName)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", masterSheetName, err)
	}

	var blocks []model.Block
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue // header row, or a short row with no Blocks cell
		}
		date, err := time.Parse("01/02/2006", row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: unparseable date %q: %w", i+1, row[0], err)
		}
		dayOfMonth := date.Day()

		for _, segment := range splitSegments(row[2]) {
			b, ok, err := parseSegment(segment, dayOfMonth, m)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			if ok {
				blocks = append(blocks, b)
			}
		}
	}
	return blocks, nil
}

func splitSegments(cell string) []string {
	if cell == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i+1 < len(cell); i++ {
		if cell[i] == ',' && cell[i+1] == ' ' {
			out = append(out, cell[start:i])
			start = i + 2
		}
	}
	out = append(out, cell[start:])
	return out
}

// parseSegment parses one "Team HH:MM-HH:MM" block string. Segments for
// the unusable/preference-zero day labels and the "unassigned" marker
// parse to (_, false, nil): they carry no team assignment to check.
func parseSegment(segment string, dayOfMonth int, m *model.Model) (model.Block, bool, error) {
	switch segment {
	case "", "(利用不可)", "希望団体0":
		return model.Block{}, false, nil
	}

	match := blockPattern.FindStringSubmatch(segment)
	if match == nil {
		return model.Block{}, false, fmt.Errorf("unrecognized block segment %q", segment)
	}
	team, startStr, endStr := match[1], match[2], match[3]
	if team == "(未割当)" {
		return model.Block{}, false, nil
	}

	start, err := parseClock(startStr)
	if err != nil {
		return model.Block{}, false, fmt.Errorf("block %q: %w", segment, err)
	}
	end, err := parseClock(endStr)
	if err != nil {
		return model.Block{}, false, fmt.Errorf("block %q: %w", segment, err)
	}

	b := model.Block{Team: domain.Team(team), DayOfMonth: dayOfMonth, Start: start, End: end}
	if m.Events != nil && m.Events.IsEventTeam(dayOfMonth, b.Team) {
		b.FromEvent = true
	}
	return b, true, nil
}

func parseClock(s string) (domain.SlotMinutes, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("unparseable clock time %q: %w", s, err)
	}
	return domain.SlotMinutes(t.Hour()*60 + t.Minute()), nil
}

// Validate rebuilds a State from a materialized workbook's block
// strings and checks it against the model's hard constraints.
func Validate(path string, m *model.Model) ([]model.Violation, error) {
	blocks, err := ReadAssignments(path, m)
	if err != nil {
		return nil, err
	}
	s := &model.State{Model: m}
	for _, b := range blocks {
		s.AddBlock(b)
	}
	return model.CheckInvariants(s), nil
}
