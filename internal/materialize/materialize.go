// Package materialize implements the Schedule Materializer (spec.md
// §4.7): it collapses the solver's per-slot assignment into contiguous
// block strings, the canonical per-day table, the per-team breakdown,
// and the monthly zone summary, then renders them to CSV and to an
// Excel workbook in the teacher's sheet layout.
package materialize

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	labelUnusable    = "(利用不可)"
	labelPrefZero    = "希望団体0"
	labelUnassigned  = "(未割当)"
	masterSheetName  = "Master Schedule"
	summarySheetName = "Monthly Summary"
)

// DayRow is one row of the canonical schedule table: a day and its
// ordered block display string.
type DayRow struct {
	DayOfMonth int
	Date       time.Time
	Display    string
}

// TeamRow is one row of the per-team breakdown table.
type TeamRow struct {
	Team       domain.Team
	Date       time.Time
	StartClock string
	EndClock   string
	Hours      float64
}

// SummaryRow is one team's row of the monthly summary table.
type SummaryRow struct {
	Team        domain.Team
	MonthlyMins int
	ZoneMins    map[domain.Zone]int
}

// BuildDayRows applies spec.md §4.7's per-day rendering rules.
func BuildDayRows(m *model.Model, s *model.State) []DayRow {
	prefZero := m.PrefZeroDays()
	rows := make([]DayRow, 0, len(m.Days))
	for _, d := range m.Days {
		row := DayRow{DayOfMonth: d.DayOfMonth, Date: d.Date}
		switch {
		case d.Unusable:
			row.Display = labelUnusable
		case prefZero[d.DayOfMonth]:
			row.Display = labelPrefZero
		default:
			row.Display = blockString(d, s)
		}
		rows = append(rows, row)
	}
	return rows
}

// blockString walks a usable day's slots in order and collapses
// consecutive equal-team runs into "(team, start-minute, end-minute)"
// blocks, rendered as "Team HH:MM-HH:MM" segments joined by commas.
func blockString(d domain.Day, s *model.State) string {
	if len(d.Slots) == 0 {
		return labelUnusable
	}
	var segments []string
	var curTeam domain.Team
	var curStart, curEnd domain.SlotMinutes
	open := false

	flush := func() {
		if !open {
			return
		}
		label := string(curTeam)
		if curTeam == "" {
			label = labelUnassigned
		}
		segments = append(segments, fmt.Sprintf("%s %s-%s", label, domain.FormatClock(curStart), domain.FormatClock(curEnd)))
		open = false
	}

	for _, slot := range d.Slots {
		team := s.TeamAt(d.DayOfMonth, slot)
		if open && team == curTeam && slot == curEnd {
			curEnd = slot + 30
			continue
		}
		flush()
		curTeam = team
		curStart = slot
		curEnd = slot + 30
		open = true
	}
	flush()

	return strings.Join(segments, ", ")
}

// BuildTeamRows produces the per-team breakdown table sorted by team
// then date.
func BuildTeamRows(m *model.Model, s *model.State) []TeamRow {
	var rows []TeamRow
	for _, b := range s.Blocks {
		d := m.DayByNum[b.DayOfMonth]
		rows = append(rows, TeamRow{
			Team:       b.Team,
			Date:       d.Date,
			StartClock: domain.FormatClock(b.Start),
			EndClock:   domain.FormatClock(b.End),
			Hours:      float64(b.Usage()) * 0.5,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Team != rows[j].Team {
			return rows[i].Team < rows[j].Team
		}
		return rows[i].Date.Before(rows[j].Date)
	})
	return rows
}

// BuildSummaryRows produces the monthly summary table: one row per
// team with its monthly total and per-zone totals, in minutes.
func BuildSummaryRows(m *model.Model, s *model.State) []SummaryRow {
	rows := make([]SummaryRow, 0, len(m.Teams))
	for _, team := range m.Teams {
		zoneSlots := s.ZoneTotals(team)
		zoneMins := make(map[domain.Zone]int, len(zoneSlots))
		for z, count := range zoneSlots {
			zoneMins[z] = count * 30
		}
		rows = append(rows, SummaryRow{
			Team:        team,
			MonthlyMins: s.MonthlyTotal(team) * 30,
			ZoneMins:    zoneMins,
		})
	}
	return rows
}

// WriteScheduleCSV renders the canonical day table to CSV.
func WriteScheduleCSV(path string, rows []DayRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating schedule csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Day", "Blocks"}); err != nil {
		return fmt.Errorf("writing schedule csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.Date.Format("2006-01-02"), row.Date.Format("Mon"), row.Display}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing schedule csv row: %w", err)
		}
	}
	return w.Error()
}

// GenerateWorkbook builds the Excel output artifact: the master
// schedule sheet, one sheet per team, and the monthly summary sheet.
func GenerateWorkbook(dayRows []DayRow, teamRows []TeamRow, summaryRows []SummaryRow) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetDefaultFont("Arial")

	if err := writeMasterSheet(f, dayRows); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}
	if err := writeTeamSheets(f, teamRows); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}
	if err := writeSummarySheet(f, summaryRows); err != nil {
		return nil, fmt.Errorf("writing summary sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeMasterSheet(f *excelize.File, rows []DayRow) error {
	f.NewSheet(masterSheetName)

	headers := []string{"Date", "Day", "Blocks"}
	for i, h := range headers {
		f.SetCellValue(masterSheetName, cellRef(i+1, 1), h)
	}
	style := headerStyle(f)
	if style != 0 {
		for i := range headers {
			f.SetCellStyle(masterSheetName, cellRef(i+1, 1), cellRef(i+1, 1), style)
		}
	}

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(masterSheetName, cellRef(1, r), row.Date.Format("01/02/2006"))
		f.SetCellValue(masterSheetName, cellRef(2, r), row.Date.Format("Mon"))
		f.SetCellValue(masterSheetName, cellRef(3, r), row.Display)
	}

	f.SetColWidth(masterSheetName, "A", "A", 14)
	f.SetColWidth(masterSheetName, "B", "B", 8)
	f.SetColWidth(masterSheetName, "C", "C", 70)
	return nil
}

func writeTeamSheets(f *excelize.File, rows []TeamRow) error {
	byTeam := make(map[domain.Team][]TeamRow)
	var teams []domain.Team
	for _, row := range rows {
		if _, ok := byTeam[row.Team]; !ok {
			teams = append(teams, row.Team)
		}
		byTeam[row.Team] = append(byTeam[row.Team], row)
	}

	headers := []string{"Date", "Day", "Start", "End", "Hours"}
	for _, team := range teams {
		sheet := string(team)
		f.NewSheet(sheet)
		for i, h := range headers {
			f.SetCellValue(sheet, cellRef(i+1, 1), h)
		}
		style := headerStyle(f)
		if style != 0 {
			for i := range headers {
				f.SetCellStyle(sheet, cellRef(i+1, 1), cellRef(i+1, 1), style)
			}
		}
		for i, row := range byTeam[team] {
			r := i + 2
			f.SetCellValue(sheet, cellRef(1, r), row.Date.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, r), row.Date.Format("Mon"))
			f.SetCellValue(sheet, cellRef(3, r), row.StartClock)
			f.SetCellValue(sheet, cellRef(4, r), row.EndClock)
			f.SetCellValue(sheet, cellRef(5, r), row.Hours)
		}
		f.SetColWidth(sheet, "A", "A", 14)
		f.SetColWidth(sheet, "B", "E", 10)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, rows []SummaryRow) error {
	f.NewSheet(summarySheetName)

	headers := []string{"Team", "Monthly Hours"}
	for _, z := range domain.AllZones {
		headers = append(headers, capitalize(z.String())+" Hours")
	}
	for i, h := range headers {
		f.SetCellValue(summarySheetName, cellRef(i+1, 1), h)
	}
	style := headerStyle(f)
	if style != 0 {
		for i := range headers {
			f.SetCellStyle(summarySheetName, cellRef(i+1, 1), cellRef(i+1, 1), style)
		}
	}

	for i, row := range rows {
		r := i + 2
		f.SetCellValue(summarySheetName, cellRef(1, r), string(row.Team))
		f.SetCellValue(summarySheetName, cellRef(2, r), float64(row.MonthlyMins)/60)
		for zi, z := range domain.AllZones {
			f.SetCellValue(summarySheetName, cellRef(zi+3, r), float64(row.ZoneMins[z])/60)
		}
	}

	f.SetColWidth(summarySheetName, "A", "A", 18)
	f.SetColWidth(summarySheetName, "B", colLetter(1+len(domain.AllZones)+1), 16)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
