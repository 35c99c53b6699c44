package materialize

import (
	"testing"
	"time"

	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/domain"
	"github.com/kasugagym/allocator/internal/events"
	"github.com/kasugagym/allocator/internal/model"
)

func buildTestModel() (*model.Model, *model.State) {
	days := []domain.Day{
		{DayOfMonth: 1, Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Unusable: true},
		{DayOfMonth: 2, Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
			Slots: []domain.SlotMinutes{18 * 60, 18*60 + 30, 19 * 60, 19*60 + 30}},
	}
	prefs := domain.PreferenceSet{"A": {2: true}}
	idx := events.Build(days, nil)
	m := model.Build(&config.Config{MinSlots: 2}, days, []domain.Team{"A"}, prefs, idx)
	s := model.NewState(m)
	s.AddBlock(model.Block{Team: "A", DayOfMonth: 2, Start: 18 * 60, End: 19*60 + 30})
	return m, s
}

func TestBuildDayRows_UnusableAndBlockString(t *testing.T) {
	m, s := buildTestModel()
	rows := BuildDayRows(m, s)
	if rows[0].Display != labelUnusable {
		t.Fatalf("day 1 display = %q, want unusable label", rows[0].Display)
	}
	want := "A 18:00-19:30, " + labelUnassigned + " 19:30-20:00"
	if rows[1].Display != want {
		t.Fatalf("day 2 display = %q, want %q", rows[1].Display, want)
	}
}

func TestBuildDayRows_PrefZeroDay(t *testing.T) {
	days := []domain.Day{
		{DayOfMonth: 3, Date: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
			Slots: []domain.SlotMinutes{9 * 60, 9*60 + 30}},
	}
	idx := events.Build(days, nil)
	m := model.Build(&config.Config{MinSlots: 2}, days, []domain.Team{"A"}, domain.PreferenceSet{}, idx)
	s := model.NewState(m)

	rows := BuildDayRows(m, s)
	if rows[0].Display != labelPrefZero {
		t.Fatalf("display = %q, want pref-zero label", rows[0].Display)
	}
}

func TestBuildTeamRows_HoursFromBlockUsage(t *testing.T) {
	m, s := buildTestModel()
	rows := BuildTeamRows(m, s)
	if len(rows) != 1 {
		t.Fatalf("expected 1 team row, got %d", len(rows))
	}
	if rows[0].Hours != 1.5 {
		t.Fatalf("hours = %v, want 1.5", rows[0].Hours)
	}
}

func TestBuildSummaryRows_MonthlyMinutes(t *testing.T) {
	m, s := buildTestModel()
	rows := BuildSummaryRows(m, s)
	if len(rows) != 1 || rows[0].MonthlyMins != 90 {
		t.Fatalf("summary rows = %+v, want monthly minutes 90", rows)
	}
}

func TestGenerateWorkbook_NoError(t *testing.T) {
	m, s := buildTestModel()
	dayRows := BuildDayRows(m, s)
	teamRows := BuildTeamRows(m, s)
	summaryRows := BuildSummaryRows(m, s)

	f, err := GenerateWorkbook(dayRows, teamRows, summaryRows)
	if err != nil {
		t.Fatalf("GenerateWorkbook returned error: %v", err)
	}
	idx, err := f.GetSheetIndex(masterSheetName)
	if err != nil {
		t.Fatalf("GetSheetIndex error: %v", err)
	}
	if idx < 0 {
		t.Fatal("expected master sheet present")
	}
}
