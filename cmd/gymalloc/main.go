package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kasugagym/allocator/internal/calendar"
	"github.com/kasugagym/allocator/internal/config"
	"github.com/kasugagym/allocator/internal/events"
	"github.com/kasugagym/allocator/internal/intake"
	"github.com/kasugagym/allocator/internal/materialize"
	"github.com/kasugagym/allocator/internal/model"
	"github.com/kasugagym/allocator/internal/objective"
	"github.com/kasugagym/allocator/internal/runctx"
	"github.com/kasugagym/allocator/internal/solver"
	"github.com/kasugagym/allocator/internal/validatefile"
)

const defaultConfigFile = "config.yaml"

func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "gymalloc",
		Short: "Monthly gymnasium allocation engine",
	}

	var configFlag, dataTagFlag, dataDirFlag, outFlag, logFlag string
	var noGantt bool

	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Allocate the gym for one month and materialize the schedule",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(configFlag, dataTagFlag, dataDirFlag, outFlag, logFlag, noGantt)
		},
	}
	generateCmd.Flags().StringVar(&configFlag, "config", "", "configuration document (default: ./config.yaml)")
	generateCmd.Flags().StringVar(&dataTagFlag, "data-tag", "", "input folder tag under data/ (default: derived from config year/month)")
	generateCmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "override input folder directly")
	generateCmd.Flags().StringVar(&outFlag, "out", "output", "output root; per-run outputs go into <out>/<YYYY-MM>/")
	generateCmd.Flags().StringVar(&logFlag, "log", "", "log file location (default: stderr text log)")
	generateCmd.Flags().BoolVar(&noGantt, "no-gantt", false, "suppress the auxiliary zone-load PNG chart")

	var validateConfigFlag string
	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Validate a materialized schedule against a config's hard constraints",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(validateConfigFlag, dataTagFlag, dataDirFlag, args[0])
		},
	}
	validateCmd.Flags().StringVar(&validateConfigFlag, "config", "", "configuration document (default: ./config.yaml)")
	validateCmd.Flags().StringVar(&dataTagFlag, "data-tag", "", "input folder tag under data/ (default: derived from config year/month)")
	validateCmd.Flags().StringVar(&dataDirFlag, "data-dir", "", "override input folder directly")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter config.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "output path for the config file")

	rootCmd.AddCommand(generateCmd, validateCmd, initCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// dataTag returns the explicit --data-tag, or one derived from the
// config's year/month, per SPEC_FULL.md's resolve_ym-style fallback.
func dataTag(cfg *config.Config, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return fmt.Sprintf("%04d-%02d", cfg.Year, cfg.Month)
}

func resolveDataDir(cfg *config.Config, dataTagFlag, dataDirFlag string) string {
	if dataDirFlag != "" {
		return dataDirFlag
	}
	return filepath.Join("data", dataTag(cfg, dataTagFlag))
}

func newLogger(logPath string) (*slog.Logger, func(), error) {
	if logPath == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, nil)), func() {}, nil
	}
	f, err := os.Create(logPath)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, nil))
	return logger, func() { f.Close() }, nil
}

func runGenerate(configFlag, dataTagFlag, dataDirFlag, outFlag, logFlag string, noGantt bool) error {
	configPath, err := resolveConfigPath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := resolveDataDir(cfg, dataTagFlag, dataDirFlag)
	prefsPath := filepath.Join(dataDir, "preferences.json")
	eventsPath := filepath.Join(dataDir, "events.json")

	outDir := filepath.Join(outFlag, dataTag(cfg, dataTagFlag))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	logger, closeLog, err := newLogger(logFlag)
	if err != nil {
		return err
	}
	defer closeLog()

	rc := runctx.New(logger, outDir)
	rc.Logger.Info("run starting", "run_id", rc.RunID, "config", configPath, "data_dir", dataDir, "out_dir", outDir)

	days := calendar.Build(cfg)

	rawPrefs, err := intake.LoadPreferencesFile(prefsPath)
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	rawEvents, err := intake.LoadEventsFile(eventsPath)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	prefs := intake.NormalizePreferences(rc, cfg, days, rawPrefs)
	validEvents := intake.ValidateEvents(rc, cfg, days, rawEvents)

	teams := intake.TeamUniverse(prefs, validEvents)
	eventIdx := events.Build(days, validEvents)
	m := model.Build(cfg, days, teams, prefs, eventIdx)

	for _, dayOfMonth := range m.SingleTeamNoBlockDays() {
		rc.Warn(runctx.Warning{
			Index:  -1,
			Date:   fmt.Sprintf("day %d", dayOfMonth),
			Field:  "availability",
			Reason: "pref_single_team_no_block",
		})
	}
	rc.FlushWarnings()

	state, status, err := solver.Solve(m)
	if err != nil {
		return fmt.Errorf("no feasible schedule found: %w", err)
	}
	rc.Logger.Info("solver finished", "status", status.String())

	if err := snapshotInputs(rc, configPath, prefsPath, eventsPath); err != nil {
		return fmt.Errorf("snapshotting inputs: %w", err)
	}

	dayRows := materialize.BuildDayRows(m, state)
	teamRows := materialize.BuildTeamRows(m, state)
	summaryRows := materialize.BuildSummaryRows(m, state)

	csvPath := filepath.Join(outDir, "schedule.csv")
	if err := materialize.WriteScheduleCSV(csvPath, dayRows); err != nil {
		return fmt.Errorf("writing schedule csv: %w", err)
	}

	workbook, err := materialize.GenerateWorkbook(dayRows, teamRows, summaryRows)
	if err != nil {
		return fmt.Errorf("generating workbook: %w", err)
	}
	xlsxPath := filepath.Join(outDir, "schedule.xlsx")
	if err := workbook.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}

	if !noGantt {
		chartPath := filepath.Join(outDir, "zone_chart.png")
		if err := materialize.WriteZoneChartPNG(chartPath, summaryRows); err != nil {
			return fmt.Errorf("writing zone chart: %w", err)
		}
	}

	breakdown := objective.Score(state)
	rc.Logger.Info("objective breakdown",
		"participation", breakdown.Participation,
		"daily_spread", breakdown.DailySpread,
		"daily_spread_event", breakdown.DailySpreadEvent,
		"monthly_fairness", breakdown.MonthlyFairness,
		"morning_spread", breakdown.MorningSpread,
		"zone_fairness", breakdown.ZoneFairness,
		"idle_slots", breakdown.IdleSlots,
		"total", breakdown.Total,
	)

	fmt.Printf("✓ Schedule written to %s and %s\n", csvPath, xlsxPath)
	return nil
}

func runValidate(configFlag, dataTagFlag, dataDirFlag, schedulePath string) error {
	configPath, err := resolveConfigPath(configFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dataDir := resolveDataDir(cfg, dataTagFlag, dataDirFlag)
	rawPrefs, err := intake.LoadPreferencesFile(filepath.Join(dataDir, "preferences.json"))
	if err != nil {
		return fmt.Errorf("loading preferences: %w", err)
	}
	rawEvents, err := intake.LoadEventsFile(filepath.Join(dataDir, "events.json"))
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	rc := runctx.New(slog.New(slog.NewTextHandler(io.Discard, nil)), "")
	days := calendar.Build(cfg)
	prefs := intake.NormalizePreferences(rc, cfg, days, rawPrefs)
	validEvents := intake.ValidateEvents(rc, cfg, days, rawEvents)
	teams := intake.TeamUniverse(prefs, validEvents)
	eventIdx := events.Build(days, validEvents)
	m := model.Build(cfg, days, teams, prefs, eventIdx)

	violations, err := validatefile.Validate(schedulePath, m)
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}

	for _, v := range violations {
		fmt.Printf("✗ %s violation on day %d (%s): %s\n", v.Constraint, v.DayOfMonth, v.Team, v.Detail)
	}
	if len(violations) > 0 {
		return fmt.Errorf("%d hard-constraint violations found", len(violations))
	}
	fmt.Println("✓ Schedule satisfies every hard constraint")
	return nil
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}
	if err := os.WriteFile(outputPath, []byte(configTemplate), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

// snapshotInputs copies the three documents a run actually read into
// <out>/<YYYY-MM>/inputs/, for provenance when multiple runs land in the
// same month folder.
func snapshotInputs(rc *runctx.Context, paths ...string) error {
	inputsDir := filepath.Join(rc.OutDir, "inputs")
	if err := os.MkdirAll(inputsDir, 0o755); err != nil {
		return err
	}
	for _, src := range paths {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("reading %s: %w", src, err)
		}
		dst := filepath.Join(inputsDir, filepath.Base(src))
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dst, err)
		}
	}
	return nil
}

const configTemplate = `# gymalloc configuration
# =======================
# Defines one month's gymnasium allocation run.

year: 2026
month: 1
min_slots: 3          # minimum contiguous 30-minute slots a session must span
max_solve_seconds: 30  # wall-clock budget for the solver

# availability: day-of-month -> [start1, end1, start2, end2].
# Each entry is an "HH:MM" string or null (no window).
# A day absent from this table is a configuration error.
availability:
  1: ["18:00", "21:00", null, null]
  2: ["09:00", "12:00", "18:00", "21:00"]
  # ... one entry required for every day of the target month

# preferences.json (team -> [YYYY-MM-DD, ...]) and events.json
# ([{team, date, start, duration_hours, note}]) live under
# data/<data-tag>/, where data-tag defaults to "<year>-<month>".
`
