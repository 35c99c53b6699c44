// Package runctx provides the Run Context value threaded explicitly
// through the pipeline: logger, accumulated validation warnings, run
// identity, and the output directory. It replaces the scattered
// print-as-you-go / global-state style spec.md §9 calls out for
// replacement.
package runctx

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Warning is a structured validation warning: either an event or
// preference entry dropped during intake, carrying enough detail to
// locate the offending record (spec.md §4.2, §7), or a day-level anomaly
// found after model building (Index -1, nothing dropped).
type Warning struct {
	Index  int    // position of the record in its source document, -1 if n/a
	Team   string // team name, if known
	Date   string // ISO date string, if known
	Field  string // offending field name
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("record %d (team=%q date=%q field=%q): %s", w.Index, w.Team, w.Date, w.Field, w.Reason)
}

// Context carries everything the pipeline stages need that isn't pure
// input data: logging, warning collection, and run identity.
type Context struct {
	Logger   *slog.Logger
	RunID    uuid.UUID
	OutDir   string
	Warnings []Warning
}

// New creates a Context with a fresh run ID and the given logger and
// output directory.
func New(logger *slog.Logger, outDir string) *Context {
	return &Context{
		Logger: logger,
		RunID:  uuid.New(),
		OutDir: outDir,
	}
}

// Warn records a structured warning without emitting it immediately;
// FlushWarnings emits the whole block at once, matching spec.md §7's
// "aggregate counts are reported at the end of validation" policy.
func (c *Context) Warn(w Warning) {
	c.Warnings = append(c.Warnings, w)
}

// FlushWarnings logs every accumulated warning as one block and returns
// the count emitted.
func (c *Context) FlushWarnings() int {
	if len(c.Warnings) == 0 {
		c.Logger.Info("validation complete", "warnings", 0)
		return 0
	}
	c.Logger.Warn("validation warnings", "count", len(c.Warnings))
	for _, w := range c.Warnings {
		c.Logger.Warn("dropped record",
			"index", w.Index,
			"team", w.Team,
			"date", w.Date,
			"field", w.Field,
			"reason", w.Reason,
		)
	}
	return len(c.Warnings)
}
