package report

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// RunSummary carries the counters of one migration run
type RunSummary struct {
	Source        string
	Target        string
	ShotsMigrated int
	ShotsFailed   int
	TakesCreated  int
	AssetsCreated int
	FilesCopied   int
	BytesCopied   int64
	Started       time.Time
	Finished      time.Time
}

// WriteMigrationLog renders the plain-text migration log: entries
// grouped by severity, the run summary, and the final verdict.
func WriteMigrationLog(w io.Writer, summary *RunSummary, c *Collector) error {
	fmt.Fprintf(w, "AIMMS Migration Log\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "Source:    %s\n", summary.Source)
	fmt.Fprintf(w, "Target:    %s\n", summary.Target)
	fmt.Fprintln(w)

	for _, level := range []Level{LevelError, LevelWarning, LevelInfo} {
		entries := c.ByLevel(level)
		fmt.Fprintf(w, "=== %s (%d) ===\n", level, len(entries))
		for _, e := range entries {
			if e.Path != "" {
				fmt.Fprintf(w, "[%s] %s: %s\n", e.Category, e.Path, e.Message)
			} else {
				fmt.Fprintf(w, "[%s] %s\n", e.Category, e.Message)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Shots migrated: %d\n", summary.ShotsMigrated)
	fmt.Fprintf(w, "Shots failed:   %d\n", summary.ShotsFailed)
	fmt.Fprintf(w, "Takes created:  %d\n", summary.TakesCreated)
	fmt.Fprintf(w, "Assets created: %d\n", summary.AssetsCreated)
	fmt.Fprintf(w, "Files copied:   %d (%s)\n", summary.FilesCopied, humanize.Bytes(uint64(summary.BytesCopied)))
	if !summary.Started.IsZero() && !summary.Finished.IsZero() {
		fmt.Fprintf(w, "Duration:       %s\n", summary.Finished.Sub(summary.Started).Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	if c.Passed() && summary.ShotsFailed == 0 {
		fmt.Fprintln(w, "Result: SUCCESS")
	} else {
		fmt.Fprintln(w, "Result: FAILED")
	}
	return nil
}

// Group is one check group of a validation run, for the markdown report
type Group struct {
	Name    string
	Entries []Entry
}

// Passed reports whether the group holds zero errors
func (g *Group) Passed() bool {
	for _, e := range g.Entries {
		if e.Level == LevelError {
			return false
		}
	}
	return true
}

func (g *Group) count(level Level) int {
	n := 0
	for _, e := range g.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// WriteValidationReport renders the markdown validation report: verdict,
// executive summary, then one section per check group.
func WriteValidationReport(w io.Writer, project string, groups []Group) error {
	errors, warnings := 0, 0
	for i := range groups {
		errors += groups[i].count(LevelError)
		warnings += groups[i].count(LevelWarning)
	}
	passed := errors == 0

	fmt.Fprintf(w, "# Project Validation Report\n\n")
	fmt.Fprintf(w, "**Project:** %s  \n", project)
	fmt.Fprintf(w, "**Generated:** %s  \n", time.Now().UTC().Format("2006-01-02T15:04:05Z"))
	fmt.Fprintf(w, "**Result:** %s\n\n", verdict(passed))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "%d errors and %d warnings across %d check groups.\n\n", errors, warnings, len(groups))

	fmt.Fprintf(w, "| Group | Result | Errors | Warnings |\n")
	fmt.Fprintf(w, "|-------|--------|--------|----------|\n")
	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(w, "| %s | %s | %d | %d |\n", g.Name, verdict(g.Passed()), g.count(LevelError), g.count(LevelWarning))
	}
	fmt.Fprintln(w)

	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(w, "## %s - %s\n\n", g.Name, verdict(g.Passed()))
		if len(g.Entries) == 0 {
			fmt.Fprintf(w, "No findings.\n\n")
			continue
		}
		for _, e := range g.Entries {
			if e.Path != "" {
				fmt.Fprintf(w, "- **%s** `%s`: %s\n", e.Level, e.Path, e.Message)
			} else {
				fmt.Fprintf(w, "- **%s** %s\n", e.Level, e.Message)
			}
		}
		fmt.Fprintln(w)
	}

	if !passed {
		fmt.Fprintf(w, "## Recommendations\n\n")
		fmt.Fprintf(w, "Fix the errors above and re-run validation. Warnings are advisory and do not fail the project.\n")
	}
	return nil
}

func verdict(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "FAILED"
}
