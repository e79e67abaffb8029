package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks before a migration",
	Long: `Run diagnostic checks to ensure aimms-migrate can operate correctly.

This command checks:
- SQLite driver availability and version
- Schema descriptor readability
- Source project readability (when --source is given)
- Target location writability (when --target is given)

Use this command to troubleshoot issues before running a migration.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().String("source", "", "source project to check (optional)")
	doctorCmd.Flags().String("target", "", "target location to check (optional)")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	util.InfoLog("=== aimms-migrate doctor ===")

	results := []checkResult{
		checkSQLite(),
		checkSchemaDescriptor(),
	}

	if src, _ := cmd.Flags().GetString("source"); src != "" {
		results = append(results, checkSource(src))
	}
	if target, _ := cmd.Flags().GetString("target"); target != "" {
		results = append(results, checkTarget(target))
	}

	hasErrors := false
	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		switch {
		case r.error:
			util.ErrorLog("%s", line)
		case r.warning:
			util.WarnLog("%s", line)
		default:
			util.InfoLog("%s", line)
		}
	}

	if hasErrors {
		return fmt.Errorf("diagnostics found problems")
	}
	util.SuccessLog("All checks passed")
	return nil
}

func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{name: "SQLite", message: "driver not functional", error: true}
	}
	return checkResult{name: "SQLite", message: version}
}

func checkSchemaDescriptor() checkResult {
	path := viper.GetString("schema")
	if path == "" {
		if _, err := loadSchema(); err != nil {
			return checkResult{name: "Schema descriptor", message: err.Error(), error: true}
		}
		return checkResult{name: "Schema descriptor", message: "built-in AIMMS 1.0"}
	}
	if _, err := loadSchema(); err != nil {
		return checkResult{name: "Schema descriptor", message: fmt.Sprintf("%s: %v", path, err), error: true}
	}
	return checkResult{name: "Schema descriptor", message: path}
}

func checkSource(src string) checkResult {
	info, err := os.Stat(src)
	if err != nil {
		return checkResult{name: "Source project", message: err.Error(), error: true}
	}
	if !info.IsDir() {
		return checkResult{name: "Source project", message: "not a directory", error: true}
	}

	// A legacy project needs its database; a CSV import folder a shot list
	dbPath := filepath.Join(src, "data", "shots.db")
	csvs, _ := filepath.Glob(filepath.Join(src, "*.csv"))
	if _, err := os.Stat(dbPath); err == nil {
		return checkResult{name: "Source project", message: "legacy database found"}
	}
	if len(csvs) > 0 {
		return checkResult{name: "Source project", message: "shot list CSV found"}
	}
	return checkResult{name: "Source project", message: "neither data/shots.db nor a shot list CSV found", warning: true}
}

func checkTarget(target string) checkResult {
	if info, err := os.Stat(target); err == nil {
		if !info.IsDir() {
			return checkResult{name: "Target location", message: "exists and is not a directory", error: true}
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			return checkResult{name: "Target location", message: err.Error(), error: true}
		}
		if len(entries) > 0 {
			return checkResult{name: "Target location", message: "directory not empty; re-run resumes into it", warning: true}
		}
		return checkResult{name: "Target location", message: "empty directory"}
	}

	parent := filepath.Dir(target)
	probe := filepath.Join(parent, ".aimms-doctor-probe")
	if err := os.WriteFile(probe, nil, 0644); err != nil {
		return checkResult{name: "Target location", message: fmt.Sprintf("parent not writable: %v", err), error: true}
	}
	os.Remove(probe)
	return checkResult{name: "Target location", message: "will be created"}
}
