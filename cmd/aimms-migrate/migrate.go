package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdkberry/migrating-to-aimms/internal/migrate"
	"github.com/mdkberry/migrating-to-aimms/internal/report"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
	"github.com/mdkberry/migrating-to-aimms/internal/validate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy database project into a new AIMMS project",
	Long: `Migrate reads a legacy project (data/shots.db plus media/<shot_name>/
folders), assigns surrogate shot ids, relocates media into id-keyed
folders, writes the shot-name mapping pair, and validates the result.

The source project is never modified. A failed shot does not roll back
shots migrated before it; re-running against the same target resumes at
shot granularity.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("source", "", "legacy project directory (required)")
	migrateCmd.Flags().String("target", "", "new project directory (required)")
	migrateCmd.MarkFlagRequired("source")
	migrateCmd.MarkFlagRequired("target")

	viper.BindPFlag("source", migrateCmd.Flags().Lookup("source"))
	viper.BindPFlag("target", migrateCmd.Flags().Lookup("target"))
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourcePath, _ := cmd.Flags().GetString("source")
	targetPath, _ := cmd.Flags().GetString("target")

	source, err := migrate.OpenLegacy(sourcePath)
	if err != nil {
		return err
	}
	defer source.Close()

	return executeMigration(source, targetPath)
}

// executeMigration runs a migration from any source, then validates the
// produced project. Exit status is zero iff both finished without a
// single error entry.
func executeMigration(source migrate.Source, target string) error {
	sc, err := loadSchema()
	if err != nil {
		return err
	}

	events, err := report.NewEventLogger(filepath.Join(target, "logs"), report.EventInfo)
	if err != nil {
		util.WarnLog("Event log unavailable: %v", err)
		events = report.NullLogger()
	}
	defer events.Close()

	collector := report.NewCollector(events)
	m := migrate.New(source, target, sc, collector, events)

	result, err := m.Run()
	if err != nil {
		return err
	}

	vr, err := validate.Run(target, sc)
	if err != nil {
		return err
	}
	if path, werr := writeValidationReport(target, vr); werr != nil {
		util.WarnLog("Could not write validation report: %v", werr)
	} else {
		util.InfoLog("Validation report: %s", path)
	}

	if result.Failed > 0 || !collector.Passed() || !vr.Passed() {
		return fmt.Errorf("migration finished with %d failed shots, %d migration errors, %d validation errors",
			result.Failed, collector.ErrorCount(), vr.Errors)
	}

	util.SuccessLog("Project migrated and validated: %s", target)
	return nil
}

// writeValidationReport renders the markdown report into the project's
// logs directory
func writeValidationReport(target string, vr *validate.Report) (string, error) {
	path := filepath.Join(target, "logs", "validation_report.md")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := report.WriteValidationReport(file, vr.Project, vr.Groups); err != nil {
		return "", err
	}
	return path, nil
}
