package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdkberry/migrating-to-aimms/internal/report"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
	"github.com/mdkberry/migrating-to-aimms/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <project>",
	Short: "Validate an AIMMS project of unknown provenance",
	Long: `Validate runs the full check pipeline (structure, schema, content,
media, cross-consistency, mapping parity) against any project directory.
It shares no state with migration and trusts nothing about how the
project was produced.

Exit status is zero iff validation finds no errors; warnings are
reported but never fail a project.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("report", "", "write the markdown report to this file (default stdout)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	sc, err := loadSchema()
	if err != nil {
		return err
	}

	vr, err := validate.Run(args[0], sc)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, _ := cmd.Flags().GetString("report"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
		defer file.Close()
		out = file
	}
	if err := report.WriteValidationReport(out, vr.Project, vr.Groups); err != nil {
		return err
	}

	if !vr.Passed() {
		return fmt.Errorf("validation failed: %d errors, %d warnings", vr.Errors, vr.Warnings)
	}
	util.SuccessLog("Project valid: %d warnings", vr.Warnings)
	return nil
}
