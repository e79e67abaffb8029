package main

import (
	"github.com/spf13/cobra"

	"github.com/mdkberry/migrating-to-aimms/internal/migrate"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a tabular (CSV) project into a new AIMMS project",
	Long: `Import builds an AIMMS project without a legacy database. Shots come
from a CSV shot list (order_number and shot_name columns are required,
other columns carry over as shot attributes) and takes are derived from
image_storyboard/<shot>/ and video_storyboard/<shot>/ folders next to
the CSV. Asset folders (characters/, locations/, other/) are imported
when present.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().String("source", "", "import folder with the shot list CSV (required)")
	importCmd.Flags().String("target", "", "new project directory (required)")
	importCmd.MarkFlagRequired("source")
	importCmd.MarkFlagRequired("target")
}

func runImport(cmd *cobra.Command, args []string) error {
	sourcePath, _ := cmd.Flags().GetString("source")
	targetPath, _ := cmd.Flags().GetString("target")

	source, err := migrate.OpenCSV(sourcePath)
	if err != nil {
		return err
	}

	return executeMigration(source, targetPath)
}
