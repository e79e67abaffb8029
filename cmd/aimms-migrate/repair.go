package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/project"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

var repairCmd = &cobra.Command{
	Use:   "repair-thumbnails <project>",
	Short: "Generate missing video thumbnails with ffmpeg",
	Long: `Repair-thumbnails scans the project's final-video takes for ones whose
workflow thumbnail is missing on disk and regenerates them with ffmpeg
(one frame five seconds in, scaled to width 320).

A regenerated thumbnail with no take row gets one inserted, sharing its
video's sequence number, so the project validates cleanly afterwards.
Zero-byte placeholder videos are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepairThumbnails,
}

func init() {
	rootCmd.AddCommand(repairCmd)

	repairCmd.Flags().Bool("dry-run", false, "list missing thumbnails without generating them")
}

func runRepairThumbnails(cmd *cobra.Command, args []string) error {
	layout := project.NewLayout(args[0])
	st, err := store.Open(layout.DatabasePath())
	if err != nil {
		return fmt.Errorf("%w: cannot open project database: %v", util.ErrConfiguration, err)
	}
	defer st.Close()

	takes, err := st.AllTakes()
	if err != nil {
		return err
	}
	tasks := media.MissingThumbnails(layout.Root, takes)
	if len(tasks) == 0 {
		util.SuccessLog("No missing thumbnails")
		return nil
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		for _, task := range tasks {
			util.InfoLog("Missing: %s (from %s)", task.DestRel, task.Video.FilePath)
		}
		util.InfoLog("%d thumbnails would be generated", len(tasks))
		return nil
	}

	if !media.CheckFFmpegAvailable() {
		return fmt.Errorf("%w: ffmpeg not found in PATH", util.ErrConfiguration)
	}

	generated, failed := 0, 0
	for _, task := range tasks {
		src := util.FromProjectPath(layout.Root, task.Video.FilePath)
		dest := util.FromProjectPath(layout.Root, task.DestRel)
		if err := media.GenerateThumbnail(src, dest); err != nil {
			util.ErrorLog("Failed to generate %s: %v", task.DestRel, err)
			failed++
			continue
		}
		if !task.HasRow {
			take := &store.Take{
				TakeID:         uuid.NewString(),
				ShotID:         task.Video.ShotID,
				TakeType:       store.TakeVideoWorkflow,
				FilePath:       task.DestRel,
				SequenceNumber: task.Video.SequenceNumber,
				CreatedDate:    project.UTCTimestamp(),
			}
			if err := st.AddTake(take); err != nil {
				util.ErrorLog("Generated %s but could not record it: %v", task.DestRel, err)
				failed++
				continue
			}
		}
		util.DebugLog("Generated %s", task.DestRel)
		generated++
	}

	if failed > 0 {
		return fmt.Errorf("generated %d thumbnails, %d failed", generated, failed)
	}
	util.SuccessLog("Generated %d thumbnails", generated)
	return nil
}
