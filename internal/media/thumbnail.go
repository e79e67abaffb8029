package media

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// ThumbnailTask is one final video whose workflow thumbnail needs
// (re)generating. HasRow is true when the takes table already records
// the thumbnail and only the file is gone.
type ThumbnailTask struct {
	Video   store.Take
	DestRel string
	HasRow  bool
}

// MissingThumbnails scans final-video take rows for ones whose same-stem
// thumbnail file is absent on disk. Zero-byte placeholder videos are
// skipped: there is no frame to extract, and validation already flags
// them.
func MissingThumbnails(root string, takes []store.Take) []ThumbnailTask {
	thumbRows := make(map[string]bool)
	for _, take := range takes {
		if take.TakeType == store.TakeVideoWorkflow {
			thumbRows[take.FilePath] = true
		}
	}

	var tasks []ThumbnailTask
	for _, take := range takes {
		if take.TakeType != store.TakeFinalVideo {
			continue
		}
		destRel := strings.TrimSuffix(take.FilePath, path.Ext(take.FilePath)) + ".png"
		if _, err := os.Stat(util.FromProjectPath(root, destRel)); err == nil {
			continue
		}
		if util.IsZeroSize(util.FromProjectPath(root, take.FilePath)) {
			continue
		}
		tasks = append(tasks, ThumbnailTask{Video: take, DestRel: destRel, HasRow: thumbRows[destRel]})
	}
	return tasks
}

// CheckFFmpegAvailable checks if ffmpeg is available in PATH
func CheckFFmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// GenerateThumbnail extracts one frame five seconds into the video,
// scaled to width 320, and writes it to outPath.
func GenerateThumbnail(videoPath, outPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return util.ErrNotFound
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", videoPath,
		"-ss", "5",
		"-vframes", "1",
		"-vf", "scale=320:-1",
		outPath,
	)
	if _, err := cmd.Output(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("ffmpeg failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("%w: ffmpeg produced no thumbnail for %s", util.ErrMediaMigration, videoPath)
	}
	return nil
}
