// Package project defines the canonical AIMMS 1.0 project layout and the
// shot-name-mapping pair that records how legacy names map to surrogate
// ids. Both migration paths scaffold through this package, and the
// validation engine checks against the same layout definition.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// AssetCategories are the fixed asset subdirectories under media/
var AssetCategories = []string{"characters", "locations", "other"}

// Layout resolves every canonical path of a project from its root
type Layout struct {
	Root string
}

// NewLayout returns the layout for a project root
func NewLayout(root string) *Layout {
	return &Layout{Root: root}
}

func (l *Layout) DataDir() string   { return filepath.Join(l.Root, "data") }
func (l *Layout) CSVDir() string    { return filepath.Join(l.Root, "data", "csv") }
func (l *Layout) BackupDir() string { return filepath.Join(l.Root, "data", "backup") }
func (l *Layout) SavesDir() string  { return filepath.Join(l.Root, "data", "saves") }
func (l *Layout) MediaDir() string  { return filepath.Join(l.Root, "media") }
func (l *Layout) LogsDir() string   { return filepath.Join(l.Root, "logs") }

// DatabasePath is the shot database inside data/
func (l *Layout) DatabasePath() string { return filepath.Join(l.Root, "data", "shots.db") }

// ConfigPath is the project_config.json at the project root
func (l *Layout) ConfigPath() string { return filepath.Join(l.Root, "project_config.json") }

// RootMappingPath is the primary copy of the shot-name mapping
func (l *Layout) RootMappingPath() string { return filepath.Join(l.Root, "shot_name_mapping.json") }

// DataMappingPath is the redundant copy inside data/
func (l *Layout) DataMappingPath() string {
	return filepath.Join(l.Root, "data", "shot_name_mapping.json")
}

// ProjectLogPath is the host application's log file, created empty
func (l *Layout) ProjectLogPath() string { return filepath.Join(l.Root, "logs", "project_log.log") }

// MigrationLogPath is where the migration run log is written
func (l *Layout) MigrationLogPath() string { return filepath.Join(l.Root, "logs", "migration.log") }

// ShotMediaDir is the media folder for one surrogate shot id
func (l *Layout) ShotMediaDir(shotID int64) string {
	return filepath.Join(l.Root, "media", strconv.FormatInt(shotID, 10))
}

// AssetDir is the media folder for one asset category
func (l *Layout) AssetDir(category string) string {
	return filepath.Join(l.Root, "media", category)
}

// Config is the project_config.json contents
type Config struct {
	ProjectName string `json:"project_name"`
	Version     string `json:"version"`
	Created     string `json:"created"`
}

// Scaffold creates the full directory skeleton, project_config.json, and
// an empty project log. Safe to call on a partially-built project; it
// never truncates existing files.
func (l *Layout) Scaffold(projectName string) error {
	dirs := []string{
		l.DataDir(), l.CSVDir(), l.BackupDir(), l.SavesDir(),
		l.MediaDir(), l.LogsDir(),
	}
	for _, cat := range AssetCategories {
		dirs = append(dirs, l.AssetDir(cat))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: cannot create %s: %v", util.ErrConfiguration, dir, err)
		}
	}

	if _, err := os.Stat(l.ConfigPath()); os.IsNotExist(err) {
		cfg := Config{
			ProjectName: projectName,
			Version:     "1.0",
			Created:     UTCTimestamp(),
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode project config: %w", err)
		}
		if err := util.WriteFileAtomic(l.ConfigPath(), append(data, '\n'), 0644); err != nil {
			return err
		}
	}

	if _, err := os.Stat(l.ProjectLogPath()); os.IsNotExist(err) {
		if err := os.WriteFile(l.ProjectLogPath(), nil, 0644); err != nil {
			return fmt.Errorf("failed to create project log: %w", err)
		}
	}

	return nil
}

// UTCTimestamp renders the current time in the project's canonical
// ISO-8601 UTC form with a Z suffix.
func UTCTimestamp() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}
