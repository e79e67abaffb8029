package validate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/project"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// referencedPaths collects every file path a take or asset row records.
// Query failures are reported by the groups that read those tables.
func referencedPaths(st *store.Store) map[string]bool {
	referenced := make(map[string]bool)
	if takes, err := st.AllTakes(); err == nil {
		for _, take := range takes {
			referenced[take.FilePath] = true
		}
	}
	if assets, err := st.AllAssets(); err == nil {
		for _, asset := range assets {
			referenced[asset.FilePath] = true
		}
	}
	return referenced
}

// checkMedia walks the media tree and verifies shot folders and asset
// folders hold what the naming conventions promise. Zero-byte files with
// a referencing row are left to cross-consistency, which warns once per
// file; the walk only flags unreferenced ones.
func checkMedia(layout *project.Layout, st *store.Store, referenced map[string]bool, f *findings) {
	shots, err := st.AllShots()
	if err != nil {
		f.errorf("shots", "cannot read shots: %v", err)
		return
	}
	shotIDs := make(map[int64]bool, len(shots))
	for _, s := range shots {
		shotIDs[s.ID] = true
	}

	entries, err := os.ReadDir(layout.MediaDir())
	if err != nil {
		f.errorf(layout.MediaDir(), "cannot read media directory: %v", err)
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir() && media.IsAssetCategory(name):
			checkAssetFolder(layout, name, referenced, f)
		case entry.IsDir():
			id, err := strconv.ParseInt(name, 10, 64)
			if err != nil {
				f.warnf("media/"+name, "unknown entry in media directory")
				continue
			}
			if !shotIDs[id] {
				f.warnf("media/"+name, "folder does not match any shot")
			}
			checkShotFolder(layout, id, referenced, f)
		default:
			f.warnf("media/"+name, "stray file in media directory")
		}
	}
}

// checkShotFolder verifies one shot's media folder: every video has a
// same-stem thumbnail, thumbnails have videos, and nothing unexpected
// hides inside.
func checkShotFolder(layout *project.Layout, shotID int64, referenced map[string]bool, f *findings) {
	dir := layout.ShotMediaDir(shotID)
	rel := func(name string) string {
		return util.ToProjectPath("media", strconv.FormatInt(shotID, 10), name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		f.errorf(rel(""), "cannot read shot folder: %v", err)
		return
	}

	videoStems := make(map[string]string) // stem → filename
	imageStems := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() {
			f.warnf(rel(e.Name()), "unexpected subdirectory in shot folder")
			continue
		}
		name := e.Name()
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		switch {
		case media.IsVideo(name):
			videoStems[stem] = name
		case media.IsImage(name):
			imageStems[stem] = true
		default:
			f.warnf(rel(name), "unknown file type in shot folder")
		}

		if util.IsZeroSize(filepath.Join(dir, name)) && !referenced[rel(name)] {
			f.warnf(rel(name), "zero-byte file")
		}
	}

	for stem, videoName := range videoStems {
		if imageStems[stem] {
			continue
		}
		if util.IsZeroSize(filepath.Join(dir, videoName)) {
			// A placeholder video legitimately has no rendered thumbnail
			f.warnf(rel(videoName), "placeholder video without thumbnail")
		} else {
			f.errorf(rel(videoName), "video missing same-stem thumbnail")
		}
	}
	for stem := range imageStems {
		if strings.HasPrefix(stem, "video_") && videoStems[stem] == "" {
			f.warnf(rel(stem), "orphaned video thumbnail")
		}
	}
}

// checkAssetFolder verifies one asset category folder
func checkAssetFolder(layout *project.Layout, category string, referenced map[string]bool, f *findings) {
	dir := layout.AssetDir(category)
	entries, err := os.ReadDir(dir)
	if err != nil {
		f.errorf(util.ToProjectPath("media", category), "cannot read asset folder: %v", err)
		return
	}

	for _, e := range entries {
		rel := util.ToProjectPath("media", category, e.Name())
		if e.IsDir() {
			f.warnf(rel, "unexpected subdirectory in asset folder")
			continue
		}
		if !media.IsImage(e.Name()) && !media.IsVideo(e.Name()) {
			f.warnf(rel, "unknown asset file type")
		}
		if util.IsZeroSize(filepath.Join(dir, e.Name())) && !referenced[rel] {
			f.warnf(rel, "zero-byte file")
		}
	}
}

// checkCross verifies database and filesystem agree: every recorded path
// exists on disk, every disk file is recorded, every shot has its media
// folder.
func checkCross(layout *project.Layout, st *store.Store, f *findings) {
	referenced := make(map[string]bool)

	takes, err := st.AllTakes()
	if err != nil {
		f.errorf("takes", "cannot read takes: %v", err)
		return
	}
	for _, take := range takes {
		referenced[take.FilePath] = true
		abs := util.FromProjectPath(layout.Root, take.FilePath)
		if _, err := os.Stat(abs); err != nil {
			f.errorf(take.FilePath, "take file missing on disk")
		} else if util.IsZeroSize(abs) {
			f.warnf(take.FilePath, "take references zero-byte file")
		}
	}

	assets, err := st.AllAssets()
	if err != nil {
		f.errorf("assets", "cannot read assets: %v", err)
		return
	}
	for _, asset := range assets {
		referenced[asset.FilePath] = true
		abs := util.FromProjectPath(layout.Root, asset.FilePath)
		if _, err := os.Stat(abs); err != nil {
			f.errorf(asset.FilePath, "asset file missing on disk")
		} else if util.IsZeroSize(abs) {
			f.warnf(asset.FilePath, "asset references zero-byte file")
		}
	}

	// Reverse direction: everything on disk must be referenced
	walkErr := filepath.WalkDir(layout.MediaDir(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(layout.Root, path)
		if err != nil {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		if referenced[slashRel] {
			return nil
		}
		parts := strings.Split(slashRel, "/")
		inAssetDir := len(parts) >= 2 && media.IsAssetCategory(parts[1])
		if inAssetDir && strings.Contains(strings.ToLower(d.Name()), "thumbnail") {
			f.infof(slashRel, "unreferenced preview thumbnail")
		} else {
			f.warnf(slashRel, "orphaned file not referenced by any row")
		}
		return nil
	})
	if walkErr != nil {
		f.errorf(util.ToProjectPath("media"), "media scan failed: %v", walkErr)
	}

	shots, err := st.AllShots()
	if err != nil {
		f.errorf("shots", "cannot read shots: %v", err)
		return
	}
	for _, shot := range shots {
		if _, err := os.Stat(layout.ShotMediaDir(shot.ID)); err != nil {
			f.warnf(util.ToProjectPath("media", strconv.FormatInt(shot.ID, 10)),
				"shot %q has no media folder", shot.ShotName)
		}
	}
}

// checkMapping verifies the mapping pair is intact and covers exactly
// the database's shots.
func checkMapping(layout *project.Layout, st *store.Store, f *findings) {
	mapping, err := layout.ReadMappingPair()
	if err != nil {
		f.errorf(layout.RootMappingPath(), "%v", err)
		if mapping == nil {
			return
		}
	}

	shots, err := st.AllShots()
	if err != nil {
		f.errorf("shots", "cannot read shots: %v", err)
		return
	}

	byName := make(map[string]int64, len(shots))
	for _, shot := range shots {
		byName[shot.ShotName] = shot.ID
	}

	for name, id := range mapping.Mapping {
		dbID, ok := byName[name]
		if !ok {
			f.errorf(name, "mapping entry has no matching shot")
			continue
		}
		if dbID != id {
			f.errorf(name, "mapping id %d disagrees with database id %d", id, dbID)
		}
	}
	for name, id := range byName {
		if _, ok := mapping.Mapping[name]; !ok {
			f.errorf(name, "shot (id %d) missing from mapping", id)
		}
	}
}
