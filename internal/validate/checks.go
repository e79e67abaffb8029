package validate

import (
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/mdkberry/migrating-to-aimms/internal/project"
	"github.com/mdkberry/migrating-to-aimms/internal/schema"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
)

// checkStructure verifies the project skeleton. Required paths missing
// are errors; optional conveniences missing are informational.
func checkStructure(layout *project.Layout, f *findings) {
	required := []struct {
		path string
		dir  bool
	}{
		{layout.DataDir(), true},
		{layout.MediaDir(), true},
		{layout.DatabasePath(), false},
		{layout.ConfigPath(), false},
		{layout.RootMappingPath(), false},
		{layout.DataMappingPath(), false},
	}
	for _, p := range required {
		info, err := os.Stat(p.path)
		if err != nil {
			f.errorf(p.path, "required path missing")
			continue
		}
		if info.IsDir() != p.dir {
			f.errorf(p.path, "wrong kind: expected dir=%v", p.dir)
		}
	}

	optional := []string{
		layout.LogsDir(), layout.CSVDir(), layout.BackupDir(), layout.SavesDir(),
	}
	for _, cat := range project.AssetCategories {
		optional = append(optional, layout.AssetDir(cat))
	}
	for _, path := range optional {
		if _, err := os.Stat(path); err != nil {
			f.infof(path, "optional path absent")
		}
	}
}

// checkSchema diffs the descriptor against the live database. Missing
// objects break the host application (errors); extra columns are legacy
// residue (warnings).
func checkSchema(st *store.Store, sc *schema.Schema, f *findings) {
	diff, err := sc.Diff(st.DB())
	if err != nil {
		f.errorf("", "schema introspection failed: %v", err)
		return
	}

	for _, t := range diff.MissingTables {
		f.errorf(t, "required table missing")
	}
	for _, c := range diff.MissingColumns {
		f.errorf(c, "required column missing")
	}
	for _, i := range diff.MissingIndexes {
		f.errorf(i, "required index missing")
	}
	for _, t := range diff.ExtraTables {
		f.warnf(t, "unexpected table")
	}
	for _, c := range diff.ExtraColumns {
		f.warnf(c, "unexpected column")
	}
	for _, i := range diff.ExtraIndexes {
		f.warnf(i, "unexpected index")
	}

	if diff.Clean() {
		f.infof("", "database matches descriptor version %s", sc.Version)
	}
}

var utcDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)

func isCanonicalUTC(value string) bool {
	if !utcDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02T15:04:05Z", value)
	return err == nil
}

// checkContent validates row-level content: meta keys, referential
// integrity, duplicate names, date forms, and take sequence contiguity.
func checkContent(st *store.Store, f *findings) {
	for _, table := range []string{"shots", "takes", "assets", "meta"} {
		count, err := st.CountRows(table)
		if err != nil {
			f.errorf(table, "cannot count rows: %v", err)
			continue
		}
		f.infof(table, "%d rows", count)
		if table == "shots" && count == 0 {
			f.infof(table, "project has no shots")
		}
	}

	meta, err := st.AllMeta()
	if err != nil {
		f.errorf("meta", "cannot read meta: %v", err)
		return
	}
	for _, key := range []string{"schema_version", "app_version"} {
		if _, ok := meta[key]; !ok {
			f.errorf("meta."+key, "required meta key missing")
		}
	}
	if v, ok := meta["schema_version"]; ok && v != store.MetaSchemaVersion {
		f.warnf("meta.schema_version", "unexpected value %q (expected %q)", v, store.MetaSchemaVersion)
	}
	if v, ok := meta["app_version"]; ok && v != store.MetaAppVersion {
		f.warnf("meta.app_version", "unexpected value %q (expected %q)", v, store.MetaAppVersion)
	}

	orphans, err := st.OrphanedTakes()
	if err != nil {
		f.errorf("takes", "orphan query failed: %v", err)
		return
	}
	for _, take := range orphans {
		f.errorf(take.TakeID, "take references missing shot %d", take.ShotID)
	}

	dups, err := st.DuplicateShotNames()
	if err != nil {
		f.errorf("shots", "duplicate query failed: %v", err)
		return
	}
	for _, name := range dups {
		f.warnf(name, "duplicate shot name")
	}

	shots, err := st.AllShots()
	if err != nil {
		f.errorf("shots", "cannot read shots: %v", err)
		return
	}
	for _, shot := range shots {
		if shot.CreatedDate != "" && !isCanonicalUTC(shot.CreatedDate) {
			f.warnf(shot.ShotName, "created_date %q is not canonical UTC", shot.CreatedDate)
		}
	}

	takes, err := st.AllTakes()
	if err != nil {
		f.errorf("takes", "cannot read takes: %v", err)
		return
	}
	checkSequenceContiguity(takes, f)
}

// checkSequenceContiguity verifies that each (shot, family) runs an
// unbroken 1..N sequence. A video and its workflow thumbnail legally
// share one number.
func checkSequenceContiguity(takes []store.Take, f *findings) {
	type key struct {
		shotID int64
		family string
	}
	seqs := make(map[key][]int)
	for _, take := range takes {
		k := key{take.ShotID, take.TakeType.Family()}
		seqs[k] = append(seqs[k], take.SequenceNumber)
	}

	for k, numbers := range seqs {
		unique := make(map[int]int)
		for _, n := range numbers {
			unique[n]++
		}

		// In the video family a number may appear twice (video + thumb),
		// anywhere else it must be unique.
		maxPerNumber := 1
		if k.family == "video" {
			maxPerNumber = 2
		}
		distinct := make([]int, 0, len(unique))
		for n, count := range unique {
			if count > maxPerNumber {
				f.errorf("", "shot %d %s sequence %d used %d times", k.shotID, k.family, n, count)
			}
			distinct = append(distinct, n)
		}
		sort.Ints(distinct)
		for i, n := range distinct {
			if n != i+1 {
				f.errorf("", "shot %d %s sequence gap: expected %d, found %d", k.shotID, k.family, i+1, n)
				break
			}
		}
	}
}
