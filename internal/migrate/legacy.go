package migrate

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/mdkberry/migrating-to-aimms/internal/media"
	"github.com/mdkberry/migrating-to-aimms/internal/remap"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// legacyRequiredTables must all exist in a legacy shot database
var legacyRequiredTables = []string{"shots", "takes", "assets", "meta"}

// LegacySource reads a legacy name-keyed project: data/shots.db plus
// media/<shot_name>/ folders.
type LegacySource struct {
	root string
	st   *store.Store
}

// OpenLegacy validates and opens a legacy project directory
func OpenLegacy(root string) (*LegacySource, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: source project %s is not a directory", util.ErrConfiguration, root)
	}

	dbPath := filepath.Join(root, "data", "shots.db")
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: legacy database not found at %s", util.ErrConfiguration, dbPath)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open legacy database: %v", util.ErrConfiguration, err)
	}

	for _, table := range legacyRequiredTables {
		ok, err := st.HasTable(table)
		if err != nil {
			st.Close()
			return nil, err
		}
		if !ok {
			st.Close()
			return nil, fmt.Errorf("%w: legacy database missing required table %q", util.ErrConfiguration, table)
		}
	}

	cols, err := columnSet(st.DB(), "shots")
	if err != nil {
		st.Close()
		return nil, err
	}
	for _, required := range []string{"shot_name", "order_number"} {
		if !cols[required] {
			st.Close()
			return nil, fmt.Errorf("%w: legacy shots table missing required column %q", util.ErrConfiguration, required)
		}
	}

	return &LegacySource{root: root, st: st}, nil
}

// Close releases the legacy database
func (l *LegacySource) Close() error {
	return l.st.Close()
}

// Describe returns the source description for logs
func (l *LegacySource) Describe() string {
	return fmt.Sprintf("legacy database project at %s", l.root)
}

// Shots reads legacy shots in rowid order. Legacy schemas vary, so rows
// are read generically and descriptive columns picked up by name when
// present.
func (l *LegacySource) Shots() ([]ShotData, error) {
	rows, err := genericRows(l.st.DB(), "SELECT * FROM shots ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy shots: %w", err)
	}

	takeIndex, err := l.legacyTakes()
	if err != nil {
		return nil, err
	}

	shots := make([]ShotData, 0, len(rows))
	for _, row := range rows {
		name := row["shot_name"]
		order, hasOrder := parseOrder(row["order_number"])

		data := ShotData{
			Legacy: remap.Legacy{Name: name, Order: order, HasOrder: hasOrder},
			Attrs: ShotAttrs{
				Section:           row["section"],
				Description:       row["description"],
				ImagePrompt:       row["image_prompt"],
				ColourSchemeImage: row["colour_scheme_image"],
				TimeOfDay:         row["time_of_day"],
				Location:          row["location"],
				Country:           row["country"],
				Year:              row["year"],
				VideoPrompt:       row["video_prompt"],
				CreatedDate:       row["created_date"],
			},
		}
		if idx := takeIndex[name]; idx != nil {
			data.Starred = idx.starred
		}

		files, err := scanShotFolder(filepath.Join(l.root, "media", name))
		if err != nil {
			return nil, err
		}
		data.Files = files

		// Every take row the legacy database records must have its file
		// on disk; a row with no counterpart is surfaced, not dropped.
		if idx := takeIndex[name]; idx != nil {
			present := make(map[string]bool, len(files))
			for _, f := range files {
				present[path.Base(f.RelPath)] = true
			}
			for base := range idx.files {
				if !present[base] {
					data.MissingTakes = append(data.MissingTakes, base)
				}
			}
			sort.Strings(data.MissingTakes)
		}

		shots = append(shots, data)
	}
	return shots, nil
}

// legacyTakeIndex is what the legacy takes table records for one shot:
// every source filename and which of them were starred
type legacyTakeIndex struct {
	files   map[string]bool
	starred map[string]bool
}

// legacyTakes indexes the legacy takes table by shot name. Legacy takes
// reference their shot either by name or by a legacy numeric id.
func (l *LegacySource) legacyTakes() (map[string]*legacyTakeIndex, error) {
	takeCols, err := columnSet(l.st.DB(), "takes")
	if err != nil {
		return nil, err
	}

	idToName := map[string]string{}
	if !takeCols["shot_name"] && takeCols["shot_id"] {
		shotRows, err := genericRows(l.st.DB(), "SELECT * FROM shots")
		if err != nil {
			return nil, err
		}
		for _, row := range shotRows {
			if id := row["shot_id"]; id != "" {
				idToName[id] = row["shot_name"]
			}
		}
	}

	rows, err := genericRows(l.st.DB(), "SELECT * FROM takes")
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy takes: %w", err)
	}

	index := make(map[string]*legacyTakeIndex)
	for _, row := range rows {
		name := row["shot_name"]
		if name == "" {
			name = idToName[row["shot_id"]]
		}
		if name == "" || row["file_path"] == "" {
			continue
		}
		base := filepath.Base(filepath.FromSlash(row["file_path"]))
		idx := index[name]
		if idx == nil {
			idx = &legacyTakeIndex{files: make(map[string]bool), starred: make(map[string]bool)}
			index[name] = idx
		}
		idx.files[base] = true
		if row["starred"] == "1" {
			idx.starred[base] = true
		}
	}
	return index, nil
}

// Assets scans the legacy asset category folders, carrying starred flags
// from the legacy assets table by filename.
func (l *LegacySource) Assets() ([]AssetData, error) {
	starred := make(map[string]bool)
	rows, err := genericRows(l.st.DB(), "SELECT * FROM assets")
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy assets: %w", err)
	}
	for _, row := range rows {
		if row["starred"] == "1" && row["file_path"] != "" {
			starred[filepath.Base(filepath.FromSlash(row["file_path"]))] = true
		}
	}

	return scanAssetDirs(filepath.Join(l.root, "media"), starred)
}

// Meta reads the legacy meta table
func (l *LegacySource) Meta() (map[string]string, error) {
	return l.st.AllMeta()
}

// scanShotFolder collects every file under a shot's media folder. A
// missing folder is an empty shot, not an error.
func scanShotFolder(dir string) ([]media.SourceFile, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []media.SourceFile
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, media.SourceFile{
			AbsPath: path,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	return files, nil
}

// scanAssetDirs collects files under the fixed asset category folders
func scanAssetDirs(mediaRoot string, starred map[string]bool) ([]AssetData, error) {
	var assets []AssetData
	for _, category := range []string{"characters", "locations", "other"} {
		dir := filepath.Join(mediaRoot, category)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			info, err := e.Info()
			if err != nil {
				return nil, err
			}
			assets = append(assets, AssetData{
				Category: category,
				Name:     e.Name(),
				AbsPath:  filepath.Join(dir, e.Name()),
				Size:     info.Size(),
				Starred:  starred[e.Name()],
			})
		}
	}
	return assets, nil
}

// genericRows reads a query result as string maps, tolerating unknown
// legacy schemas. SQLite values coerce cleanly to text.
func genericRows(db *sql.DB, query string) ([]map[string]string, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]string
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			if vals[i].Valid {
				row[col] = vals[i].String
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func columnSet(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

func parseOrder(value string) (int, bool) {
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return n, true
}
