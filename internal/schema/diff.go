package schema

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// Diff is the result of comparing a descriptor against a live database.
// Missing entries are things the descriptor demands that the database
// lacks; extra entries exist in the database but not in the descriptor.
type Diff struct {
	MissingTables  []string
	ExtraTables    []string
	MissingColumns []string // qualified as table.column
	ExtraColumns   []string
	MissingIndexes []string
	ExtraIndexes   []string
}

// Clean reports whether the database matches the descriptor exactly
func (d *Diff) Clean() bool {
	return len(d.MissingTables) == 0 && len(d.ExtraTables) == 0 &&
		len(d.MissingColumns) == 0 && len(d.ExtraColumns) == 0 &&
		len(d.MissingIndexes) == 0 && len(d.ExtraIndexes) == 0
}

// Diff introspects the database and compares it against the descriptor.
// SQLite's internal objects (sqlite_sequence, auto-indexes) are ignored.
func (s *Schema) Diff(db *sql.DB) (*Diff, error) {
	d := &Diff{}

	dbTables, err := listObjects(db, "table")
	if err != nil {
		return nil, err
	}
	dbIndexes, err := listObjects(db, "index")
	if err != nil {
		return nil, err
	}

	wantTables := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		wantTables[t.Name] = true
		if !dbTables[t.Name] {
			d.MissingTables = append(d.MissingTables, t.Name)
			continue
		}

		dbCols, err := tableColumns(db, t.Name)
		if err != nil {
			return nil, err
		}
		wantCols := make(map[string]bool, len(t.Columns))
		for _, c := range t.Columns {
			wantCols[c.Name] = true
			if !dbCols[c.Name] {
				d.MissingColumns = append(d.MissingColumns, t.Name+"."+c.Name)
			}
		}
		for col := range dbCols {
			if !wantCols[col] {
				d.ExtraColumns = append(d.ExtraColumns, t.Name+"."+col)
			}
		}
	}
	for name := range dbTables {
		if !wantTables[name] {
			d.ExtraTables = append(d.ExtraTables, name)
		}
	}

	wantIndexes := make(map[string]bool, len(s.Indexes))
	for _, i := range s.Indexes {
		wantIndexes[i.Name] = true
		if !dbIndexes[i.Name] {
			d.MissingIndexes = append(d.MissingIndexes, i.Name)
		}
	}
	for name := range dbIndexes {
		if !wantIndexes[name] {
			d.ExtraIndexes = append(d.ExtraIndexes, name)
		}
	}

	sortAll(d)
	return d, nil
}

func listObjects(db *sql.DB, objType string) (map[string]bool, error) {
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = ?", objType)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", objType, err)
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if strings.HasPrefix(name, "sqlite_") {
			continue
		}
		names[name] = true
	}
	return names, rows.Err()
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
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

func sortAll(d *Diff) {
	for _, s := range [][]string{
		d.MissingTables, d.ExtraTables,
		d.MissingColumns, d.ExtraColumns,
		d.MissingIndexes, d.ExtraIndexes,
	} {
		sort.Strings(s)
	}
}
