// Package schema loads JSON schema descriptors and reconciles them against
// live SQLite databases. The descriptor is the single source of truth for
// what a conformant project database looks like; both the migrator (to
// create it) and the validation engine (to diff against it) consume the
// same loaded Schema.
package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Schema is a parsed schema descriptor
type Schema struct {
	Version string  `json:"version"`
	Tables  []Table `json:"tables"`
	Indexes []Index `json:"indexes"`
}

// Table describes one table in the descriptor
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Column describes one column of a table
type Column struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	NotNull       bool   `json:"not_null,omitempty"`
	PrimaryKey    bool   `json:"primary_key,omitempty"`
	Autoincrement bool   `json:"autoincrement,omitempty"`
	Default       string `json:"default,omitempty"`
}

// Index describes one index in the descriptor
type Index struct {
	Name    string   `json:"name"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}

// Load reads and validates a schema descriptor file. A descriptor that
// cannot be parsed or fails structural validation is fatal: every
// downstream decision depends on it.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read schema descriptor %s: %v", util.ErrSchema, path, err)
	}
	return Parse(data)
}

// Parse parses a schema descriptor from raw JSON bytes
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: malformed descriptor JSON: %v", util.ErrSchema, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Schema) validate() error {
	if len(s.Tables) == 0 {
		return fmt.Errorf("%w: descriptor defines no tables", util.ErrSchema)
	}

	tables := make(map[string]*Table, len(s.Tables))
	for i := range s.Tables {
		t := &s.Tables[i]
		if t.Name == "" {
			return fmt.Errorf("%w: table %d has no name", util.ErrSchema, i)
		}
		if _, dup := tables[t.Name]; dup {
			return fmt.Errorf("%w: duplicate table %q", util.ErrSchema, t.Name)
		}
		tables[t.Name] = t

		if len(t.Columns) == 0 {
			return fmt.Errorf("%w: table %q has no columns", util.ErrSchema, t.Name)
		}
		cols := make(map[string]bool, len(t.Columns))
		for j, c := range t.Columns {
			if c.Name == "" {
				return fmt.Errorf("%w: table %q column %d has no name", util.ErrSchema, t.Name, j)
			}
			if c.Type == "" {
				return fmt.Errorf("%w: table %q column %q has no type", util.ErrSchema, t.Name, c.Name)
			}
			if cols[c.Name] {
				return fmt.Errorf("%w: table %q has duplicate column %q", util.ErrSchema, t.Name, c.Name)
			}
			cols[c.Name] = true
		}
	}

	for i, idx := range s.Indexes {
		if idx.Name == "" {
			return fmt.Errorf("%w: index %d has no name", util.ErrSchema, i)
		}
		t, ok := tables[idx.Table]
		if !ok {
			return fmt.Errorf("%w: index %q references unknown table %q", util.ErrSchema, idx.Name, idx.Table)
		}
		if len(idx.Columns) == 0 {
			return fmt.Errorf("%w: index %q has no columns", util.ErrSchema, idx.Name)
		}
		for _, col := range idx.Columns {
			if !t.hasColumn(col) {
				return fmt.Errorf("%w: index %q references unknown column %s.%s", util.ErrSchema, idx.Name, idx.Table, col)
			}
		}
	}

	return nil
}

func (t *Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// TableNames returns the descriptor's table names in declaration order
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i, t := range s.Tables {
		names[i] = t.Name
	}
	return names
}

// Table returns the named table, or nil if the descriptor lacks it
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
