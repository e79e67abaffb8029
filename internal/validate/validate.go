// Package validate is the independent validation engine. It inspects a
// project of unknown provenance against the project layout and a schema
// descriptor, shares no state with the migrator, and never stops at the
// first failure: every check group runs and every finding is collected.
package validate

import (
	"fmt"
	"os"

	"github.com/mdkberry/migrating-to-aimms/internal/project"
	"github.com/mdkberry/migrating-to-aimms/internal/report"
	"github.com/mdkberry/migrating-to-aimms/internal/schema"
	"github.com/mdkberry/migrating-to-aimms/internal/store"
	"github.com/mdkberry/migrating-to-aimms/internal/util"
)

// Check group names, in report order
const (
	GroupStructure = "structure"
	GroupSchema    = "schema"
	GroupContent   = "content"
	GroupMedia     = "media"
	GroupCross     = "cross-consistency"
	GroupMapping   = "mapping-parity"
)

// Report is the outcome of one validation run
type Report struct {
	Project  string
	Groups   []report.Group
	Errors   int
	Warnings int
}

// Passed reports whether the project validated with zero errors.
// Warnings never fail a project.
func (r *Report) Passed() bool {
	return r.Errors == 0
}

// findings accumulates entries for one check group
type findings struct {
	group   string
	entries []report.Entry
}

func (f *findings) errorf(path, format string, args ...interface{}) {
	f.add(report.LevelError, path, format, args...)
}

func (f *findings) warnf(path, format string, args ...interface{}) {
	f.add(report.LevelWarning, path, format, args...)
}

func (f *findings) infof(path, format string, args ...interface{}) {
	f.add(report.LevelInfo, path, format, args...)
}

func (f *findings) add(level report.Level, path, format string, args ...interface{}) {
	f.entries = append(f.entries, report.Entry{
		Level:    level,
		Category: f.group,
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Run validates the project at root against the descriptor. The only
// error return is a broken invocation (e.g. unreadable root); validation
// findings, including a missing or corrupt database, are entries in the
// report.
func Run(root string, sc *schema.Schema) (*Report, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: project root %s: %v", util.ErrConfiguration, root, err)
	}

	layout := project.NewLayout(root)
	r := &Report{Project: root}

	structure := &findings{group: GroupStructure}
	checkStructure(layout, structure)
	r.append(structure)

	// Database-dependent groups need an openable database. When it is
	// missing the structure check already reported the error; the other
	// groups record that they could not run.
	st, err := openForValidation(layout)
	if err != nil {
		for _, group := range []string{GroupSchema, GroupContent, GroupMedia, GroupCross, GroupMapping} {
			f := &findings{group: group}
			f.errorf(layout.DatabasePath(), "skipped: %v", err)
			r.append(f)
		}
		return r, nil
	}
	defer st.Close()

	schemaFindings := &findings{group: GroupSchema}
	checkSchema(st, sc, schemaFindings)
	r.append(schemaFindings)

	content := &findings{group: GroupContent}
	checkContent(st, content)
	r.append(content)

	referenced := referencedPaths(st)

	mediaFindings := &findings{group: GroupMedia}
	checkMedia(layout, st, referenced, mediaFindings)
	r.append(mediaFindings)

	cross := &findings{group: GroupCross}
	checkCross(layout, st, cross)
	r.append(cross)

	mapping := &findings{group: GroupMapping}
	checkMapping(layout, st, mapping)
	r.append(mapping)

	return r, nil
}

func (r *Report) append(f *findings) {
	r.Groups = append(r.Groups, report.Group{Name: f.group, Entries: f.entries})
	for _, e := range f.entries {
		switch e.Level {
		case report.LevelError:
			r.Errors++
		case report.LevelWarning:
			r.Warnings++
		}
	}
}

func openForValidation(layout *project.Layout) (*store.Store, error) {
	path := layout.DatabasePath()
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("database not found")
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("database not openable: %v", err)
	}
	if err := st.CheckIntegrity(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
