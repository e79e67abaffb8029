package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckSQLite(t *testing.T) {
	r := checkSQLite()
	if r.error {
		t.Errorf("expected SQLite check to pass: %s", r.message)
	}
	if r.message == "" {
		t.Error("expected a version string")
	}
}

func TestCheckSchemaDescriptorBuiltin(t *testing.T) {
	r := checkSchemaDescriptor()
	if r.error {
		t.Errorf("expected built-in descriptor to pass: %s", r.message)
	}
}

func TestCheckSourceLegacy(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "shots.db"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	r := checkSource(dir)
	if r.error || r.warning {
		t.Errorf("expected legacy source to pass: %s", r.message)
	}
}

func TestCheckSourceEmpty(t *testing.T) {
	r := checkSource(t.TempDir())
	if !r.warning {
		t.Errorf("expected warning for source without db or csv: %+v", r)
	}

	r = checkSource(filepath.Join(t.TempDir(), "missing"))
	if !r.error {
		t.Errorf("expected error for missing source: %+v", r)
	}
}

func TestCheckTarget(t *testing.T) {
	// Empty existing directory passes
	r := checkTarget(t.TempDir())
	if r.error || r.warning {
		t.Errorf("expected empty target to pass: %+v", r)
	}

	// Non-empty directory warns
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "leftover"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	r = checkTarget(dir)
	if !r.warning {
		t.Errorf("expected warning for non-empty target: %+v", r)
	}

	// Missing directory with writable parent passes
	r = checkTarget(filepath.Join(t.TempDir(), "new_project"))
	if r.error || r.warning {
		t.Errorf("expected creatable target to pass: %+v", r)
	}
}
