package project

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestScaffoldCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "new_project")
	l := NewLayout(root)

	if err := l.Scaffold("test_project"); err != nil {
		t.Fatalf("scaffold failed: %v", err)
	}

	dirs := []string{
		l.DataDir(), l.CSVDir(), l.BackupDir(), l.SavesDir(),
		l.MediaDir(), l.LogsDir(),
		l.AssetDir("characters"), l.AssetDir("locations"), l.AssetDir("other"),
	}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			t.Errorf("expected directory %s: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}

	if _, err := os.Stat(l.ConfigPath()); err != nil {
		t.Errorf("expected project config: %v", err)
	}
	if _, err := os.Stat(l.ProjectLogPath()); err != nil {
		t.Errorf("expected project log: %v", err)
	}
}

func TestScaffoldPreservesExistingConfig(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := NewLayout(root)

	if err := os.MkdirAll(root, 0755); err != nil {
		t.Fatal(err)
	}
	original := []byte(`{"project_name":"keep_me","version":"1.0","created":"2024-01-01T00:00:00Z"}`)
	if err := os.WriteFile(l.ConfigPath(), original, 0644); err != nil {
		t.Fatal(err)
	}

	if err := l.Scaffold("overwrite_attempt"); err != nil {
		t.Fatalf("scaffold failed: %v", err)
	}

	got, err := os.ReadFile(l.ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, original) {
		t.Error("scaffold overwrote existing project config")
	}
}

func TestWriteMappingPairByteIdentical(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := NewLayout(root)
	if err := l.Scaffold("p"); err != nil {
		t.Fatal(err)
	}

	m := NewShotNameMapping(map[string]int64{
		"opening_scene": 1,
		"chase":         2,
	})
	if err := l.WriteMappingPair(m); err != nil {
		t.Fatalf("write pair failed: %v", err)
	}

	rootData, err := os.ReadFile(l.RootMappingPath())
	if err != nil {
		t.Fatalf("root copy missing: %v", err)
	}
	dataData, err := os.ReadFile(l.DataMappingPath())
	if err != nil {
		t.Fatalf("data copy missing: %v", err)
	}
	if !bytes.Equal(rootData, dataData) {
		t.Error("mapping copies are not byte-identical")
	}
}

func TestReadMappingPair(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := NewLayout(root)
	if err := l.Scaffold("p"); err != nil {
		t.Fatal(err)
	}

	want := map[string]int64{"shot_a": 1, "shot_b": 2, "shot_c": 3}
	if err := l.WriteMappingPair(NewShotNameMapping(want)); err != nil {
		t.Fatal(err)
	}

	m, err := l.ReadMappingPair()
	if err != nil {
		t.Fatalf("read pair failed: %v", err)
	}
	if m.Version != MappingVersion {
		t.Errorf("expected version %s, got %s", MappingVersion, m.Version)
	}
	if len(m.Mapping) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(m.Mapping))
	}
	for name, id := range want {
		if m.Mapping[name] != id {
			t.Errorf("expected %s=%d, got %d", name, id, m.Mapping[name])
		}
	}
}

func TestReadMappingPairDivergence(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := NewLayout(root)
	if err := l.Scaffold("p"); err != nil {
		t.Fatal(err)
	}

	if err := l.WriteMappingPair(NewShotNameMapping(map[string]int64{"a": 1})); err != nil {
		t.Fatal(err)
	}

	// Tamper with the data copy
	tampered := []byte(`{"version":"1.0","created":"2024-01-01T00:00:00Z","mapping":{"a":99}}`)
	if err := os.WriteFile(l.DataMappingPath(), tampered, 0644); err != nil {
		t.Fatal(err)
	}

	m, err := l.ReadMappingPair()
	if err == nil {
		t.Fatal("expected divergence error")
	}
	if m == nil {
		t.Error("expected root mapping to be returned alongside divergence error")
	}
}

func TestReadMappingPairMissingCopy(t *testing.T) {
	root := filepath.Join(t.TempDir(), "proj")
	l := NewLayout(root)
	if err := l.Scaffold("p"); err != nil {
		t.Fatal(err)
	}

	if err := l.WriteMappingPair(NewShotNameMapping(map[string]int64{"a": 1})); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(l.DataMappingPath()); err != nil {
		t.Fatal(err)
	}

	if _, err := l.ReadMappingPair(); err == nil {
		t.Fatal("expected error when data copy missing")
	}
}

func TestShotMediaDir(t *testing.T) {
	l := NewLayout("/projects/demo")
	want := filepath.Join("/projects/demo", "media", "7")
	if got := l.ShotMediaDir(7); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
