package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFileAtomic(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dest := filepath.Join(dir, "out", "dest.png")

	content := []byte("fake png payload")
	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	written, err := CopyFileAtomic(src, dest)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if written != int64(len(content)) {
		t.Errorf("expected %d bytes written, got %d", len(content), written)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read destination: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("destination content mismatch")
	}

	// No temp file left behind
	if _, err := os.Stat(dest + ".part"); !os.IsNotExist(err) {
		t.Error("expected temp file to be removed")
	}
}

func TestCopyFileAtomicZeroByte(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "placeholder.mp4")
	dest := filepath.Join(dir, "copy.mp4")

	if err := os.WriteFile(src, nil, 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	written, err := CopyFileAtomic(src, dest)
	if err != nil {
		t.Fatalf("expected zero-byte copy to succeed, got %v", err)
	}
	if written != 0 {
		t.Errorf("expected 0 bytes written, got %d", written)
	}

	info, err := os.Stat(dest)
	if err != nil {
		t.Fatalf("destination missing: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected zero-byte destination, got %d bytes", info.Size())
	}
}

func TestCopyFileAtomicMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFileAtomic(filepath.Join(dir, "nope.png"), filepath.Join(dir, "dest.png"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dest := filepath.Join(dir, "dest")

	files := []string{
		"characters/hero.png",
		"characters/villain.png",
		"other/notes.txt",
	}
	for _, f := range files {
		path := filepath.Join(src, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(f), 0644); err != nil {
			t.Fatal(err)
		}
	}

	copied, err := CopyTree(src, dest)
	if err != nil {
		t.Fatalf("copy tree failed: %v", err)
	}
	if copied != len(files) {
		t.Errorf("expected %d files copied, got %d", len(files), copied)
	}

	for _, f := range files {
		if _, err := os.Stat(filepath.Join(dest, filepath.FromSlash(f))); err != nil {
			t.Errorf("expected %s at destination: %v", f, err)
		}
	}
}

func TestIsZeroSize(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	full := filepath.Join(dir, "full.png")
	if err := os.WriteFile(full, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !IsZeroSize(empty) {
		t.Error("expected empty file to be zero size")
	}
	if IsZeroSize(full) {
		t.Error("expected non-empty file to not be zero size")
	}
	if !IsZeroSize(filepath.Join(dir, "missing.png")) {
		t.Error("expected missing file to count as zero size")
	}
}

func TestProjectPathRoundTrip(t *testing.T) {
	stored := ToProjectPath("media", "3", "base_01.png")
	if stored != "media/3/base_01.png" {
		t.Errorf("expected forward-slash path, got %q", stored)
	}

	resolved := FromProjectPath("/root/project", stored)
	want := filepath.Join("/root/project", "media", "3", "base_01.png")
	if resolved != want {
		t.Errorf("expected %q, got %q", want, resolved)
	}
}
