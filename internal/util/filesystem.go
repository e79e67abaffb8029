package util

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CopyFileAtomic copies src to dest using a .part temporary file and an
// atomic rename, then verifies the destination size against the source.
// Zero-byte sources are copied verbatim; they are valid placeholders.
func CopyFileAtomic(src, dest string) (int64, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("failed to stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	tempPath := dest + ".part"
	out, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}

	written, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to copy: %w", err)
	}

	if written != srcInfo.Size() {
		os.Remove(tempPath)
		return 0, fmt.Errorf("size mismatch after copy: wrote %d, expected %d", written, srcInfo.Size())
	}

	if err := os.Rename(tempPath, dest); err != nil {
		os.Remove(tempPath)
		return 0, fmt.Errorf("failed to rename: %w", err)
	}

	return written, nil
}

// CopyTree recursively copies every regular file under src into dest,
// preserving relative paths. Each file is copied atomically.
func CopyTree(src, dest string) (int, error) {
	copied := 0
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if _, err := CopyFileAtomic(path, filepath.Join(dest, rel)); err != nil {
			return err
		}
		copied++
		return nil
	})
	return copied, err
}

// IsZeroSize reports whether the file at path exists and is empty.
// A missing or unreadable file counts as zero size, matching the
// validation engine's treatment of absent placeholders.
func IsZeroSize(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Size() == 0
}

// WriteFileAtomic writes data to path via a temp file and rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tempPath := path + ".part"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename: %w", err)
	}
	return nil
}

// ToProjectPath converts an OS-specific path into the forward-slash form
// stored in the database. Stored paths are always relative to the project
// root.
func ToProjectPath(parts ...string) string {
	return strings.Join(parts, "/")
}

// FromProjectPath resolves a stored forward-slash path against the project
// root, normalizing separators for the host platform.
func FromProjectPath(root, stored string) string {
	return filepath.Join(root, filepath.FromSlash(stored))
}
