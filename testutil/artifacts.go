// Package testutil provides utilities for testing.
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteArtifacts writes files relative to dir, creating parent directories.
// Keys are slash-separated paths; values are file contents.
func WriteArtifacts(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		fullPath := filepath.Join(dir, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", name, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write file %s: %v", name, err)
		}
	}
}

// ListDir returns the sorted names of the entries in dir.
// A missing directory yields nil.
func ListDir(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to read directory %s: %v", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// ReadFileString reads a file, failing the test on error.
func ReadFileString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether path exists.
func Exists(t *testing.T, path string) bool {
	t.Helper()

	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if !os.IsNotExist(err) {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	return false
}
