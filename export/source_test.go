package export

import (
	"errors"
	"path/filepath"
	"testing"

	dxerrors "github.com/randalmurphal/devexport/errors"
	"github.com/randalmurphal/devexport/testutil"
)

func TestSourceRoot(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"sdk/build/libs/*.jar", "sdk/build/libs"},
		{"*.jar", "."},
		{"out/*/libs/*.jar", "out"},
		{"out/lib?/*.jar", "out"},
		{"/abs/dir/sdk.jar", "/abs/dir"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := SourceRoot(tt.pattern); got != filepath.FromSlash(tt.want) {
				t.Errorf("SourceRoot(%q) = %q, want %q", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestEnumerate(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteArtifacts(t, dir, map[string]string{
		"b.jar":           "bb",
		"a.jar":           "a",
		"notes.txt":       "ignored",
		"dir.jar/x.class": "directories are skipped",
	})

	artifacts, err := Enumerate(filepath.Join(dir, "*.jar"))
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}

	if len(artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2: %+v", len(artifacts), artifacts)
	}
	if artifacts[0].Name != "a.jar" || artifacts[1].Name != "b.jar" {
		t.Errorf("artifacts not sorted: %+v", artifacts)
	}
	if artifacts[1].Size != 2 {
		t.Errorf("Size = %d, want 2", artifacts[1].Size)
	}
	if artifacts[0].Base() != "a" || artifacts[0].Ext() != ".jar" {
		t.Errorf("Base/Ext = %q/%q, want a/.jar", artifacts[0].Base(), artifacts[0].Ext())
	}
}

func TestEnumerate_ZeroMatches(t *testing.T) {
	artifacts, err := Enumerate(filepath.Join(t.TempDir(), "*.jar"))
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(artifacts) != 0 {
		t.Errorf("got %d artifacts, want 0", len(artifacts))
	}
}

func TestEnumerate_SourceUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		pattern func(dir string) string
	}{
		{"missing directory", func(dir string) string { return filepath.Join(dir, "missing", "*.jar") }},
		{"root is a file", func(dir string) string { return filepath.Join(dir, "file", "*.jar") }},
		{"bad pattern", func(dir string) string { return filepath.Join(dir, "[.jar") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			testutil.WriteArtifacts(t, dir, map[string]string{"file": "x"})

			_, err := Enumerate(tt.pattern(dir))
			if !errors.Is(err, dxerrors.ErrSourceUnavailable) {
				t.Errorf("err = %v, want ErrSourceUnavailable", err)
			}
		})
	}
}
