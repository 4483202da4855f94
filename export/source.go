package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	dxerrors "github.com/randalmurphal/devexport/errors"
)

// Artifact is a file produced by the build.
type Artifact struct {
	Path string // Path as matched by the source pattern
	Name string // File name
	Size int64
}

// Base returns the file name without its last extension.
func (a Artifact) Base() string {
	return strings.TrimSuffix(a.Name, a.Ext())
}

// Ext returns the last extension of the file name, including the dot.
func (a Artifact) Ext() string {
	return filepath.Ext(a.Name)
}

// SourceRoot returns the deepest directory of pattern that contains no
// glob metacharacters. That directory must exist for an export to run.
func SourceRoot(pattern string) string {
	dir := filepath.Dir(pattern)
	for hasMeta(dir) {
		dir = filepath.Dir(dir)
	}
	return dir
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// Enumerate returns every regular file matching pattern, sorted by path.
// Zero matches is not an error.
func Enumerate(pattern string) ([]Artifact, error) {
	root := SourceRoot(pattern)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dxerrors.ErrSourceUnavailable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", dxerrors.ErrSourceUnavailable, root)
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", dxerrors.ErrSourceUnavailable, pattern, err)
	}
	sort.Strings(matches)

	artifacts := make([]Artifact, 0, len(matches))
	var prev string
	for _, path := range matches {
		if path == prev {
			continue
		}
		prev = path

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Path: path,
			Name: filepath.Base(path),
			Size: info.Size(),
		})
	}
	return artifacts, nil
}
