package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	dxerrors "github.com/randalmurphal/devexport/errors"
)

// Request describes one export.
type Request struct {
	// SourcePattern is a filepath.Glob pattern selecting the artifacts,
	// e.g. "sdk/build/libs/*.jar".
	SourcePattern string

	// Destination is the directory artifacts are published to.
	Destination string

	Mode     Mode
	Strategy Strategy

	// Identifier is inserted into names under StrategyRevision.
	Identifier string

	// Separator joins base name and identifier. Empty means DefaultSeparator.
	Separator string

	// StopOnError aborts at the first failed transfer instead of
	// attempting every artifact and reporting all failures at the end.
	StopOnError bool
}

// Transfer records one artifact placed in the destination.
type Transfer struct {
	Artifact Artifact
	DestPath string
	Bytes    int64
	SHA256   string
}

// Result summarizes an export. It is returned alongside transfer errors
// so callers can report partial progress.
type Result struct {
	Mode        Mode
	Strategy    Strategy
	Destination string
	Identifier  string
	Matched     int
	Removed     []string
	Transfers   []Transfer
	Failures    []*dxerrors.TransferError
}

// Exporter publishes build artifacts into a destination directory.
type Exporter struct {
	Logger *slog.Logger

	// Copy and Move override the file operations. Nil uses CopyFile and MoveFile.
	Copy TransferFunc
	Move TransferFunc
}

// New creates an Exporter that logs to logger (slog.Default when nil).
func New(logger *slog.Logger) *Exporter {
	return &Exporter{Logger: logger}
}

type plannedTransfer struct {
	artifact Artifact
	destName string
}

// Export publishes every artifact matching req.SourcePattern into
// req.Destination according to req.Mode and req.Strategy.
//
// Nothing is mutated until the request, the source directory, the
// destination names and the destination directory have been validated.
// Failed transfers are not rolled back.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	logger := e.logger()

	if err := validate(&req); err != nil {
		return nil, err
	}

	dest, err := filepath.Abs(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dxerrors.ErrDestinationUnavailable, err)
	}

	artifacts, err := Enumerate(req.SourcePattern)
	if err != nil {
		return nil, err
	}

	plan, err := planNames(artifacts, req)
	if err != nil {
		return nil, err
	}

	if err := checkOverlap(dest, SourceRoot(req.SourcePattern), req.Mode); err != nil {
		return nil, err
	}
	if err := checkArtifactDirs(plan, dest, req.Mode); err != nil {
		return nil, err
	}

	if err := prepareDestination(dest, req.Mode); err != nil {
		return nil, err
	}

	res := &Result{
		Mode:        req.Mode,
		Strategy:    req.Strategy,
		Destination: dest,
		Identifier:  req.Identifier,
		Matched:     len(artifacts),
	}

	if req.Mode.ClearsDestination() {
		removed, err := clearDir(dest)
		res.Removed = removed
		if err != nil {
			return res, err
		}
		if len(removed) > 0 {
			logger.Info("cleared destination", "destination", dest, "removed", len(removed))
		}
	}

	if len(plan) == 0 {
		logger.Warn("no artifacts matched", "pattern", req.SourcePattern)
		return res, nil
	}

	op, transfer := "copy", e.copyFunc()
	if req.Mode.Moves() {
		op, transfer = "move", e.moveFunc()
	}

	for _, p := range plan {
		if err := ctx.Err(); err != nil {
			return res, joinFailures(res, fmt.Errorf("export interrupted: %w", err))
		}

		destPath := filepath.Join(dest, p.destName)
		if sameFile(p.artifact.Path, destPath) {
			te := &dxerrors.TransferError{
				Artifact: p.artifact.Path,
				Op:       op,
				Err:      fmt.Errorf("%w: %s is the artifact itself", dxerrors.ErrDestinationUnavailable, destPath),
			}
			res.Failures = append(res.Failures, te)
			logger.Error("transfer failed", "artifact", p.artifact.Path, "op", op, "error", te.Err)
			if req.StopOnError {
				break
			}
			continue
		}
		if err := transfer(p.artifact.Path, destPath); err != nil {
			te := &dxerrors.TransferError{Artifact: p.artifact.Path, Op: op, Err: err}
			res.Failures = append(res.Failures, te)
			logger.Error("transfer failed", "artifact", p.artifact.Path, "op", op, "error", err)
			if req.StopOnError {
				break
			}
			continue
		}

		n, sum, err := checksum(destPath)
		if err != nil {
			te := &dxerrors.TransferError{Artifact: p.artifact.Path, Op: "verify", Err: err}
			res.Failures = append(res.Failures, te)
			logger.Error("verify failed", "artifact", p.artifact.Path, "error", err)
			if req.StopOnError {
				break
			}
			continue
		}

		res.Transfers = append(res.Transfers, Transfer{
			Artifact: p.artifact,
			DestPath: destPath,
			Bytes:    n,
			SHA256:   sum,
		})
		logger.Info("exported artifact", "artifact", p.artifact.Name, "op", op, "dest", destPath)
	}

	return res, joinFailures(res, nil)
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e *Exporter) copyFunc() TransferFunc {
	if e.Copy != nil {
		return e.Copy
	}
	return CopyFile
}

func (e *Exporter) moveFunc() TransferFunc {
	if e.Move != nil {
		return e.Move
	}
	return MoveFile
}

func validate(req *Request) error {
	if !req.Mode.Valid() {
		return fmt.Errorf("invalid mode %v", req.Mode)
	}
	if req.SourcePattern == "" {
		return fmt.Errorf("%w: empty source pattern", dxerrors.ErrSourceUnavailable)
	}
	if req.Destination == "" {
		return fmt.Errorf("%w: destination for %s", dxerrors.ErrMissingArgument, req.Mode)
	}
	if req.Strategy == StrategyRevision && req.Identifier == "" {
		return fmt.Errorf("%w: revision tag requested without an identifier", dxerrors.ErrRevisionUnavailable)
	}
	if req.Separator == "" {
		req.Separator = DefaultSeparator
	}
	return nil
}

// planNames computes every destination name up front so collisions are
// reported before anything is written.
func planNames(artifacts []Artifact, req Request) ([]plannedTransfer, error) {
	plan := make([]plannedTransfer, 0, len(artifacts))
	seen := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		name := DestName(a.Name, req.Strategy, req.Identifier, req.Separator)
		if prev, ok := seen[name]; ok {
			return nil, &dxerrors.TransferError{
				Artifact: a.Path,
				Op:       "plan",
				Err:      fmt.Errorf("%w: %s and %s both map to %s", dxerrors.ErrNameCollision, prev, a.Path, name),
			}
		}
		seen[name] = a.Path
		plan = append(plan, plannedTransfer{artifact: a, destName: name})
	}
	return plan, nil
}

// checkOverlap rejects destinations that would destroy or overwrite the sources.
func checkOverlap(dest, sourceRoot string, mode Mode) error {
	src, err := filepath.Abs(sourceRoot)
	if err != nil {
		return fmt.Errorf("%w: %v", dxerrors.ErrSourceUnavailable, err)
	}
	if src == dest {
		return fmt.Errorf("%w: destination %s is the source directory", dxerrors.ErrDestinationUnavailable, dest)
	}
	if mode.ClearsDestination() && within(dest, src) {
		return fmt.Errorf("%w: destination %s contains the source directory", dxerrors.ErrDestinationUnavailable, dest)
	}
	return nil
}

// checkArtifactDirs repeats the overlap check for each matched file, since
// a pattern with wildcards in its directories can reach below or beside
// the source root.
func checkArtifactDirs(plan []plannedTransfer, dest string, mode Mode) error {
	for _, p := range plan {
		path, err := filepath.Abs(p.artifact.Path)
		if err != nil {
			return fmt.Errorf("%w: %v", dxerrors.ErrSourceUnavailable, err)
		}
		if filepath.Dir(path) == dest {
			return fmt.Errorf("%w: %s already holds artifact %s", dxerrors.ErrDestinationUnavailable, dest, p.artifact.Path)
		}
		if mode.ClearsDestination() && within(dest, path) {
			return fmt.Errorf("%w: destination %s contains artifact %s", dxerrors.ErrDestinationUnavailable, dest, p.artifact.Path)
		}
	}
	return nil
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// sameFile reports whether dst already is src, e.g. through a symlinked directory.
func sameFile(src, dst string) bool {
	si, err := os.Stat(src)
	if err != nil {
		return false
	}
	di, err := os.Stat(dst)
	if err != nil {
		return false
	}
	return os.SameFile(si, di)
}

// prepareDestination creates the destination when the mode allows it and
// verifies it is a writable directory.
func prepareDestination(dest string, mode Mode) error {
	info, err := os.Stat(dest)
	switch {
	case err == nil && !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", dxerrors.ErrDestinationUnavailable, dest)
	case errors.Is(err, os.ErrNotExist) && mode.CreatesDestination():
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("%w: %v", dxerrors.ErrDestinationUnavailable, err)
		}
	case err != nil:
		return fmt.Errorf("%w: %v", dxerrors.ErrDestinationUnavailable, err)
	}

	probe, err := os.CreateTemp(dest, ".devexport-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %v", dxerrors.ErrDestinationUnavailable, dest, err)
	}
	name := probe.Name()
	probe.Close()
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("%w: %v", dxerrors.ErrDestinationUnavailable, err)
	}
	return nil
}

// clearDir removes every entry of dir, subdirectories included, and
// returns the removed names.
func clearDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dxerrors.ErrDestinationUnavailable, err)
	}
	removed := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return removed, fmt.Errorf("%w: clear %s: %v", dxerrors.ErrDestinationUnavailable, entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

func joinFailures(res *Result, extra error) error {
	if len(res.Failures) == 0 {
		return extra
	}
	errs := make([]error, 0, len(res.Failures)+1)
	for _, f := range res.Failures {
		errs = append(errs, f)
	}
	if extra != nil {
		errs = append(errs, extra)
	}
	return fmt.Errorf("%d of %d artifacts failed: %w", len(res.Failures), res.Matched, errors.Join(errs...))
}
