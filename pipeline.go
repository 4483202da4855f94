package devexport

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/randalmurphal/devexport/artifact"
	"github.com/randalmurphal/devexport/build"
	dxerrors "github.com/randalmurphal/devexport/errors"
	"github.com/randalmurphal/devexport/export"
	"github.com/randalmurphal/devexport/git"
	"github.com/randalmurphal/devexport/notify"
	"github.com/randalmurphal/devexport/reveal"
)

// Pipeline runs build, revision lookup, export, history and notifications
// in that order. Only Exporter is required.
type Pipeline struct {
	Build    *build.Step      // nil skips the build
	Exporter *export.Exporter // required
	Git      *git.Context     // required for StrategyRevision
	History  *artifact.Store  // nil disables history
	Notifier notify.Notifier  // nil disables notifications
	Revealer reveal.Revealer  // nil disables reveal
	Logger   *slog.Logger
}

// Options configures one run.
type Options struct {
	// Request is passed to the exporter. When Strategy is StrategyRevision
	// and Identifier is empty, the revision is read from Git.
	Request export.Request

	SkipBuild      bool
	RevisionLength int // 0 means git.DefaultRevisionLength
	Reveal         bool
}

// Report describes a finished run. It is returned even when Run fails.
type Report struct {
	RunID    string
	Build    *build.Result
	Revision string
	Export   *export.Result
	Record   *artifact.Record
	Revealed bool
}

// Run executes the pipeline. The build step is checked: a failing build
// aborts the run before the destination is touched.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Report, error) {
	logger := p.logger()
	req := opts.Request

	rec, err := artifact.NewRecord(req.Mode.String(), absOrSame(req.Destination))
	if err != nil {
		return nil, err
	}
	rec.Strategy = req.Strategy.String()
	rec.Pattern = req.SourcePattern
	report := &Report{RunID: rec.ID, Record: rec}
	p.describeCheckout(rec)

	p.notify(ctx, rec, notify.EventExportStarted, notify.SeverityInfo,
		fmt.Sprintf("exporting %s to %s (%s)", req.SourcePattern, rec.Destination, req.Mode), nil)

	if !opts.SkipBuild && p.Build != nil {
		rec.BuildCommand = p.Build.Command
		res, err := p.Build.Run(ctx)
		report.Build = res
		if res != nil {
			rec.BuildSeconds = res.Duration.Seconds()
			rec.BuildExitCode = res.ExitCode
		}
		if err != nil {
			p.finish(rec, artifact.StatusBuildFailed, err)
			p.notify(ctx, rec, notify.EventBuildFailed, notify.SeverityError, err.Error(), nil)
			return report, err
		}
	}

	if req.Strategy == export.StrategyRevision && req.Identifier == "" {
		rev, err := p.revision(opts.RevisionLength)
		if err != nil {
			p.finish(rec, artifact.StatusFailed, err)
			p.notify(ctx, rec, notify.EventExportFailed, notify.SeverityError, err.Error(), nil)
			return report, err
		}
		req.Identifier = rev
	}
	report.Revision = req.Identifier
	rec.Revision = req.Identifier

	result, err := p.Exporter.Export(ctx, req)
	report.Export = result
	recordResult(rec, result)

	if err != nil {
		p.finish(rec, artifact.StatusFailed, err)
		p.notify(ctx, rec, notify.EventExportFailed, notify.SeverityError, err.Error(), failureMetadata(result))
		return report, err
	}

	p.finish(rec, artifact.StatusCompleted, nil)
	p.notify(ctx, rec, notify.EventExportCompleted, notify.SeverityInfo,
		fmt.Sprintf("exported %d artifacts to %s", len(result.Transfers), result.Destination),
		map[string]any{"artifacts": len(result.Transfers), "bytes": rec.Bytes()})

	if opts.Reveal && p.Revealer != nil {
		if err := p.Revealer.Open(ctx, result.Destination); err != nil {
			logger.Debug("could not reveal destination", "destination", result.Destination, "error", err)
		} else {
			report.Revealed = true
		}
	}
	return report, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Pipeline) revision(length int) (string, error) {
	if p.Git == nil {
		return "", fmt.Errorf("%w: not a git repository", dxerrors.ErrRevisionUnavailable)
	}
	rev, err := p.Git.ShortRevision(length)
	if err != nil {
		return "", fmt.Errorf("%w: %v", dxerrors.ErrRevisionUnavailable, err)
	}
	return rev, nil
}

// describeCheckout records branch and dirty state. Both are informational.
func (p *Pipeline) describeCheckout(rec *artifact.Record) {
	if p.Git == nil {
		return
	}
	if branch, err := p.Git.CurrentBranch(); err == nil {
		rec.Branch = branch
	}
	if clean, err := p.Git.IsClean(); err == nil {
		rec.Dirty = !clean
	}
}

// finish closes the record and saves it. History is best-effort.
func (p *Pipeline) finish(rec *artifact.Record, status artifact.Status, err error) {
	rec.Finish(status)
	if err != nil {
		rec.Error = err.Error()
	}
	if p.History == nil {
		return
	}
	if err := p.History.Save(rec); err != nil {
		p.logger().Warn("could not save export history", "run_id", rec.ID, "error", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, rec *artifact.Record, typ notify.EventType, severity, msg string, meta map[string]any) {
	if p.Notifier == nil {
		return
	}
	err := p.Notifier.Notify(ctx, notify.Event{
		Type:        typ,
		RunID:       rec.ID,
		Mode:        rec.Mode,
		Destination: rec.Destination,
		Revision:    rec.Revision,
		Message:     msg,
		Severity:    severity,
		Timestamp:   time.Now(),
		Metadata:    meta,
	})
	if err != nil {
		p.logger().Warn("notification failed", "event", typ, "error", err)
	}
}

func recordResult(rec *artifact.Record, res *export.Result) {
	if res == nil {
		return
	}
	rec.Destination = res.Destination
	rec.Removed = res.Removed
	for _, t := range res.Transfers {
		rec.Transfers = append(rec.Transfers, artifact.TransferRecord{
			Source: t.Artifact.Path,
			Dest:   t.DestPath,
			Bytes:  t.Bytes,
			SHA256: t.SHA256,
		})
	}
	for _, f := range res.Failures {
		rec.Failures = append(rec.Failures, artifact.FailureRecord{
			Artifact: f.Artifact,
			Op:       f.Op,
			Error:    f.Err.Error(),
		})
	}
}

func failureMetadata(res *export.Result) map[string]any {
	if res == nil || len(res.Failures) == 0 {
		return nil
	}
	return map[string]any{
		"failed":      len(res.Failures),
		"transferred": len(res.Transfers),
	}
}

func absOrSame(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
