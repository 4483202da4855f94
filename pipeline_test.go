package devexport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"github.com/randalmurphal/devexport/artifact"
	"github.com/randalmurphal/devexport/build"
	dxerrors "github.com/randalmurphal/devexport/errors"
	"github.com/randalmurphal/devexport/export"
	"github.com/randalmurphal/devexport/git"
	"github.com/randalmurphal/devexport/notify"
	"github.com/randalmurphal/devexport/testutil"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) types() []notify.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingRevealer struct {
	opened []string
	err    error
}

func (r *recordingRevealer) Open(_ context.Context, path string) error {
	r.opened = append(r.opened, path)
	return r.err
}

type fixture struct {
	pattern  string
	dest     string
	store    *artifact.Store
	notifier *recordingNotifier
	revealer *recordingRevealer
	pipeline *Pipeline
}

func newFixture(t *testing.T, runner *git.MockRunner) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()
	testutil.WriteArtifacts(t, root, map[string]string{
		"sdk/build/libs/sdk.jar":         "sdk",
		"sdk/build/libs/sdk-javadoc.jar": "javadoc",
	})

	runner.OnCommand("git", "rev-parse", "--git-dir").Return(".git", nil)
	runner.OnCommand("git", "rev-parse", "--abbrev-ref", "HEAD").Return("main", nil)
	runner.OnCommand("git", "status", "--short").Return("", nil)
	gitCtx, err := git.NewContext(root, git.WithRunner(runner))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	f := &fixture{
		pattern:  filepath.Join(root, "sdk", "build", "libs", "*.jar"),
		dest:     filepath.Join(root, "jars"),
		store:    artifact.NewStore(artifact.Config{BaseDir: filepath.Join(root, ".devexport")}),
		notifier: &recordingNotifier{},
		revealer: &recordingRevealer{},
	}
	f.pipeline = &Pipeline{
		Exporter: export.New(logger),
		Git:      gitCtx,
		History:  f.store,
		Notifier: f.notifier,
		Revealer: f.revealer,
		Logger:   logger,
	}
	return f
}

func (f *fixture) replaceAll() Options {
	return Options{
		Request: export.Request{
			SourcePattern: f.pattern,
			Destination:   f.dest,
			Mode:          export.ModeReplaceAll,
			Strategy:      export.StrategyRevision,
		},
		Reveal: true,
	}
}

func (f *fixture) load(t *testing.T, runID string) *artifact.Record {
	t.Helper()
	rec, err := f.store.Load(runID)
	if err != nil {
		t.Fatalf("Load(%s): %v", runID, err)
	}
	return rec
}

func wantEvents(t *testing.T, n *recordingNotifier, want ...notify.EventType) {
	t.Helper()
	if got := n.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func wantDir(t *testing.T, dir string, want ...string) {
	t.Helper()
	if got := testutil.ListDir(t, dir); !reflect.DeepEqual(got, want) {
		t.Errorf("%s = %v, want %v", dir, got, want)
	}
}

func TestPipeline_ReplaceAllWithRevision(t *testing.T) {
	runner := git.NewMockRunner()
	runner.OnCommand("git", "rev-parse", "--verify", "HEAD").Return("1a2b3c4d5e6f7a8b9c0d", nil)
	f := newFixture(t, runner)

	report, err := f.pipeline.Run(testutil.TestContext(t), f.replaceAll())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Revision != "1a2b3c4" {
		t.Errorf("Revision = %q, want %q", report.Revision, "1a2b3c4")
	}
	wantDir(t, f.dest, "sdk-1a2b3c4.jar", "sdk-javadoc-1a2b3c4.jar")
	wantEvents(t, f.notifier, notify.EventExportStarted, notify.EventExportCompleted)
	if !report.Revealed || !reflect.DeepEqual(f.revealer.opened, []string{f.dest}) {
		t.Errorf("revealed = %v %v, want %s", report.Revealed, f.revealer.opened, f.dest)
	}

	rec := f.load(t, report.RunID)
	if rec.Status != artifact.StatusCompleted {
		t.Errorf("Status = %s, want completed", rec.Status)
	}
	if rec.Revision != "1a2b3c4" || rec.Branch != "main" || rec.Dirty {
		t.Errorf("record checkout = %q %q dirty=%v", rec.Revision, rec.Branch, rec.Dirty)
	}
	if len(rec.Transfers) != 2 {
		t.Errorf("Transfers = %d, want 2", len(rec.Transfers))
	}
	if rec.Destination != f.dest {
		t.Errorf("Destination = %q, want %q", rec.Destination, f.dest)
	}
}

func TestPipeline_RevisionUnavailable(t *testing.T) {
	runner := git.NewMockRunner()
	runner.OnCommand("git", "rev-parse", "--verify", "HEAD").Return("", errors.New("fatal: needed a single revision"))
	f := newFixture(t, runner)

	report, err := f.pipeline.Run(testutil.TestContext(t), f.replaceAll())
	if !errors.Is(err, dxerrors.ErrRevisionUnavailable) {
		t.Fatalf("err = %v, want ErrRevisionUnavailable", err)
	}
	if code := dxerrors.ExitCode(err); code != dxerrors.ExitRevisionUnavailable {
		t.Errorf("ExitCode = %d, want %d", code, dxerrors.ExitRevisionUnavailable)
	}

	if testutil.Exists(t, f.dest) {
		t.Error("destination must not be created without a revision")
	}
	wantEvents(t, f.notifier, notify.EventExportStarted, notify.EventExportFailed)
	if len(f.revealer.opened) != 0 {
		t.Errorf("revealed %v after a failure", f.revealer.opened)
	}

	rec := f.load(t, report.RunID)
	if rec.Status != artifact.StatusFailed || rec.Error == "" {
		t.Errorf("record = %s %q, want failed with an error", rec.Status, rec.Error)
	}
}

func TestPipeline_NoGitContext(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())
	f.pipeline.Git = nil

	_, err := f.pipeline.Run(testutil.TestContext(t), f.replaceAll())
	if !errors.Is(err, dxerrors.ErrRevisionUnavailable) {
		t.Errorf("err = %v, want ErrRevisionUnavailable", err)
	}
}

func TestPipeline_BuildFailureAborts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	f := newFixture(t, git.NewMockRunner())
	testutil.WriteArtifacts(t, f.dest, map[string]string{"previous.jar": "old"})
	f.pipeline.Build = &build.Step{Command: `sh -c "exit 3"`, Stdout: io.Discard, Stderr: io.Discard}

	report, err := f.pipeline.Run(testutil.TestContext(t), f.replaceAll())
	if !errors.Is(err, dxerrors.ErrBuildStepFailed) {
		t.Fatalf("err = %v, want ErrBuildStepFailed", err)
	}
	if code := dxerrors.ExitCode(err); code != dxerrors.ExitBuildFailed {
		t.Errorf("ExitCode = %d, want %d", code, dxerrors.ExitBuildFailed)
	}
	if report.Build == nil || report.Build.ExitCode != 3 {
		t.Fatalf("Build = %+v, want exit code 3", report.Build)
	}

	wantDir(t, f.dest, "previous.jar")
	wantEvents(t, f.notifier, notify.EventExportStarted, notify.EventBuildFailed)

	rec := f.load(t, report.RunID)
	if rec.Status != artifact.StatusBuildFailed || rec.BuildExitCode != 3 {
		t.Errorf("record = %s exit %d, want build_failed exit 3", rec.Status, rec.BuildExitCode)
	}
}

func TestPipeline_BuildThenExport(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	f := newFixture(t, git.NewMockRunner())
	libs := filepath.Dir(f.pattern)
	f.pipeline.Build = &build.Step{
		Command: `sh -c 'echo fresh > "$LIBS/sdk-extra.jar"'`,
		Env:     []string{"LIBS=" + libs},
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := os.MkdirAll(f.dest, 0o755); err != nil {
		t.Fatal(err)
	}
	report, err := f.pipeline.Run(testutil.TestContext(t), Options{
		Request: export.Request{
			SourcePattern: f.pattern,
			Destination:   f.dest,
			Mode:          export.ModeCopyMerge,
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantDir(t, f.dest, "sdk-extra.jar", "sdk-javadoc.jar", "sdk.jar")
	if len(report.Export.Transfers) != 3 {
		t.Errorf("Transfers = %d, want 3", len(report.Export.Transfers))
	}
	if len(f.revealer.opened) != 0 {
		t.Error("reveal not requested")
	}
}

func TestPipeline_SkipBuild(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())
	f.pipeline.Build = &build.Step{Command: "definitely-not-a-real-build-tool"}

	opts := f.replaceAll()
	opts.SkipBuild = true
	opts.Request.Identifier = "cafe123"

	report, err := f.pipeline.Run(testutil.TestContext(t), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Build != nil {
		t.Errorf("Build = %+v, want nil", report.Build)
	}
	wantDir(t, f.dest, "sdk-cafe123.jar", "sdk-javadoc-cafe123.jar")
}

func TestPipeline_MissingDestination(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())

	_, err := f.pipeline.Run(testutil.TestContext(t), Options{
		Request: export.Request{SourcePattern: f.pattern, Mode: export.ModeMoveMerge},
	})
	if !errors.Is(err, dxerrors.ErrMissingArgument) {
		t.Fatalf("err = %v, want ErrMissingArgument", err)
	}
	if code := dxerrors.ExitCode(err); code != dxerrors.ExitUsage {
		t.Errorf("ExitCode = %d, want %d", code, dxerrors.ExitUsage)
	}
	wantDir(t, filepath.Dir(f.pattern), "sdk-javadoc.jar", "sdk.jar")
}

func TestPipeline_TransferFailureReported(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())
	f.pipeline.Exporter.Copy = func(src, dst string) error { return errors.New("no space left on device") }

	report, err := f.pipeline.Run(testutil.TestContext(t), Options{
		Request: export.Request{
			SourcePattern: f.pattern,
			Destination:   f.dest,
			Mode:          export.ModeReplaceAll,
			Identifier:    "abc1234",
			Strategy:      export.StrategyRevision,
		},
		Reveal: true,
	})
	if !errors.Is(err, dxerrors.ErrTransferFailed) {
		t.Fatalf("err = %v, want ErrTransferFailed", err)
	}
	if code := dxerrors.ExitCode(err); code != dxerrors.ExitTransferFailed {
		t.Errorf("ExitCode = %d, want %d", code, dxerrors.ExitTransferFailed)
	}
	if n := len(dxerrors.TransferErrors(err)); n != 2 {
		t.Errorf("TransferErrors = %d, want 2", n)
	}
	if len(f.revealer.opened) != 0 {
		t.Error("failed exports are not revealed")
	}

	rec := f.load(t, report.RunID)
	if len(rec.Failures) != 2 || rec.Failures[0].Op != "copy" {
		t.Errorf("Failures = %+v, want two copy failures", rec.Failures)
	}
}

func TestPipeline_RevealFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())
	f.revealer.err = errors.New("no display")

	opts := f.replaceAll()
	opts.Request.Identifier = "abc1234"
	report, err := f.pipeline.Run(testutil.TestContext(t), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Revealed {
		t.Error("Revealed should be false when the browser fails")
	}
	if len(f.revealer.opened) != 1 {
		t.Errorf("opened = %v, want one attempt", f.revealer.opened)
	}
}

func TestPipeline_HistoryOptional(t *testing.T) {
	f := newFixture(t, git.NewMockRunner())
	f.pipeline.History = nil
	f.pipeline.Notifier = nil
	f.pipeline.Revealer = nil

	opts := f.replaceAll()
	opts.Request.Identifier = "abc1234"
	report, err := f.pipeline.Run(testutil.TestContext(t), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Error("RunID should be set")
	}
	if testutil.Exists(t, f.store.BaseDir()) {
		t.Error("history directory created with History disabled")
	}
}
