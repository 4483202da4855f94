package integrationtest

import (
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/randalmurphal/devexport"
	"github.com/randalmurphal/devexport/artifact"
	"github.com/randalmurphal/devexport/build"
	"github.com/randalmurphal/devexport/export"
	"github.com/randalmurphal/devexport/git"
	"github.com/randalmurphal/devexport/notify"
	"github.com/randalmurphal/devexport/reveal"
)

// fakeGradle stands in for ./gradlew: it wipes and regenerates
// sdk/build/libs with the jar names a real SDK build produces.
const fakeGradle = `#!/bin/sh
set -e
rm -rf sdk/build
mkdir -p sdk/build/libs
for name in sdk sdk-javadoc sdk-sources; do
  echo "$name built from $(git rev-parse HEAD)" > "sdk/build/libs/$name.jar"
done
`

// setupTempRepo creates a git repository containing a fake gradlew.
func setupTempRepo(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake build is a shell script")
	}

	dir := t.TempDir()

	gitRun(t, dir, "init")
	gitRun(t, dir, "config", "user.email", "test@example.com")
	gitRun(t, dir, "config", "user.name", "Test User")

	if err := os.WriteFile(filepath.Join(dir, "gradlew"), []byte(fakeGradle), 0o755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("sdk/build/\njars/\n.devexport/\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	gitRun(t, dir, "add", ".")
	gitRun(t, dir, "commit", "-m", "Initial commit")

	return dir
}

func gitRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupPipeline wires a Pipeline the way the CLI does, rooted at repoPath.
func setupPipeline(t *testing.T, repoPath string, n notify.Notifier) *devexport.Pipeline {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gitCtx, err := git.NewContext(repoPath)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if n == nil {
		n = notify.NopNotifier{}
	}

	return &devexport.Pipeline{
		Build: &build.Step{
			Command: "./gradlew clean javadocRelease jarRelease",
			Dir:     repoPath,
			Stdout:  io.Discard,
			Stderr:  io.Discard,
			Logger:  logger,
		},
		Exporter: export.New(logger),
		Git:      gitCtx,
		History:  artifact.NewStore(artifact.Config{BaseDir: filepath.Join(repoPath, ".devexport")}),
		Notifier: n,
		Revealer: reveal.Nop{},
		Logger:   logger,
	}
}

func libsPattern(repoPath string) string {
	return filepath.Join(repoPath, "sdk", "build", "libs", "*.jar")
}
