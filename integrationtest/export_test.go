package integrationtest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/randalmurphal/devexport"
	"github.com/randalmurphal/devexport/artifact"
	dxerrors "github.com/randalmurphal/devexport/errors"
	"github.com/randalmurphal/devexport/export"
	"github.com/randalmurphal/devexport/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// TestReplaceAllAfterBuild runs the build and a revision-tagged replace-all,
// the flow the original export script performed.
func TestReplaceAllAfterBuild(t *testing.T) {
	repo := setupTempRepo(t)
	rev := gitRun(t, repo, "rev-parse", "HEAD")[:7]
	jars := filepath.Join(repo, "jars")
	require.NoError(t, os.MkdirAll(jars, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jars, "sdk-0000000.jar"), []byte("stale"), 0o644))

	p := setupPipeline(t, repo, nil)
	opts := devexport.Options{
		Request: export.Request{
			SourcePattern: libsPattern(repo),
			Destination:   jars,
			Mode:          export.ModeReplaceAll,
			Strategy:      export.StrategyRevision,
		},
	}

	report, err := p.Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, report.Build)
	assert.Equal(t, 0, report.Build.ExitCode)

	want := []string{
		"sdk-" + rev + ".jar",
		"sdk-javadoc-" + rev + ".jar",
		"sdk-sources-" + rev + ".jar",
	}
	assert.Equal(t, want, listDir(t, jars), "stale jars are replaced")

	// A second run is idempotent.
	_, err = p.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, want, listDir(t, jars))

	records, errs := p.History.List()
	require.Empty(t, errs)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, artifact.StatusCompleted, rec.Status)
		assert.Equal(t, "./gradlew clean javadocRelease jarRelease", rec.BuildCommand)
		assert.Len(t, rec.Transfers, 3)
	}
}

// TestNewCommitChangesTag verifies the tag follows HEAD.
func TestNewCommitChangesTag(t *testing.T) {
	repo := setupTempRepo(t)
	jars := filepath.Join(repo, "jars")
	p := setupPipeline(t, repo, nil)
	opts := devexport.Options{
		Request: export.Request{
			SourcePattern: libsPattern(repo),
			Destination:   jars,
			Mode:          export.ModeReplaceAll,
			Strategy:      export.StrategyRevision,
		},
	}

	first, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "CHANGELOG"), []byte("v2\n"), 0o644))
	gitRun(t, repo, "add", "CHANGELOG")
	gitRun(t, repo, "commit", "-m", "Second commit")

	second, err := p.Run(context.Background(), opts)
	require.NoError(t, err)

	assert.NotEqual(t, first.Revision, second.Revision)
	assert.Contains(t, listDir(t, jars), "sdk-"+second.Revision+".jar")
	assert.NotContains(t, listDir(t, jars), "sdk-"+first.Revision+".jar")
}

// TestMoveMergeAfterBuild moves freshly built artifacts into a shared folder.
func TestMoveMergeAfterBuild(t *testing.T) {
	repo := setupTempRepo(t)
	shared := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(shared, "other-project.jar"), []byte("x"), 0o644))

	p := setupPipeline(t, repo, nil)
	_, err := p.Run(context.Background(), devexport.Options{
		Request: export.Request{
			SourcePattern: libsPattern(repo),
			Destination:   shared,
			Mode:          export.ModeMoveMerge,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"other-project.jar", "sdk-javadoc.jar", "sdk-sources.jar", "sdk.jar"}, listDir(t, shared))
	assert.Empty(t, listDir(t, filepath.Join(repo, "sdk", "build", "libs")))
}

// TestBrokenBuildNotifiesAndKeepsDestination checks the build is checked
// before anything is exported.
func TestBrokenBuildNotifiesAndKeepsDestination(t *testing.T) {
	repo := setupTempRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(repo, "gradlew"), []byte("#!/bin/sh\nexit 1\n"), 0o755))
	jars := filepath.Join(repo, "jars")
	require.NoError(t, os.MkdirAll(jars, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(jars, "sdk-previous.jar"), []byte("previous"), 0o644))

	var (
		mu     sync.Mutex
		events []notify.EventType
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var e notify.Event
		if err := json.Unmarshal(body, &e); err == nil {
			mu.Lock()
			events = append(events, e.Type)
			mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := setupPipeline(t, repo, notify.New(notify.Config{WebhookURL: server.URL}))
	_, err := p.Run(context.Background(), devexport.Options{
		Request: export.Request{
			SourcePattern: libsPattern(repo),
			Destination:   jars,
			Mode:          export.ModeReplaceAll,
			Strategy:      export.StrategyRevision,
		},
	})
	require.Error(t, err)
	assert.True(t, dxerrors.IsBuildError(err))

	assert.Equal(t, []string{"sdk-previous.jar"}, listDir(t, jars))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []notify.EventType{notify.EventExportStarted, notify.EventBuildFailed}, events)
}

// TestHistoryPrune exercises retention over real runs.
func TestHistoryPrune(t *testing.T) {
	repo := setupTempRepo(t)
	p := setupPipeline(t, repo, nil)
	opts := devexport.Options{
		Request: export.Request{
			SourcePattern: libsPattern(repo),
			Destination:   filepath.Join(repo, "jars"),
			Mode:          export.ModeReplaceAll,
			Strategy:      export.StrategyRevision,
		},
	}
	for i := 0; i < 3; i++ {
		_, err := p.Run(context.Background(), opts)
		require.NoError(t, err)
	}

	m := artifact.NewLifecycleManager(p.History, artifact.RetentionConfig{KeepLast: 1, MaxAge: 1})
	res, err := m.Prune(false)
	require.NoError(t, err)
	assert.Len(t, res.Deleted, 2)
	assert.Len(t, res.Kept, 1)

	records, _ := p.History.List()
	assert.Len(t, records, 1)
}
