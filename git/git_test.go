package git

import (
	"errors"
	"testing"

	"github.com/randalmurphal/devexport/testutil"
)

func TestNewContext(t *testing.T) {
	t.Run("valid repo", func(t *testing.T) {
		dir := testutil.SetupTestRepo(t)

		if _, err := NewContext(dir); err != nil {
			t.Fatalf("NewContext: %v", err)
		}
	})

	t.Run("not a repo", func(t *testing.T) {
		_, err := NewContext(t.TempDir())
		if !errors.Is(err, ErrNotGitRepo) {
			t.Errorf("err = %v, want ErrNotGitRepo", err)
		}
	})
}

func TestShortRevision(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	full := testutil.GetHeadSHA(t, dir)

	g, err := NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"default", 0, full[:7]},
		{"negative", -1, full[:7]},
		{"seven", 7, full[:7]},
		{"twelve", 12, full[:12]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.ShortRevision(tt.n)
			if err != nil {
				t.Fatalf("ShortRevision: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShortRevision(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestShortRevision_Deterministic(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	g, err := NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	first, err := g.ShortRevision(7)
	if err != nil {
		t.Fatalf("ShortRevision: %v", err)
	}
	second, err := g.ShortRevision(7)
	if err != nil {
		t.Fatalf("ShortRevision: %v", err)
	}
	if first != second {
		t.Errorf("revision changed without a commit: %q != %q", first, second)
	}

	testutil.CommitFile(t, dir, "next.txt", "next", "Next commit")
	third, err := g.ShortRevision(7)
	if err != nil {
		t.Fatalf("ShortRevision: %v", err)
	}
	if third == first {
		t.Error("revision should change after a new commit")
	}
}

func TestShortRevision_NoCommits(t *testing.T) {
	dir := testutil.SetupEmptyRepo(t)

	g, err := NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	_, err = g.ShortRevision(7)
	if !errors.Is(err, ErrNoCommits) {
		t.Errorf("err = %v, want ErrNoCommits", err)
	}

	var gitErr *Error
	if !errors.As(err, &gitErr) {
		t.Fatalf("err should be *Error, got %T", err)
	}
	if gitErr.Op != "get HEAD commit" {
		t.Errorf("Op = %q, want %q", gitErr.Op, "get HEAD commit")
	}
}

func TestShortRevision_Mock(t *testing.T) {
	runner := NewMockRunner()
	runner.OnCommand("git", "rev-parse", "--git-dir").Return(".git", nil)
	runner.OnCommand("git", "rev-parse", "--verify", "HEAD").Return("abc", nil)

	g, err := NewContext("/repo", WithRunner(runner))
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	if _, err := g.ShortRevision(7); !errors.Is(err, ErrNoCommits) {
		t.Errorf("short hash should be rejected, got %v", err)
	}
	if !runner.WasCalled("git", "rev-parse", "--verify", "HEAD") {
		t.Error("expected rev-parse HEAD to be called")
	}
}

func TestIsClean(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	g, err := NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	clean, err := g.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if !clean {
		t.Error("fresh repo should be clean")
	}

	testutil.WriteArtifacts(t, dir, map[string]string{"dirty.txt": "x"})

	clean, err = g.IsClean()
	if err != nil {
		t.Fatalf("IsClean: %v", err)
	}
	if clean {
		t.Error("repo with untracked file should not be clean")
	}
}

func TestCurrentBranch(t *testing.T) {
	dir := testutil.SetupTestRepo(t)
	g, err := NewContext(dir)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}

	branch, err := g.CurrentBranch()
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if branch == "" {
		t.Error("CurrentBranch should not be empty")
	}
}

func TestError(t *testing.T) {
	t.Run("with output", func(t *testing.T) {
		err := &Error{Op: "status", Output: "fatal: bad", Err: errors.New("exit status 128")}
		if got, want := err.Error(), "status: fatal: bad"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("without output", func(t *testing.T) {
		err := &Error{Op: "get HEAD commit", Err: ErrNoCommits}
		if got, want := err.Error(), "get HEAD commit: repository has no commits"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
		if !errors.Is(err, ErrNoCommits) {
			t.Error("errors.Is should see ErrNoCommits")
		}
	})
}
