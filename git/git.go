package git

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultRevisionLength is the number of commit hash characters used for tags.
const DefaultRevisionLength = 7

// Context runs read-only git queries against a repository.
type Context struct {
	repoPath string        // Path to the repository (any directory inside the work tree)
	runner   CommandRunner // Command runner (defaults to ExecRunner)
}

// Option configures Context.
type Option func(*Context)

// NewContext creates a new git context for the repository.
// It validates that the path is inside a git work tree and applies any options.
func NewContext(repoPath string, opts ...Option) (*Context, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	g := &Context{
		repoPath: absPath,
		runner:   NewExecRunner(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if _, err := g.runGit("rev-parse", "--git-dir"); err != nil {
		return nil, ErrNotGitRepo
	}

	return g, nil
}

// WithRunner sets a custom command runner for git operations.
// This is primarily used for testing to inject mock command execution.
func WithRunner(runner CommandRunner) Option {
	return func(g *Context) {
		g.runner = runner
	}
}

// CurrentBranch returns the current branch name.
func (g *Context) CurrentBranch() (string, error) {
	branch, err := g.runGit("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", &Error{Op: "get current branch", Err: err}
	}
	return branch, nil
}

// HeadCommit returns the current HEAD commit SHA.
// Returns ErrNoCommits if the repository has no commits yet.
func (g *Context) HeadCommit() (string, error) {
	sha, err := g.runGit("rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", &Error{Op: "get HEAD commit", Err: ErrNoCommits}
	}
	return sha, nil
}

// ShortRevision returns the first n characters of the HEAD commit SHA.
// A non-positive n uses DefaultRevisionLength.
func (g *Context) ShortRevision(n int) (string, error) {
	if n <= 0 {
		n = DefaultRevisionLength
	}
	sha, err := g.HeadCommit()
	if err != nil {
		return "", err
	}
	sha = strings.TrimSpace(sha)
	if len(sha) < n {
		return "", &Error{Op: "shorten revision", Output: "unexpected commit hash " + sha, Err: ErrNoCommits}
	}
	return sha[:n], nil
}

// Status returns the working tree status in short format.
func (g *Context) Status() (string, error) {
	status, err := g.runGit("status", "--short")
	if err != nil {
		return "", &Error{Op: "status", Err: err}
	}
	return status, nil
}

// IsClean returns true if the working tree has no uncommitted changes.
func (g *Context) IsClean() (bool, error) {
	status, err := g.Status()
	if err != nil {
		return false, err
	}
	return status == "", nil
}

// runGit executes a git command and returns stdout.
func (g *Context) runGit(args ...string) (string, error) {
	return g.runner.Run(g.repoPath, "git", args...)
}
