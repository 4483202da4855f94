package git

import "errors"

// Git operation errors.
var (
	// ErrNotGitRepo indicates the path is not a git repository.
	ErrNotGitRepo = errors.New("not a git repository")

	// ErrNoCommits indicates HEAD does not resolve to a commit.
	ErrNoCommits = errors.New("repository has no commits")
)

// Error wraps a git command error with context.
type Error struct {
	Op     string // Operation that failed (e.g., "get HEAD commit")
	Cmd    string // Git command that was run
	Output string // Combined stdout/stderr output
	Err    error  // Underlying error
}

func (e *Error) Error() string {
	if e.Output != "" {
		return e.Op + ": " + e.Output
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
