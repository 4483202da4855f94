// Package git provides the read-only git queries used when exporting
// artifacts: repository detection, the HEAD commit and its short form
// used for revision tags, branch and working tree status.
//
// Core types:
//   - Context: Git repository context
//   - CommandRunner: Interface for executing git commands (with mock for testing)
//
// Example usage:
//
//	ctx, err := git.NewContext(".")
//	if err != nil {
//	    return err // git.ErrNotGitRepo outside a repository
//	}
//	rev, err := ctx.ShortRevision(git.DefaultRevisionLength)
package git
