// Package build runs the external build step that produces artifacts.
//
// The build is a checked precondition of every export: a non-zero exit
// status, a command that cannot be parsed, or a binary that cannot be
// started all return an *Error wrapping errors.ErrBuildStepFailed, and
// the caller is expected to stop before touching any destination.
//
// Example usage:
//
//	step := &build.Step{
//	    Command: build.DefaultCommand,
//	    Stdout:  os.Stdout,
//	    Stderr:  os.Stderr,
//	}
//	if _, err := step.Run(ctx); err != nil {
//	    return err
//	}
package build
