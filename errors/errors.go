package errors

import "errors"

// Export errors. Every failure surfaced by devexport wraps exactly one of these.
var (
	// ErrSourceUnavailable indicates the directory holding build artifacts does not exist.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrDestinationUnavailable indicates the destination cannot be created or written.
	ErrDestinationUnavailable = errors.New("destination unavailable")

	// ErrRevisionUnavailable indicates a revision tag was requested outside a usable repository.
	ErrRevisionUnavailable = errors.New("revision unavailable")

	// ErrTransferFailed indicates a single artifact could not be copied or moved.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrMissingArgument indicates a required command-line argument was not given.
	ErrMissingArgument = errors.New("missing argument")

	// ErrBuildStepFailed indicates the external build tool did not succeed.
	ErrBuildStepFailed = errors.New("build step failed")

	// ErrNameCollision indicates two artifacts map to the same destination name.
	ErrNameCollision = errors.New("destination name collision")
)

// TransferError identifies the artifact whose copy or move failed.
type TransferError struct {
	Artifact string // Source path of the artifact
	Op       string // "copy", "move" or "plan"
	Err      error  // Underlying filesystem error
}

func (e *TransferError) Error() string {
	return e.Op + " " + e.Artifact + ": " + e.Err.Error()
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Is reports every TransferError as ErrTransferFailed.
func (e *TransferError) Is(target error) bool {
	return target == ErrTransferFailed
}
