package errors

import "errors"

// Process exit codes for the devexport CLI.
const (
	ExitOK                     = 0
	ExitUsage                  = 1
	ExitBuildFailed            = 2
	ExitSourceUnavailable      = 3
	ExitDestinationUnavailable = 4
	ExitRevisionUnavailable    = 5
	ExitTransferFailed         = 6
	ExitInternal               = 7
)

// IsBuildError checks if an error came from the build step.
func IsBuildError(err error) bool {
	return err != nil && errors.Is(err, ErrBuildStepFailed)
}

// IsSourceError checks if an error is about the artifact source.
func IsSourceError(err error) bool {
	return err != nil && errors.Is(err, ErrSourceUnavailable)
}

// IsDestinationError checks if an error is about the destination directory.
func IsDestinationError(err error) bool {
	return err != nil && errors.Is(err, ErrDestinationUnavailable)
}

// IsRevisionError checks if an error is about revision lookup.
func IsRevisionError(err error) bool {
	return err != nil && errors.Is(err, ErrRevisionUnavailable)
}

// IsTransferError checks if an error is a failed artifact transfer.
func IsTransferError(err error) bool {
	return err != nil && errors.Is(err, ErrTransferFailed)
}

// IsUsageError checks if an error is a command-line usage error.
func IsUsageError(err error) bool {
	return err != nil && errors.Is(err, ErrMissingArgument)
}

// ExitCode maps an error to the CLI exit status.
// Usage errors are checked first so a missing argument always exits 1.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsUsageError(err):
		return ExitUsage
	case IsBuildError(err):
		return ExitBuildFailed
	case IsRevisionError(err):
		return ExitRevisionUnavailable
	case IsSourceError(err):
		return ExitSourceUnavailable
	case IsDestinationError(err):
		return ExitDestinationUnavailable
	case IsTransferError(err):
		return ExitTransferFailed
	default:
		return ExitInternal
	}
}
