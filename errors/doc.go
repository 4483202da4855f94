// Package errors provides the export error taxonomy and CLI error messaging.
//
// Core types:
//   - CLIError: Wraps errors with message, suggestion, and details
//   - TransferError: Names the artifact whose copy or move failed
//   - ErrorMessenger: Interface for customizing error messages
//
// Sentinel errors, one per failure class:
//   - ErrBuildStepFailed: The build tool exited non-zero
//   - ErrSourceUnavailable: The artifact directory does not exist
//   - ErrDestinationUnavailable: The destination cannot be created or written
//   - ErrRevisionUnavailable: No revision available for tagging
//   - ErrTransferFailed: An artifact could not be copied or moved
//   - ErrMissingArgument: A mode requiring a destination got none
//
// Example usage:
//
//	res, err := exporter.Export(ctx, req)
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, errors.Wrap(err, errors.WithPattern(req.SourcePattern)))
//	    os.Exit(errors.ExitCode(err))
//	}
package errors
