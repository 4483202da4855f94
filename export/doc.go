// Package export publishes build artifacts into a destination directory.
//
// An export enumerates the files matching a glob, computes each
// destination name (optionally tagged with a build identifier), prepares
// the destination according to a Mode, and copies or moves every
// artifact exactly once:
//
//   - ModeReplaceAll creates the destination if needed and empties it first
//   - ModeCopyMerge copies into an existing destination, leaving other files alone
//   - ModeMoveMerge moves into an existing destination, leaving other files alone
//
// Example usage:
//
//	res, err := export.New(logger).Export(ctx, export.Request{
//	    SourcePattern: "sdk/build/libs/*.jar",
//	    Destination:   "jars",
//	    Mode:          export.ModeReplaceAll,
//	    Strategy:      export.StrategyRevision,
//	    Identifier:    "1a2b3c4",
//	})
package export
