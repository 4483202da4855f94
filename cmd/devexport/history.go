package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/randalmurphal/devexport/artifact"
	dxerrors "github.com/randalmurphal/devexport/errors"
)

func runHistory(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("devexport history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	limit := fs.Int("n", 10, "number of records to show (0 for all)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return dxerrors.ExitOK
		}
		return dxerrors.ExitUsage
	}

	e, err := setup(nil, false, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "devexport:", err)
		return dxerrors.ExitUsage
	}

	records, errs := e.historyStore().List()
	for _, err := range errs {
		e.logger.Warn("skipping unreadable history record", "error", err)
	}
	if *limit > 0 && len(records) > *limit {
		records = records[:*limit]
	}
	e.out.history(records, time.Now())

	usage, err := artifact.NewLifecycleManager(e.historyStore(), artifact.DefaultRetentionConfig()).DiskUsage()
	if err != nil {
		e.logger.Warn("could not measure history", "error", err)
		return dxerrors.ExitOK
	}
	if usage.RunCount > 0 {
		fmt.Fprintf(stdout, "%d %s stored, %s on disk\n",
			usage.RunCount, plural(usage.RunCount, "record"), humanize.Bytes(uint64(usage.TotalSize)))
	}
	return dxerrors.ExitOK
}

func runPrune(_ context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("devexport prune", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dryRun := fs.Bool("dry-run", false, "report what would be deleted without deleting")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return dxerrors.ExitOK
		}
		return dxerrors.ExitUsage
	}

	e, err := setup(nil, false, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "devexport:", err)
		return dxerrors.ExitUsage
	}

	m := artifact.NewLifecycleManager(e.historyStore(), artifact.RetentionConfig{
		KeepLast: e.settings.HistoryKeep,
		MaxAge:   e.settings.HistoryRetention,
	})
	res, err := m.Prune(*dryRun)
	if err != nil {
		e.out.failure(stderr, err)
		return dxerrors.ExitInternal
	}

	verb := "Deleted"
	if *dryRun {
		verb = "Would delete"
	}
	for _, id := range res.Deleted {
		fmt.Fprintf(stdout, "  - %s\n", id)
	}
	fmt.Fprintf(stdout, "%s %d %s, kept %d, %s reclaimed\n",
		verb, len(res.Deleted), plural(len(res.Deleted), "record"), len(res.Kept), humanize.Bytes(uint64(res.SpaceSaved)))
	for _, msg := range res.Errors {
		e.logger.Warn("prune", "error", msg)
	}
	if len(res.Errors) > 0 {
		return dxerrors.ExitInternal
	}
	return dxerrors.ExitOK
}
