package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/randalmurphal/devexport"
	"github.com/randalmurphal/devexport/artifact"
)

// printer writes human-oriented output. Logs go to stderr through slog;
// summaries go to stdout through printer.
type printer struct {
	w     io.Writer
	ok    *color.Color
	warn  *color.Color
	bad   *color.Color
	faint *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:     w,
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow),
		bad:   color.New(color.FgRed, color.Bold),
		faint: color.New(color.Faint),
	}
	if noColor {
		for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.faint} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) exportSummary(r *devexport.Report) {
	res := r.Export
	var total int64
	for _, t := range res.Transfers {
		total += t.Bytes
		fmt.Fprintf(p.w, "  %s %s %s\n", p.ok.Sprint("+"), filepath.Base(t.DestPath), p.faint.Sprintf("(%s)", humanize.Bytes(uint64(t.Bytes))))
	}
	for _, f := range res.Failures {
		fmt.Fprintf(p.w, "  %s %s %s\n", p.bad.Sprint("x"), filepath.Base(f.Artifact), p.faint.Sprint(f.Err))
	}

	switch {
	case res.Matched == 0:
		p.warn.Fprintf(p.w, "No artifacts matched; %s left as is.\n", res.Destination)
	case len(res.Failures) == 0:
		fmt.Fprintf(p.w, "%s %d %s (%s) to %s\n",
			p.ok.Sprint("Exported"), len(res.Transfers), plural(len(res.Transfers), "artifact"),
			humanize.Bytes(uint64(total)), res.Destination)
	default:
		fmt.Fprintf(p.w, "%s %d of %d artifacts to %s\n",
			p.warn.Sprint("Exported"), len(res.Transfers), res.Matched, res.Destination)
	}
	if r.Revision != "" {
		fmt.Fprintf(p.w, "%s\n", p.faint.Sprintf("revision %s, run %s", r.Revision, r.RunID))
	}
}

func (p *printer) failure(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", p.bad.Sprint("Error:"), err)
}

func (p *printer) history(records []*artifact.Record, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(p.w, "No exports recorded yet.")
		return
	}
	for _, rec := range records {
		status := p.ok.Sprint(rec.Status)
		if rec.Status != artifact.StatusCompleted {
			status = p.bad.Sprint(rec.Status)
		}
		rev := rec.Revision
		if rev == "" {
			rev = "-"
		}
		fmt.Fprintf(p.w, "%s  %-12s %-10s %-8s %3d files %8s  %s  %s\n",
			rec.ID,
			status,
			rec.Mode,
			rev,
			len(rec.Transfers),
			humanize.Bytes(uint64(rec.Bytes())),
			rec.Destination,
			p.faint.Sprint(humanize.RelTime(rec.StartedAt, now, "ago", "from now")),
		)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
