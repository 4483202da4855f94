// Command devexport builds a project and publishes its artifacts.
//
//	devexport [flags] [dest]                   export (replace-all by default)
//	devexport history [-n N]                   list recent exports
//	devexport prune [--dry-run]                apply history retention
//	devexport config get [key]                 show resolved settings
//	devexport config set [--local] key value   persist a setting
//	devexport config unset [--local] key       remove a persisted setting
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/randalmurphal/devexport"
	"github.com/randalmurphal/devexport/artifact"
	"github.com/randalmurphal/devexport/build"
	"github.com/randalmurphal/devexport/config"
	dxerrors "github.com/randalmurphal/devexport/errors"
	"github.com/randalmurphal/devexport/export"
	"github.com/randalmurphal/devexport/git"
	"github.com/randalmurphal/devexport/notify"
	"github.com/randalmurphal/devexport/reveal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env carries what every subcommand needs.
type env struct {
	stdout   io.Writer
	stderr   io.Writer
	resolver *config.Resolver
	settings config.Settings
	logger   *slog.Logger
	out      *printer
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "history":
			return runHistory(ctx, args[1:], stdout, stderr)
		case "prune":
			return runPrune(ctx, args[1:], stdout, stderr)
		case "config":
			return runConfig(args[1:], stdout, stderr)
		case "help":
			args = []string{"-h"}
		}
	}
	return runExport(ctx, args, stdout, stderr)
}

// setup resolves configuration and installs the logger. flags override
// every other config layer.
func setup(flags map[string]string, verbose bool, stdout, stderr io.Writer) (*env, error) {
	resolver := config.NewResolver()
	settings, err := config.Load(resolver.Resolve(flags))
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	for _, w := range resolver.Warnings {
		logger.Warn("config: " + w)
	}

	return &env{
		stdout:   stdout,
		stderr:   stderr,
		resolver: resolver,
		settings: settings,
		logger:   logger,
		out:      newPrinter(stdout, settings.NoColor),
	}, nil
}

func (e *env) historyStore() *artifact.Store {
	dir := e.settings.HistoryDir
	if !filepath.IsAbs(dir) && e.resolver.GitRoot() != "" {
		dir = filepath.Join(e.resolver.GitRoot(), dir)
	}
	return artifact.NewStore(artifact.Config{BaseDir: dir})
}

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("devexport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		mode        = fs.String("mode", "", "export mode: replace-all, copy-merge or move-merge")
		tag         = fs.String("tag", "", "identifier strategy: none or revision (default depends on mode)")
		pattern     = fs.String("pattern", "", "glob selecting the build artifacts")
		buildCmd    = fs.String("build", "", "build command")
		separator   = fs.String("separator", "", "separator between base name and revision")
		skipBuild   = fs.Bool("skip-build", false, "export existing artifacts without building")
		revealDest  = fs.Bool("reveal", false, "open the destination in the file browser (default depends on mode)")
		stopOnError = fs.Bool("stop-on-error", false, "abort at the first failed transfer")
		verbose     = fs.Bool("v", false, "verbose logging")
	)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: devexport [flags] [dest]")
		fmt.Fprintln(stderr, "       devexport history|prune|config ...")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return dxerrors.ExitOK
		}
		return dxerrors.ExitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "devexport: expected at most one destination, got %d\n", fs.NArg())
		return dxerrors.ExitUsage
	}

	flags := map[string]string{
		config.KeyMode:          *mode,
		config.KeyTag:           *tag,
		config.KeySourcePattern: *pattern,
		config.KeyBuildCommand:  *buildCmd,
		config.KeySeparator:     *separator,
	}
	// Boolean flags only override config when given explicitly.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reveal":
			flags[config.KeyReveal] = strconv.FormatBool(*revealDest)
		case "stop-on-error":
			flags[config.KeyStopOnError] = strconv.FormatBool(*stopOnError)
		}
	})

	e, err := setup(flags, *verbose, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "devexport:", err)
		return dxerrors.ExitUsage
	}
	s := e.settings

	dest := fs.Arg(0)
	if dest == "" {
		if s.Mode.RequiresDestination() {
			e.out.failure(stderr, dxerrors.NewMissingArgumentError())
			return dxerrors.ExitUsage
		}
		dest = s.OutputDir
	}

	p := &devexport.Pipeline{
		Exporter: export.New(e.logger),
		History:  e.historyStore(),
		Notifier: notify.New(notify.Config{
			WebhookURL:      s.WebhookURL,
			SlackWebhookURL: s.SlackWebhookURL,
			SlackChannel:    s.SlackChannel,
			Logger:          e.logger,
		}),
		Revealer: reveal.System{},
		Logger:   e.logger,
	}
	if !*skipBuild {
		p.Build = &build.Step{
			Command: s.BuildCommand,
			Dir:     s.BuildDir,
			Stdout:  stderr,
			Stderr:  stderr,
			Logger:  e.logger,
		}
	}
	if g, err := git.NewContext("."); err == nil {
		p.Git = g
	} else {
		e.logger.Debug("no git repository", "error", err)
	}

	report, err := p.Run(ctx, devexport.Options{
		Request: export.Request{
			SourcePattern: s.SourcePattern,
			Destination:   dest,
			Mode:          s.Mode,
			Strategy:      s.Strategy,
			Separator:     s.Separator,
			StopOnError:   s.StopOnError,
		},
		SkipBuild:      *skipBuild,
		RevisionLength: s.RevisionLength,
		Reveal:         s.Reveal,
	})
	if report != nil && report.Export != nil {
		e.out.exportSummary(report)
	}
	if err != nil {
		e.out.failure(stderr, dxerrors.Wrap(err, dxerrors.WithPattern(s.SourcePattern)))
		return dxerrors.ExitCode(err)
	}
	return dxerrors.ExitOK
}
