package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/shell"

	dxerrors "github.com/randalmurphal/devexport/errors"
)

// DefaultCommand builds the release jars and their javadoc.
const DefaultCommand = "./gradlew clean javadocRelease jarRelease"

// Step runs the external build tool that produces the artifacts.
type Step struct {
	// Command is the build command line. It is split into arguments with
	// POSIX quoting rules and $VAR expansion, but never run through a shell.
	Command string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the current environment, and is also used
	// for $VAR expansion in Command.
	Env []string

	// Stdout and Stderr receive the build output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Result describes a completed build.
type Result struct {
	Args     []string
	ExitCode int
	Duration time.Duration
}

// Error reports a build that could not be started or exited non-zero.
type Error struct {
	Args     []string
	ExitCode int // -1 when the process never ran
	Err      error
}

func (e *Error) Error() string {
	name := strings.Join(e.Args, " ")
	if e.ExitCode > 0 {
		return fmt.Sprintf("build %q exited with status %d", name, e.ExitCode)
	}
	return fmt.Sprintf("build %q: %v", name, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{dxerrors.ErrBuildStepFailed, e.Err}
}

// Args splits the command line into an argument vector.
func (s *Step) Args() ([]string, error) {
	args, err := shell.Fields(s.Command, s.lookupEnv())
	if err != nil {
		return nil, fmt.Errorf("parse build command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("empty build command")
	}
	return args, nil
}

// Run executes the build and waits for it to exit.
// Any failure, including a non-zero exit status, wraps ErrBuildStepFailed.
func (s *Step) Run(ctx context.Context) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	args, err := s.Args()
	if err != nil {
		return nil, &Error{Args: []string{s.Command}, ExitCode: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = s.Dir
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	logger.Info("running build", "command", strings.Join(args, " "), "dir", s.Dir)
	start := time.Now()
	err = cmd.Run()
	res := &Result{
		Args:     args,
		ExitCode: exitCode(cmd, err),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		logger.Error("build failed", "exit_code", res.ExitCode, "duration", res.Duration, "error", err)
		return res, &Error{Args: args, ExitCode: res.ExitCode, Err: err}
	}

	logger.Info("build finished", "duration", res.Duration)
	return res, nil
}

func (s *Step) lookupEnv() func(string) string {
	overrides := make(map[string]string, len(s.Env))
	for _, kv := range s.Env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			overrides[k] = v
		}
	}
	return func(name string) string {
		if v, ok := overrides[name]; ok {
			return v
		}
		return os.Getenv(name)
	}
}

func exitCode(cmd *exec.Cmd, err error) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
