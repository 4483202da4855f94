// Package reveal opens a directory in the platform file browser.
//
// The command is chosen by operating system:
//   - darwin: open (or "open -a $DEVEXPORT_FILE_BROWSER")
//   - windows: explorer (or $DEVEXPORT_FILE_BROWSER)
//   - others: xdg-open (or $DEVEXPORT_FILE_BROWSER)
//
// Revealing is a convenience. Callers log failures and carry on.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// EnvFileBrowser overrides the file browser application.
const EnvFileBrowser = "DEVEXPORT_FILE_BROWSER"

// ErrEmptyPath is returned when Open is called without a path.
var ErrEmptyPath = errors.New("reveal: empty path")

// Revealer opens a path in a file browser.
type Revealer interface {
	Open(ctx context.Context, path string) error
}

// Command returns the argv used to reveal path on goos.
// browser, when non-empty, replaces the platform default.
func Command(goos, browser, path string) []string {
	switch goos {
	case "darwin":
		if browser != "" {
			return []string{"open", "-a", browser, path}
		}
		return []string{"open", path}
	case "windows":
		if browser != "" {
			return []string{browser, path}
		}
		return []string{"explorer", path}
	default:
		if browser != "" {
			return []string{browser, path}
		}
		return []string{"xdg-open", path}
	}
}

// System reveals paths with the host's file browser.
type System struct {
	// GOOS overrides runtime.GOOS. Tests set it.
	GOOS string

	// Browser overrides $DEVEXPORT_FILE_BROWSER.
	Browser string
}

// Open runs the platform command for path and waits for it to exit.
func (s System) Open(ctx context.Context, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}

	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	browser := s.Browser
	if browser == "" {
		browser = os.Getenv(EnvFileBrowser)
	}

	argv := Command(goos, browser, path)
	out, err := exec.CommandContext(ctx, argv[0], argv[1:]...).CombinedOutput()
	if err != nil {
		// explorer.exe exits 1 even when the window opens.
		var exitErr *exec.ExitError
		if goos == "windows" && browser == "" && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil
		}
		return fmt.Errorf("reveal %s with %s: %w (output: %s)", path, argv[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Nop never opens anything.
type Nop struct{}

// Open implements Revealer.
func (Nop) Open(context.Context, string) error { return nil }
