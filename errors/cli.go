package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CLIError wraps an error with user-friendly context and suggestions.
type CLIError struct {
	// Err is the underlying error
	Err error

	// Message is a user-friendly description of what went wrong
	Message string

	// Suggestion is an actionable hint for the user
	Suggestion string

	// Details provides additional context (optional)
	Details string
}

func (e *CLIError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)

	if e.Details != "" {
		sb.WriteString("\n")
		sb.WriteString(e.Details)
	}

	if e.Suggestion != "" {
		sb.WriteString("\n\n")
		sb.WriteString(e.Suggestion)
	}

	return sb.String()
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// ErrorMessenger provides customizable error messages.
// Implement this interface to customize suggestions for your CLI.
type ErrorMessenger interface {
	// BuildFailedMessage returns the message and suggestion for a failed build step.
	BuildFailedMessage() (message, suggestion string)

	// SourceUnavailableMessage returns the message and suggestion when the artifact
	// directory is missing. The pattern is the configured source glob.
	SourceUnavailableMessage(pattern string) (message, suggestion string)

	// DestinationUnavailableMessage returns the message and suggestion when the
	// destination cannot be used.
	DestinationUnavailableMessage() (message, suggestion string)

	// RevisionUnavailableMessage returns the message and suggestion when no
	// revision can be read for tagging.
	RevisionUnavailableMessage() (message, suggestion string)

	// TransferFailedMessage returns the message and suggestion for failed transfers.
	// The count is the number of artifacts that failed.
	TransferFailedMessage(count int) (message, suggestion string)

	// MissingArgumentMessage returns the message and suggestion for usage errors.
	MissingArgumentMessage() (message, suggestion string)
}

// DefaultMessenger provides default error messages.
type DefaultMessenger struct{}

func (m DefaultMessenger) BuildFailedMessage() (string, string) {
	return "The build step failed; nothing was exported.",
		"Fix the build, or pass --skip-build to export existing artifacts."
}

func (m DefaultMessenger) SourceUnavailableMessage(pattern string) (string, string) {
	return fmt.Sprintf("No artifact directory for pattern %s", pattern),
		"Check that the build produces artifacts there, or set source_pattern."
}

func (m DefaultMessenger) DestinationUnavailableMessage() (string, string) {
	return "The destination directory cannot be used.",
		"Check that:\n  - The directory exists (merge modes never create it)\n  - You have write permission"
}

func (m DefaultMessenger) RevisionUnavailableMessage() (string, string) {
	return "Cannot determine the current revision for tagging.",
		"Run from a git repository with at least one commit, or pass --tag none."
}

func (m DefaultMessenger) TransferFailedMessage(count int) (string, string) {
	if count == 1 {
		return "1 artifact could not be exported.", "Artifacts already exported were left in place."
	}
	return fmt.Sprintf("%d artifacts could not be exported.", count),
		"Artifacts already exported were left in place."
}

func (m DefaultMessenger) MissingArgumentMessage() (string, string) {
	return "This mode requires a destination directory.",
		"Usage: devexport --mode copy-merge|move-merge <dest>"
}

// WrapConfig configures error wrapping behavior.
type WrapConfig struct {
	Messenger ErrorMessenger
	Pattern   string
}

// Option configures WrapConfig.
type Option func(*WrapConfig)

// WithMessenger sets a custom error messenger.
func WithMessenger(m ErrorMessenger) Option {
	return func(c *WrapConfig) {
		c.Messenger = m
	}
}

// WithPattern sets the source pattern reported for source errors.
func WithPattern(pattern string) Option {
	return func(c *WrapConfig) {
		c.Pattern = pattern
	}
}

func getConfig(opts []Option) *WrapConfig {
	cfg := &WrapConfig{
		Messenger: DefaultMessenger{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Wrap converts an export error into a CLIError with guidance.
// Errors outside the taxonomy, and errors that already are CLIErrors,
// are returned unchanged.
func Wrap(err error, opts ...Option) error {
	if err == nil {
		return nil
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	cfg := getConfig(opts)
	m := cfg.Messenger

	var msg, suggestion string
	var kind error
	switch {
	case errors.Is(err, ErrMissingArgument):
		kind = ErrMissingArgument
		msg, suggestion = m.MissingArgumentMessage()
	case errors.Is(err, ErrBuildStepFailed):
		kind = ErrBuildStepFailed
		msg, suggestion = m.BuildFailedMessage()
	case errors.Is(err, ErrRevisionUnavailable):
		kind = ErrRevisionUnavailable
		msg, suggestion = m.RevisionUnavailableMessage()
	case errors.Is(err, ErrSourceUnavailable):
		kind = ErrSourceUnavailable
		msg, suggestion = m.SourceUnavailableMessage(cfg.Pattern)
	case errors.Is(err, ErrDestinationUnavailable):
		kind = ErrDestinationUnavailable
		msg, suggestion = m.DestinationUnavailableMessage()
	case errors.Is(err, ErrTransferFailed):
		kind = ErrTransferFailed
		msg, suggestion = m.TransferFailedMessage(len(TransferErrors(err)))
	default:
		return err
	}

	return &CLIError{
		Err:        err,
		Message:    msg,
		Details:    details(err, kind),
		Suggestion: suggestion,
	}
}

// details lists the underlying failure(s) below the friendly message.
func details(err, kind error) string {
	if transfers := TransferErrors(err); len(transfers) > 0 {
		lines := make([]string, 0, len(transfers))
		for _, te := range transfers {
			lines = append(lines, "  - "+te.Error())
		}
		return strings.Join(lines, "\n")
	}
	if err == kind {
		return ""
	}
	return err.Error()
}

// TransferErrors collects every TransferError in err's tree, including
// errors combined with errors.Join.
func TransferErrors(err error) []*TransferError {
	var out []*TransferError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if te, ok := e.(*TransferError); ok {
			out = append(out, te)
			return
		}
		switch x := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}

// NewMissingArgumentError creates the usage error for modes that need a destination.
func NewMissingArgumentError(opts ...Option) error {
	msg, suggestion := getConfig(opts).Messenger.MissingArgumentMessage()
	return &CLIError{
		Err:        ErrMissingArgument,
		Message:    msg,
		Suggestion: suggestion,
	}
}
