package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes events to a slog.Logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs to logger (slog.Default when nil).
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	switch event.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}

	attrs := []any{
		"event", event.Type,
		"run_id", event.RunID,
		"mode", event.Mode,
	}
	if event.Destination != "" {
		attrs = append(attrs, "destination", event.Destination)
	}
	if event.Revision != "" {
		attrs = append(attrs, "revision", event.Revision)
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, "metadata", event.Metadata)
	}
	n.Logger.Log(ctx, level, event.Message, attrs...)
	return nil
}
