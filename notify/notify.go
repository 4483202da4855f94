package notify

import (
	"context"
	"log/slog"
	"time"
)

// EventType identifies a point in the export lifecycle.
type EventType string

const (
	EventExportStarted   EventType = "export_started"
	EventExportCompleted EventType = "export_completed"
	EventExportFailed    EventType = "export_failed"
	EventBuildFailed     EventType = "build_failed"
)

// Severity levels.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Event describes one export lifecycle event.
type Event struct {
	Type        EventType      `json:"type"`
	RunID       string         `json:"run_id"`
	Mode        string         `json:"mode"`
	Destination string         `json:"destination,omitempty"`
	Revision    string         `json:"revision,omitempty"`
	Message     string         `json:"message"`
	Severity    string         `json:"severity"`
	Timestamp   time.Time      `json:"timestamp"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Notifier delivers events. Callers treat errors as warnings; a failed
// notification never fails an export.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Config selects the notifiers built by New.
type Config struct {
	WebhookURL      string
	SlackWebhookURL string
	SlackChannel    string
	Logger          *slog.Logger
}

// New returns a notifier that always logs events and additionally posts
// them to each configured webhook.
func New(cfg Config) Notifier {
	notifiers := []Notifier{NewLogNotifier(cfg.Logger)}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, NewWebhookNotifier(cfg.WebhookURL, nil))
	}
	if cfg.SlackWebhookURL != "" {
		var opts []SlackOption
		if cfg.SlackChannel != "" {
			opts = append(opts, WithSlackChannel(cfg.SlackChannel))
		}
		notifiers = append(notifiers, NewSlackNotifier(cfg.SlackWebhookURL, opts...))
	}
	if len(notifiers) == 1 {
		return notifiers[0]
	}
	m := NewMultiNotifier(notifiers...)
	if cfg.Logger != nil {
		m.Logger = cfg.Logger
	}
	return m
}
