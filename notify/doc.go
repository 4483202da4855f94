// Package notify reports export lifecycle events.
//
// Every run emits export_started followed by export_completed or
// export_failed; a failing build step emits build_failed instead.
//
// Implementations:
//   - LogNotifier: structured log lines via slog
//   - WebhookNotifier: JSON POST of the Event
//   - SlackNotifier: Slack incoming-webhook attachment
//   - MultiNotifier: fan-out, joining errors
//   - NopNotifier: discards events
//
// New assembles the set enabled by configuration:
//
//	n := notify.New(notify.Config{
//	    SlackWebhookURL: settings.SlackWebhookURL,
//	    SlackChannel:    "#builds",
//	    Logger:          logger,
//	})
package notify
