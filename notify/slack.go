package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SlackNotifier posts events to a Slack incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Channel    string
	Username   string
	Client     *http.Client
}

// SlackOption configures a SlackNotifier.
type SlackOption func(*SlackNotifier)

// WithSlackChannel overrides the webhook's default channel.
func WithSlackChannel(channel string) SlackOption {
	return func(n *SlackNotifier) { n.Channel = channel }
}

// WithSlackUsername sets the bot username.
func WithSlackUsername(username string) SlackOption {
	return func(n *SlackNotifier) { n.Username = username }
}

// NewSlackNotifier creates a Slack notifier posting as "devexport".
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	n := &SlackNotifier{
		WebhookURL: webhookURL,
		Username:   "devexport",
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements Notifier.
func (n *SlackNotifier) Notify(ctx context.Context, event Event) error {
	payload := slackPayload{
		Username: n.Username,
		Channel:  n.Channel,
		Attachments: []slackAttachment{{
			Color:     colorForSeverity(event.Severity),
			Title:     slackTitle(event),
			Text:      event.Message,
			Footer:    slackFooter(event),
			Timestamp: event.Timestamp.Unix(),
			Fields:    slackFields(event),
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return post(n.Client, req, "slack")
}

// slackTitle renders "export_completed" as ":white_check_mark: Export Completed".
func slackTitle(event Event) string {
	words := strings.ReplaceAll(string(event.Type), "_", " ")
	return emojiForEvent(event.Type) + " " + cases.Title(language.English).String(words)
}

func slackFooter(event Event) string {
	parts := []string{"Mode: " + event.Mode}
	if event.RunID != "" {
		parts = append(parts, "Run: "+event.RunID)
	}
	return strings.Join(parts, " | ")
}

func emojiForEvent(t EventType) string {
	switch t {
	case EventExportStarted:
		return ":package:"
	case EventExportCompleted:
		return ":white_check_mark:"
	case EventExportFailed:
		return ":x:"
	case EventBuildFailed:
		return ":hammer:"
	default:
		return ":loudspeaker:"
	}
}

func colorForSeverity(severity string) string {
	switch severity {
	case SeverityError:
		return "danger"
	case SeverityWarning:
		return "warning"
	default:
		return "good"
	}
}

// slackFields lists destination, revision and metadata, sorted by title.
func slackFields(event Event) []slackField {
	var fields []slackField
	if event.Destination != "" {
		fields = append(fields, slackField{Title: "destination", Value: event.Destination})
	}
	if event.Revision != "" {
		fields = append(fields, slackField{Title: "revision", Value: event.Revision, Short: true})
	}
	for k, v := range event.Metadata {
		fields = append(fields, slackField{Title: k, Value: fmt.Sprintf("%v", v), Short: true})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Title < fields[j].Title })
	return fields
}

type slackPayload struct {
	Username    string            `json:"username,omitempty"`
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
	Fields    []slackField `json:"fields,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
