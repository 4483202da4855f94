package config

import "sort"

// Key names.
const (
	KeyBuildCommand         = "build_command"
	KeyBuildDir             = "build_dir"
	KeySourcePattern        = "source_pattern"
	KeyOutputDir            = "output_dir"
	KeyMode                 = "mode"
	KeyTag                  = "tag"
	KeySeparator            = "separator"
	KeyRevisionLength       = "revision_length"
	KeyReveal               = "reveal"
	KeyStopOnError          = "stop_on_error"
	KeyHistoryDir           = "history_dir"
	KeyHistoryKeep          = "history_keep"
	KeyHistoryRetentionDays = "history_retention_days"
	KeyWebhookURL           = "webhook_url"
	KeySlackWebhookURL      = "slack_webhook_url"
	KeySlackChannel         = "slack_channel"
	KeyLogLevel             = "log_level"
	KeyNoColor              = "no_color"
)

// Key describes one configuration key.
type Key struct {
	Name    string
	Default string
	Usage   string

	// Local reports whether the key may be stored in the per-repository
	// config. Personal settings such as webhook URLs live only in the
	// global file.
	Local bool
}

// An empty Default for tag and reveal means "decided by the mode".
var keys = []Key{
	{KeyBuildCommand, "./gradlew clean javadocRelease jarRelease", "command that produces the artifacts", true},
	{KeyBuildDir, ".", "working directory of the build command", true},
	{KeySourcePattern, "sdk/build/libs/*.jar", "glob selecting the build artifacts", true},
	{KeyOutputDir, "jars", "replace-all destination when none is given", true},
	{KeyMode, "replace-all", "export mode: replace-all, copy-merge, move-merge", true},
	{KeyTag, "", "identifier strategy: none or revision", true},
	{KeySeparator, "-", "separator between base name and revision", true},
	{KeyRevisionLength, "7", "number of revision characters in tagged names", true},
	{KeyReveal, "", "open the destination in the file browser afterwards", false},
	{KeyStopOnError, "false", "abort at the first failed transfer", true},
	{KeyHistoryDir, ".devexport", "directory holding export history records", true},
	{KeyHistoryKeep, "50", "history records always kept by prune", true},
	{KeyHistoryRetentionDays, "90", "age after which prune removes history records", true},
	{KeyWebhookURL, "", "URL receiving export events as JSON", false},
	{KeySlackWebhookURL, "", "Slack incoming webhook for export events", false},
	{KeySlackChannel, "", "Slack channel override", false},
	{KeyLogLevel, "info", "log level: debug, info, warn, error", false},
	{KeyNoColor, "false", "disable colored output", false},
}

// Keys returns every recognised key, sorted by name.
func Keys() []Key {
	out := make([]Key, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the key named name.
func Lookup(name string) (Key, bool) {
	for _, k := range keys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Defaults returns the built-in default of every key.
func Defaults() map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k.Name] = k.Default
	}
	return out
}

func keyNames(localOnly bool) []string {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if localOnly && !k.Local {
			continue
		}
		names = append(names, k.Name)
	}
	sort.Strings(names)
	return names
}
