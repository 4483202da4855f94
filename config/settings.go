package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/randalmurphal/devexport/export"
)

// Settings is the typed form of a Resolved configuration.
type Settings struct {
	BuildCommand  string
	BuildDir      string
	SourcePattern string
	OutputDir     string

	Mode           export.Mode
	Strategy       export.Strategy
	Separator      string
	RevisionLength int
	Reveal         bool
	StopOnError    bool

	HistoryDir       string
	HistoryKeep      int
	HistoryRetention time.Duration

	WebhookURL      string
	SlackWebhookURL string
	SlackChannel    string

	LogLevel slog.Level
	NoColor  bool
}

// Load converts resolved values into Settings. Tag and reveal fall back
// to the mode's defaults when they are left empty.
func Load(c *Resolved) (Settings, error) {
	var (
		s   Settings
		err error
	)

	s.BuildCommand = c.Get(KeyBuildCommand)
	s.BuildDir = c.Get(KeyBuildDir)
	s.SourcePattern = c.Get(KeySourcePattern)
	s.OutputDir = c.Get(KeyOutputDir)
	s.Separator = c.Get(KeySeparator)
	s.HistoryDir = c.Get(KeyHistoryDir)
	s.WebhookURL = c.Get(KeyWebhookURL)
	s.SlackWebhookURL = c.Get(KeySlackWebhookURL)
	s.SlackChannel = c.Get(KeySlackChannel)

	if s.Mode, err = export.ParseMode(c.Get(KeyMode)); err != nil {
		return s, keyError(c, KeyMode, err)
	}

	s.Strategy = s.Mode.DefaultStrategy()
	if tag := c.Get(KeyTag); tag != "" {
		if s.Strategy, err = export.ParseStrategy(tag); err != nil {
			return s, keyError(c, KeyTag, err)
		}
	}

	s.Reveal = s.Mode == export.ModeReplaceAll
	if v := c.Get(KeyReveal); v != "" {
		if s.Reveal, err = strconv.ParseBool(v); err != nil {
			return s, keyError(c, KeyReveal, err)
		}
	}

	if s.StopOnError, err = parseBool(c, KeyStopOnError); err != nil {
		return s, err
	}
	if s.NoColor, err = parseBool(c, KeyNoColor); err != nil {
		return s, err
	}
	if s.RevisionLength, err = parsePositive(c, KeyRevisionLength); err != nil {
		return s, err
	}
	if s.HistoryKeep, err = parseNonNegative(c, KeyHistoryKeep); err != nil {
		return s, err
	}

	days, err := parseNonNegative(c, KeyHistoryRetentionDays)
	if err != nil {
		return s, err
	}
	s.HistoryRetention = time.Duration(days) * 24 * time.Hour

	if s.LogLevel, err = ParseLogLevel(c.Get(KeyLogLevel)); err != nil {
		return s, keyError(c, KeyLogLevel, err)
	}
	return s, nil
}

// ParseLogLevel accepts debug, info, warn/warning and error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

func keyError(c *Resolved, key string, err error) error {
	return fmt.Errorf("config %s (from %s): %w", key, c.Source(key), err)
}

func parseBool(c *Resolved, key string) (bool, error) {
	v := c.Get(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, keyError(c, key, err)
	}
	return b, nil
}

func parsePositive(c *Resolved, key string) (int, error) {
	n, err := strconv.Atoi(c.Get(key))
	if err != nil {
		return 0, keyError(c, key, err)
	}
	if n <= 0 {
		return 0, keyError(c, key, fmt.Errorf("must be positive, got %d", n))
	}
	return n, nil
}

func parseNonNegative(c *Resolved, key string) (int, error) {
	n, err := strconv.Atoi(c.Get(key))
	if err != nil {
		return 0, keyError(c, key, err)
	}
	if n < 0 {
		return 0, keyError(c, key, fmt.Errorf("must not be negative, got %d", n))
	}
	return n, nil
}

// validateValue checks a value before "config set" persists it.
func validateValue(key, value string) error {
	c := &Resolved{
		values:  Defaults(),
		sources: map[string]Source{key: SourceFlag},
	}
	c.values[key] = value
	_, err := Load(c)
	return err
}
