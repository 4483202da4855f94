package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is prepended to upper-cased key names for environment lookup,
	// so "mode" is read from DEVEXPORT_MODE.
	EnvPrefix = "DEVEXPORT_"

	// GlobalConfigDir is the directory under ~/.config holding config.yaml.
	GlobalConfigDir = "devexport"

	// LocalConfigName is the per-repository config file in the git root.
	LocalConfigName = ".devexport.yaml"
)

// Resolver merges defaults, config files, environment and flags.
type Resolver struct {
	globalPath string
	localPath  string
	gitRoot    string
	getenv     func(string) (string, bool)
	logger     *slog.Logger

	// Warnings collects non-fatal issues found while resolving.
	Warnings []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGlobalPath overrides the global config file location.
func WithGlobalPath(path string) Option {
	return func(r *Resolver) { r.globalPath = path }
}

// WithGitRoot sets the repository root and derives the local config path.
func WithGitRoot(root string) Option {
	return func(r *Resolver) {
		r.gitRoot = root
		r.localPath = ""
		if root != "" {
			r.localPath = filepath.Join(root, LocalConfigName)
		}
	}
}

// WithEnv replaces os.LookupEnv.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(r *Resolver) { r.getenv = lookup }
}

// WithLogger sets the logger that receives resolution warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// NewResolver creates a resolver rooted at the git repository containing
// the working directory, if any.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{getenv: os.LookupEnv}

	if root := findGitRoot("."); root != "" {
		r.gitRoot = root
		r.localPath = filepath.Join(root, LocalConfigName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.globalPath = filepath.Join(home, ".config", GlobalConfigDir, "config.yaml")
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

// GitRoot returns the detected git root, or "" outside a repository.
func (r *Resolver) GitRoot() string { return r.gitRoot }

// GlobalPath returns the global config file path.
func (r *Resolver) GlobalPath() string { return r.globalPath }

// LocalPath returns the local config file path, or "" outside a repository.
func (r *Resolver) LocalPath() string { return r.localPath }

// Resolved holds the merged configuration.
type Resolved struct {
	values  map[string]string
	sources map[string]Source
}

// Get returns the value for key, or "" if unset.
func (c *Resolved) Get(key string) string {
	return c.values[key]
}

// Source returns where key's value came from.
func (c *Resolved) Source(key string) Source {
	return c.sources[key]
}

// GetWithSource returns both the value and its source.
func (c *Resolved) GetWithSource(key string) (string, Source) {
	return c.values[key], c.sources[key]
}

// Keys returns the resolved key names, sorted.
func (c *Resolved) Keys() []string {
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Resolve merges every layer. Empty flag values are ignored.
func (r *Resolver) Resolve(flags map[string]string) *Resolved {
	cfg := &Resolved{
		values:  make(map[string]string),
		sources: make(map[string]Source),
	}

	for key, value := range Defaults() {
		cfg.set(key, value, SourceDefault)
	}
	r.applyFile(cfg, r.globalPath, SourceGlobal)
	r.applyFile(cfg, r.localPath, SourceLocal)
	r.applyEnv(cfg)

	for key, value := range flags {
		if value != "" {
			cfg.set(key, value, SourceFlag)
		}
	}
	return cfg
}

func (c *Resolved) set(key, value string, src Source) {
	c.values[key] = value
	c.sources[key] = src
}

func (r *Resolver) warn(msg string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(msg, args...))
	r.logger.Warn("config: " + fmt.Sprintf(msg, args...))
}

func (r *Resolver) applyFile(cfg *Resolved, path string, src Source) {
	if path == "" {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return // missing file is not an error
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		r.warn("could not parse %s: %v", path, err)
		return
	}

	for key, value := range parsed {
		k, ok := Lookup(key)
		if !ok {
			r.warn("unknown key %q in %s", key, path)
			continue
		}
		if src == SourceLocal && !k.Local {
			r.warn("key %q is only honoured in the global config, ignoring %s", key, path)
			continue
		}
		if s, ok := toString(value); ok {
			cfg.set(key, s, src)
		}
	}
}

func (r *Resolver) applyEnv(cfg *Resolved) {
	for _, k := range keys {
		if value, ok := r.getenv(EnvName(k.Name)); ok && value != "" {
			cfg.set(k.Name, value, SourceEnv)
		}
	}
	if _, ok := r.getenv("NO_COLOR"); ok {
		cfg.set(KeyNoColor, "true", SourceEnv)
	}
}

// EnvName returns the environment variable consulted for key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func toString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case bool:
		if val {
			return "true", true
		}
		return "false", true
	case int, int64, float64:
		return fmt.Sprintf("%v", val), true
	default:
		return "", false
	}
}

// findGitRoot walks up from startDir looking for a .git entry.
// Worktrees use a .git file, so either kind counts.
func findGitRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
