package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned by Set for keys that devexport does not read.
var ErrUnknownKey = errors.New("unknown config key")

// Set writes key=value to the global config, or to the local config in
// the git root when local is true. The value is validated first.
func (r *Resolver) Set(local bool, key, value string) (string, error) {
	k, ok := Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s\n\nValid keys: %s", ErrUnknownKey, key, strings.Join(keyNames(local), ", "))
	}
	if err := validateValue(key, value); err != nil {
		return "", err
	}

	if !local {
		if r.globalPath == "" {
			return "", errors.New("global config location unknown: no home directory")
		}
		return r.globalPath, writeKey(r.globalPath, key, value, 0o600)
	}

	if !k.Local {
		return "", fmt.Errorf("%s can only be set globally\n\nValid local keys: %s", key, strings.Join(keyNames(true), ", "))
	}
	if r.localPath == "" {
		return "", errors.New("not inside a git repository")
	}
	// Local config is committed with the project and should be readable.
	return r.localPath, writeKey(r.localPath, key, value, 0o644)
}

// Unset removes key from the global or local config. A missing file is not an error.
func (r *Resolver) Unset(local bool, key string) error {
	path := r.globalPath
	if local {
		path = r.localPath
	}
	if path == "" {
		return nil
	}

	existing, err := readFile(path)
	if err != nil || existing == nil {
		return err
	}
	if _, ok := existing[key]; !ok {
		return nil
	}
	delete(existing, key)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return marshalTo(path, existing, info.Mode().Perm())
}

func writeKey(path, key, value string, perm os.FileMode) error {
	existing, err := readFile(path)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	existing[key] = parseValue(value)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return marshalTo(path, existing, perm)
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return existing, nil
}

func marshalTo(path string, values map[string]any, perm os.FileMode) error {
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue stores booleans as YAML booleans and everything else as strings.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
