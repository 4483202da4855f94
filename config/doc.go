// Package config resolves devexport settings from layered sources.
//
// Precedence, highest first:
//  1. Command-line flags
//  2. DEVEXPORT_* environment variables
//  3. Local config (.devexport.yaml in the git root)
//  4. Global config (~/.config/devexport/config.yaml)
//  5. Built-in defaults
//
// Every value is tracked with the Source it came from so that
// "devexport config get" can explain where a setting originated:
//
//	r := config.NewResolver()
//	resolved := r.Resolve(map[string]string{"mode": "copy-merge"})
//	settings, err := config.Load(resolved)
//
// Keys lists every recognised key with its default. Unknown keys in
// YAML files are ignored with a warning; "config set" rejects them.
package config
