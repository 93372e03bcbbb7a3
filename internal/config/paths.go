// Package config loads opskit settings and resolves the GitLab token.
//
// Settings come from an optional opskit.yaml, OPSKIT_* environment variables,
// and built-in defaults, in that order of precedence (lowest last).
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigName is the config file base name without extension.
const ConfigName = "opskit"

// Paths lists where opskit looks for its config file.
type Paths struct {
	// Dirs are searched in order for opskit.yaml.
	Dirs []string

	// File, when set, is used instead of searching Dirs.
	File string
}

// DefaultPaths returns the search directories. They can be overridden with:
// - OPSKIT_CONFIG_DIR: searched first
func DefaultPaths() (*Paths, error) {
	var dirs []string
	if dir := os.Getenv("OPSKIT_CONFIG_DIR"); dir != "" {
		dirs = append(dirs, dir)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	dirs = append(dirs, filepath.Join(home, ".config", "opskit"), ".")

	return &Paths{Dirs: dirs}, nil
}

// WithFile returns a copy of p that reads exactly file.
func (p *Paths) WithFile(file string) *Paths {
	out := *p
	out.File = file
	return &out
}
