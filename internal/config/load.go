package config

import (
	"errors"
	"fmt"
	"os"
)

// Loaded is the outcome of Load: where the config came from, which syntax it
// used, the materialized values, and any non-fatal warnings.
type Loaded struct {
	Path     string
	Exists   bool
	Format   Format
	Config   Config
	Warnings []Warning
}

// Source describes the loaded file for logs and doctor output.
func (l Loaded) Source() string {
	if !l.Exists {
		return fmt.Sprintf("%q not found; using defaults", l.Path)
	}
	return fmt.Sprintf("loaded %q (%s)", l.Path, l.Format)
}

// Load resolves the config path and parses the file there. A missing file is
// not an error: defaults are returned with a warning.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}
	loaded := Loaded{Path: path, Config: Default()}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		loaded.Warnings = []Warning{{Message: fmt.Sprintf("config file %q not found; using defaults", path)}}
		return loaded, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	loaded.Exists = true
	loaded.Format = DetectFormat(string(content))
	loaded.Config, loaded.Warnings, err = Parse(string(content), loaded.Config)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse %s config %q: %w", loaded.Format, path, err)
	}
	return loaded, nil
}
