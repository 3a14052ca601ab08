package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// configNames are tried in order inside the scribe config directory. The
// first one is the default when none exists yet.
var configNames = []string{"config.jsonc", "config.yaml", "config.yml"}

// ResolvePath returns explicit when set. Otherwise it looks in
// $XDG_CONFIG_HOME/scribe (or ~/.config/scribe) for the first existing
// config file, defaulting to config.jsonc.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}

	dir, err := configDir()
	if err != nil {
		return "", err
	}
	for _, name := range configNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return filepath.Join(dir, configNames[0]), nil
}

func configDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "scribe"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", "scribe"), nil
}
