// Package logging owns scribe's state directory and its JSONL run log.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const logFileName = "log.jsonl"

// Runtime is an open run log. Close releases the file.
type Runtime struct {
	Logger *slog.Logger
	Level  slog.Level
	Path   string
	closer io.Closer
}

func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// StateDir is $XDG_STATE_HOME/scribe, falling back to ~/.local/state/scribe.
// The run log and debug artifacts live under it.
func StateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "scribe"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state", "scribe"), nil
}

// New opens the run log in append mode and returns a JSON logger filtered at
// level. Every record carries the process id so concurrent invocations
// (a run plus a status query) can be told apart.
func New(level string) (Runtime, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return Runtime{}, err
	}

	dir, err := StateDir()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return Runtime{}, fmt.Errorf("create state dir: %w", err)
	}

	path := filepath.Join(dir, logFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, fmt.Errorf("open log %q: %w", path, err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl})).With("pid", os.Getpid())
	return Runtime{Logger: logger, Level: lvl, Path: path, closer: f}, nil
}

var errUnknownLevel = errors.New("unknown log level")

// ParseLevel maps log.level values onto slog levels. Blank means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w %q (want debug, info, warn or error)", errUnknownLevel, level)
	}
}
