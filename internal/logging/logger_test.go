package logging

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// readRecords decodes every JSONL record in path.
func readRecords(t *testing.T, path string) []map[string]any {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record), scanner.Text())
		records = append(records, record)
	}
	require.NoError(t, scanner.Err())
	return records
}

func TestStateDir(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "  "+state+"  ")
	dir, err := StateDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(state, "scribe"), dir)

	home := t.TempDir()
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("HOME", home)
	dir, err = StateDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".local", "state", "scribe"), dir)
}

func TestNewAppendsAcrossRuns(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	first, err := New("info")
	require.NoError(t, err)
	first.Logger.Info("run start", "run_id", "run-1")
	require.NoError(t, first.Close())

	second, err := New("info")
	require.NoError(t, err)
	require.Equal(t, first.Path, second.Path)
	second.Logger.Info("run start", "run_id", "run-2")
	require.NoError(t, second.Close())

	records := readRecords(t, second.Path)
	require.Len(t, records, 2)
	require.Equal(t, "run-1", records[0]["run_id"])
	require.Equal(t, "run-2", records[1]["run_id"])
	require.Equal(t, float64(os.Getpid()), records[1]["pid"])

	info, err := os.Stat(second.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewFiltersBelowConfiguredLevel(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	runtime, err := New("warn")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, runtime.Level)

	runtime.Logger.Debug("cycle complete", "window_len", 3)
	runtime.Logger.Info("run start")
	runtime.Logger.Warn("normalized samples exceed engine input range", "divisor", 255)
	require.NoError(t, runtime.Close())

	records := readRecords(t, runtime.Path)
	require.Len(t, records, 1)
	require.Equal(t, "WARN", records[0]["level"])
	require.Equal(t, float64(255), records[0]["divisor"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}
}

func TestNewRejectsUnknownLevelBeforeTouchingDisk(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	_, err := New("verbose")
	require.ErrorIs(t, err, errUnknownLevel)
	require.ErrorContains(t, err, `"verbose"`)

	_, statErr := os.Stat(filepath.Join(state, "scribe"))
	require.ErrorIs(t, statErr, os.ErrNotExist)
}
