package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rbright/scribe/internal/audio"
	"github.com/rbright/scribe/internal/logging"
)

// CreateDebugFile creates a timestamped artifact under $XDG_STATE_HOME/scribe/debug.
func CreateDebugFile(prefix string, extension string) (*os.File, error) {
	path, err := debugPath(prefix, extension)
	if err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open debug file %q: %w", path, err)
	}
	return file, nil
}

func debugPath(prefix string, extension string) (string, error) {
	stateDir, err := logging.StateDir()
	if err != nil {
		return "", err
	}
	debugDir := filepath.Join(stateDir, "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		return "", fmt.Errorf("create debug dir: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405.000")
	return filepath.Join(debugDir, fmt.Sprintf("%s-%s.%s", prefix, timestamp, extension)), nil
}

// WAVDumper writes each completed window to a WAV file for offline inspection.
type WAVDumper struct {
	Logger *slog.Logger
}

// DumpWindow stores pcm as window-<seq>-<timestamp>.wav. Failures are logged only.
func (d WAVDumper) DumpWindow(windowSeq uint64, pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	path, err := debugPath(fmt.Sprintf("window-%04d", windowSeq), "wav")
	if err == nil {
		err = audio.WriteWAV(path, pcm)
	}
	if err != nil && d.Logger != nil {
		d.Logger.Warn("unable to write debug window dump", "window", windowSeq, "error", err.Error())
	}
}
