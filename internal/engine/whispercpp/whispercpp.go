//go:build whispercpp

// Package whispercpp runs whisper.cpp in-process through its cgo bindings.
package whispercpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rbright/scribe/internal/engine"
)

// Compiled reports whether the native backend is part of this binary.
const Compiled = true

// Config controls model loading and decoding.
type Config struct {
	ModelPath string
	Language  string
	Logger    *slog.Logger
}

// Engine holds one loaded model; each call decodes in a fresh context.
type Engine struct {
	mu       sync.Mutex
	model    whisperlib.Model
	language string
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New loads the ggml model at cfg.ModelPath.
func New(cfg Config) (*Engine, error) {
	path := strings.TrimSpace(cfg.ModelPath)
	if path == "" {
		return nil, errors.New("whisper.cpp model path is empty")
	}
	model, err := whisperlib.New(path)
	if err != nil {
		return nil, fmt.Errorf("load whisper model %q: %w", path, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{model: model, language: cfg.Language, logger: logger}, nil
}

// Transcribe decodes samples synchronously. The context is only checked before
// decoding starts; whisper.cpp cannot be interrupted mid-call.
func (e *Engine) Transcribe(ctx context.Context, samples []float32) ([]engine.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil, errors.New("whisper model is closed")
	}

	wctx, err := e.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}
	if e.language != "" {
		if err := wctx.SetLanguage(e.language); err != nil {
			e.logger.Warn("whisper language rejected, using model default", "language", e.language, "error", err.Error())
		}
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("whisper process: %w", err)
	}

	var segments []engine.Segment
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			return segments, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read whisper segment: %w", err)
		}
		segments = append(segments, engine.Segment{
			Text:  segment.Text,
			Start: segment.Start,
			End:   segment.End,
		})
	}
}

// Close frees the model.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.model == nil {
		return nil
	}
	err := e.model.Close()
	e.model = nil
	return err
}
