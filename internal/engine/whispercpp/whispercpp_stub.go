//go:build !whispercpp

// Package whispercpp runs whisper.cpp in-process through its cgo bindings.
package whispercpp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rbright/scribe/internal/engine"
)

// Compiled reports whether the native backend is part of this binary.
const Compiled = false

var errNotCompiled = errors.New("whisper-cpp engine not compiled in (rebuild with -tags whispercpp)")

// Config controls model loading and decoding.
type Config struct {
	ModelPath string
	Language  string
	Logger    *slog.Logger
}

// Engine is unavailable without the whispercpp build tag.
type Engine struct{}

var _ engine.Engine = (*Engine)(nil)

// New reports that the binary was built without whisper.cpp.
func New(Config) (*Engine, error) {
	return nil, errNotCompiled
}

func (*Engine) Transcribe(context.Context, []float32) ([]engine.Segment, error) {
	return nil, errNotCompiled
}

func (*Engine) Close() error { return nil }
