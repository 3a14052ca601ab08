// Package engine defines the speech-to-text contract the pipeline drives.
package engine

import (
	"context"
	"time"
)

// Segment is one recognized span of text. Start and End are offsets into the
// submitted audio and are zero when the engine does not report them.
type Segment struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Engine transcribes a whole window of normalized mono 16kHz samples per call.
// Implementations are constructed once, with their model loaded, and reused.
type Engine interface {
	Transcribe(ctx context.Context, samples []float32) ([]Segment, error)
	Close() error
}

// Texts extracts segment texts in order.
func Texts(segments []Segment) []string {
	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, segment.Text)
	}
	return texts
}
