// Package audio captures fixed-duration PCM frames from input devices and files.
package audio

import (
	"context"
	"time"
)

// Capture format shared by every backend: 16 kHz, mono, signed 16-bit little-endian.
const (
	SampleRate     = 16000
	Channels       = 1
	BytesPerSample = 2

	// FrameDuration is the fixed amount of audio delivered by one ReadFrame call.
	FrameDuration = time.Second
	FrameSamples  = SampleRate * int(FrameDuration/time.Second)
	FrameBytes    = FrameSamples * Channels * BytesPerSample
)

// Chunk is one captured frame. PCM must not be mutated after capture.
type Chunk struct {
	Seq        uint64
	CapturedAt time.Time
	PCM        []byte
}

// Duration reports how much audio the chunk carries.
func (c Chunk) Duration() time.Duration {
	samples := len(c.PCM) / (Channels * BytesPerSample)
	return time.Duration(samples) * time.Second / SampleRate
}

// Source produces raw PCM frames on demand.
//
// ReadFrame blocks until one full frame is available, the context is done, or the
// device fails. A source that runs out of audio returns io.EOF.
type Source interface {
	ReadFrame(ctx context.Context) ([]byte, error)
	Name() string
	Close() error
}

// Backends lists the capture backends usable by this binary.
func Backends() []string {
	backends := []string{"pulse"}
	if portAudioCompiled {
		backends = append(backends, "portaudio")
	}
	if malgoCompiled {
		backends = append(backends, "malgo")
	}
	return append(backends, "wav")
}
