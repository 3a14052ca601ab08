//go:build portaudio

package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const portAudioCompiled = true

// PortAudioSource reads frames from the default PortAudio input with blocking reads.
type PortAudioSource struct {
	stream *portaudio.Stream
	buf    []int16

	mu     sync.Mutex
	closed bool
}

// OpenPortAudio initializes PortAudio and starts a mono 16kHz input stream whose
// buffer holds exactly one frame.
func OpenPortAudio() (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	buf := make([]int16, FrameSamples)
	stream, err := portaudio.OpenDefaultStream(Channels, 0, float64(SampleRate), len(buf), buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start portaudio stream: %w", err)
	}
	return &PortAudioSource{stream: stream, buf: buf}, nil
}

// Name identifies the backend.
func (s *PortAudioSource) Name() string {
	return "portaudio:default"
}

// ReadFrame blocks on the device until one frame is filled. The read itself cannot
// be interrupted, so ctx is only checked before it starts.
func (s *PortAudioSource) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}

	if err := s.stream.Read(); err != nil {
		return nil, fmt.Errorf("read portaudio stream: %w", err)
	}

	frame := make([]byte, FrameBytes)
	for i, sample := range s.buf {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(sample))
	}
	return frame, nil
}

// Close stops the stream and releases PortAudio.
func (s *PortAudioSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	stopErr := s.stream.Stop()
	closeErr := s.stream.Close()
	termErr := portaudio.Terminate()
	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return closeErr
	}
	return termErr
}
