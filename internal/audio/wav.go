package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource replays a 16kHz mono 16-bit WAV file as a stream of frames. With
// realtime pacing each frame is released one FrameDuration after the previous one,
// mimicking a live microphone.
type WAVSource struct {
	name     string
	decoder  *wav.Decoder
	closer   io.Closer
	realtime bool

	mu      sync.Mutex
	buf     *goaudio.IntBuffer
	started time.Time
	emitted int
	done    bool
	closed  bool
}

// OpenWAV opens path for frame replay.
func OpenWAV(path string, realtime bool) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav %q: %w", path, err)
	}
	src, err := NewWAVSource(f, "wav:"+path, realtime)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewWAVSource validates the stream header and prepares frame decoding.
func NewWAVSource(r io.ReadSeeker, name string, realtime bool) (*WAVSource, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, errors.New("not a valid wav stream")
	}
	if int(decoder.SampleRate) != SampleRate || int(decoder.NumChans) != Channels || decoder.BitDepth != 16 {
		return nil, fmt.Errorf(
			"unsupported wav format %dHz/%dch/%dbit (want %dHz mono 16bit)",
			decoder.SampleRate, decoder.NumChans, decoder.BitDepth, SampleRate,
		)
	}

	return &WAVSource{
		name:     name,
		decoder:  decoder,
		realtime: realtime,
		buf: &goaudio.IntBuffer{
			Format: &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
			Data:   make([]int, FrameSamples),
		},
	}, nil
}

// Name identifies the replayed file.
func (s *WAVSource) Name() string {
	return s.name
}

// ReadFrame decodes the next frame. A short final frame is padded with silence;
// afterwards io.EOF is returned.
func (s *WAVSource) ReadFrame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSourceClosed
	}
	if s.done {
		return nil, io.EOF
	}
	if err := s.pace(ctx); err != nil {
		return nil, err
	}

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil {
		return nil, fmt.Errorf("decode wav frame: %w", err)
	}
	if n == 0 {
		s.done = true
		return nil, io.EOF
	}
	if n < FrameSamples {
		s.done = true
	}

	frame := make([]byte, FrameBytes)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(int16(s.buf.Data[i])))
	}
	s.emitted++
	return frame, nil
}

// pace waits until the next frame is due in realtime mode.
func (s *WAVSource) pace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.realtime {
		return nil
	}
	if s.started.IsZero() {
		s.started = time.Now()
	}

	due := s.started.Add(time.Duration(s.emitted+1) * FrameDuration)
	wait := time.Until(due)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Close releases the underlying file, if any.
func (s *WAVSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
