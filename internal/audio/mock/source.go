// Package mock provides an in-memory audio.Source for pipeline tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/rbright/scribe/internal/audio"
)

// Source replays scripted frames. After the frames run out it returns Err, or
// io.EOF when Err is nil. With Hold set it instead blocks until the context is done.
type Source struct {
	Frames [][]byte
	Err    error
	Hold   bool

	mu     sync.Mutex
	next   int
	closed bool
}

var _ audio.Source = (*Source)(nil)

// Frames builds n full frames, each filled with its own index byte.
func Frames(n int) [][]byte {
	frames := make([][]byte, n)
	for i := range frames {
		frame := make([]byte, audio.FrameBytes)
		for j := range frame {
			frame[j] = byte(i)
		}
		frames[i] = frame
	}
	return frames
}

// ReadFrame returns the next scripted frame.
func (s *Source) ReadFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, audio.ErrSourceClosed
	}
	if s.next < len(s.Frames) {
		frame := s.Frames[s.next]
		s.next++
		s.mu.Unlock()
		return frame, nil
	}
	s.mu.Unlock()

	if s.Hold {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return nil, io.EOF
}

func (s *Source) Name() string { return "mock" }

func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
