//go:build malgo

package audio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

const malgoCompiled = true

// MalgoSource captures through miniaudio and slices the callback stream into frames.
type MalgoSource struct {
	mctx   *malgo.AllocatedContext
	device *malgo.Device

	frames chan []byte
	stopCh chan struct{}
	lost   *lossSignal

	mu      sync.Mutex
	pending []byte
	stopped bool
}

// OpenMalgo initializes a miniaudio context and starts the default capture device.
func OpenMalgo() (*MalgoSource, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("initialize miniaudio context: %w", err)
	}

	s := &MalgoSource{
		mctx:   mctx,
		frames: make(chan []byte, 4),
		stopCh: make(chan struct{}),
		lost:   newLossSignal(),
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = Channels
	cfg.SampleRate = SampleRate
	cfg.Alsa.NoMMap = 1

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) { s.onPCM(input) },
		Stop: s.onStop,
	})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("initialize miniaudio capture device: %w", err)
	}
	s.device = device

	if err := device.Start(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("start miniaudio capture device: %w", err)
	}
	return s, nil
}

// Name identifies the backend.
func (s *MalgoSource) Name() string {
	return "malgo:default"
}

// ReadFrame blocks until one full frame has been captured.
func (s *MalgoSource) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.stopCh:
		return nil, ErrSourceClosed
	case <-s.lost.done():
		return nil, s.lost.cause()
	case frame := <-s.frames:
		return frame, nil
	}
}

// Close stops the device and frees the miniaudio context.
func (s *MalgoSource) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
	}
	err := s.mctx.Uninit()
	s.mctx.Free()
	return err
}

// onStop runs when miniaudio stops the device. Only a stop we did not ask for
// counts as a lost device.
func (s *MalgoSource) onStop() {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.lost.trip(fmt.Errorf("miniaudio capture stopped: %w", ErrDeviceLost))
}

// onPCM runs on the miniaudio callback thread and must not block it for long.
func (s *MalgoSource) onPCM(input []byte) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, input...)
	var ready [][]byte
	for len(s.pending) >= FrameBytes {
		frame := make([]byte, FrameBytes)
		copy(frame, s.pending[:FrameBytes])
		s.pending = s.pending[FrameBytes:]
		ready = append(ready, frame)
	}
	s.mu.Unlock()

	for _, frame := range ready {
		select {
		case s.frames <- frame:
		case <-s.stopCh:
			return
		}
	}
}
