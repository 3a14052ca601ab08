package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	pulseApplicationName = "scribe"
	// pulseFragmentBytes keeps Pulse deliveries small (20ms) so frames fill evenly.
	pulseFragmentBytes = 640
	// pulseWatchInterval is how often a live record stream is checked for server loss.
	pulseWatchInterval = 250 * time.Millisecond
)

// ErrSourceClosed is returned by ReadFrame after Close.
var ErrSourceClosed = errors.New("audio source closed")

// Device describes one Pulse input source.
type Device struct {
	ID          string
	Description string
	State       string
	Available   bool
	Muted       bool
	Default     bool
}

// String formats device metadata for logs and diagnostics.
func (d Device) String() string {
	description := strings.TrimSpace(d.Description)
	id := strings.TrimSpace(d.ID)
	switch {
	case description == "":
		return id
	case id == "":
		return description
	default:
		return fmt.Sprintf("%s (%s)", description, id)
	}
}

// Selection is the resolved capture source plus an optional fallback warning.
type Selection struct {
	Device   Device
	Warning  string
	Fallback bool
}

func newPulseClient() (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(pulseApplicationName),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}

// ListDevices returns Pulse input sources with default/availability metadata.
func ListDevices(_ context.Context) ([]Device, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("read default source: %w", err)
	}

	var infos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &infos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		devices = append(devices, Device{
			ID:          info.SourceName,
			Description: info.Device,
			State:       sourceStateString(info.State),
			Available:   sourceAvailable(info),
			Muted:       info.Mute,
			Default:     info.SourceName == defaultSource.ID(),
		})
	}
	return devices, nil
}

// SelectDevice resolves audio.input/audio.fallback preferences against live devices.
func SelectDevice(ctx context.Context, input string, fallback string) (Selection, error) {
	devices, err := ListDevices(ctx)
	if err != nil {
		return Selection{}, err
	}
	return selectDeviceFromList(devices, input, fallback)
}

// selectDeviceFromList applies the selection policy to a pre-fetched device list:
// the requested input if usable, else the fallback (or default) source.
func selectDeviceFromList(devices []Device, input string, fallback string) (Selection, error) {
	if len(devices) == 0 {
		return Selection{}, errors.New("no audio input devices found")
	}

	input = normalizeTerm(input)
	fallback = normalizeTerm(fallback)

	var defaultDevice, byInput, byFallback *Device
	for i := range devices {
		dev := &devices[i]
		if dev.Default {
			defaultDevice = dev
		}
		if byInput == nil && deviceMatches(*dev, input) {
			byInput = dev
		}
		if byFallback == nil && deviceMatches(*dev, fallback) {
			byFallback = dev
		}
	}

	var primary *Device
	switch {
	case input == "":
		if defaultDevice == nil {
			return Selection{}, errors.New("default audio source is unavailable")
		}
		primary = defaultDevice
	case byInput != nil:
		primary = byInput
	default:
		return Selection{}, fmt.Errorf("audio.input %q did not match any device", input)
	}

	if usable(*primary) {
		return Selection{Device: *primary}, nil
	}

	reason := "unavailable"
	if primary.Muted {
		reason = "muted"
	}

	alternate := defaultDevice
	if fallback != "" {
		if byFallback == nil {
			return Selection{}, fmt.Errorf("primary input %q is %s and fallback %q not found", primary.ID, reason, fallback)
		}
		alternate = byFallback
	}
	if alternate == nil {
		return Selection{}, fmt.Errorf("primary input %q is %s and no usable fallback: default audio source is unavailable", primary.ID, reason)
	}
	if !alternate.Available {
		return Selection{}, fmt.Errorf("audio fallback device %q is not available", alternate.ID)
	}
	if alternate.Muted {
		return Selection{}, fmt.Errorf("audio fallback device %q is muted", alternate.ID)
	}

	return Selection{
		Device:   *alternate,
		Warning:  fmt.Sprintf("audio.input %q is %s; falling back to %q", primary.ID, reason, alternate.ID),
		Fallback: primary.ID != alternate.ID,
	}, nil
}

// normalizeTerm lowercases a selector; "default" and blank both mean the default source.
func normalizeTerm(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "default" {
		return ""
	}
	return term
}

func usable(d Device) bool {
	return d.Available && !d.Muted
}

// deviceMatches reports whether a search term matches a device id or description.
func deviceMatches(device Device, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(device.ID), term) ||
		strings.Contains(strings.ToLower(device.Description), term)
}

// PulseSource records from one Pulse source and slices the stream into 1s frames.
type PulseSource struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	frames chan []byte
	stopCh chan struct{}
	lost   *lossSignal

	mu      sync.Mutex
	pending []byte
	stopped bool

	inflight sync.WaitGroup
	bytes    atomic.Int64
}

// OpenPulse creates and starts a 16kHz mono s16 record stream on the selected device.
func OpenPulse(selected Device) (*PulseSource, error) {
	client, err := newPulseClient()
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(selected.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", selected.ID, err)
	}

	s := &PulseSource{
		device: selected,
		client: client,
		frames: make(chan []byte, 4),
		stopCh: make(chan struct{}),
		lost:   newLossSignal(),
	}

	writer := pulse.NewWriter(writerFunc(s.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(pulseFragmentBytes),
		pulse.RecordMediaName("scribe live transcription"),
	)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	s.stream = stream
	stream.Start()
	go s.watchStream(pulseWatchInterval, recordStreamHealth(stream))
	return s, nil
}

// recordStreamHealth reports why a started record stream is no longer delivering.
func recordStreamHealth(stream *pulse.RecordStream) func() error {
	return func() error {
		switch {
		case stream.Closed():
			return errors.New("record stream closed by server")
		case stream.Error() != nil:
			return stream.Error()
		case !stream.Running():
			return errors.New("record stream stopped")
		}
		return nil
	}
}

// watchStream polls health until Close and trips the loss signal on the first
// failure. health runs under s.mu so it never observes a stream Close tore down.
func (s *PulseSource) watchStream(interval time.Duration, health func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.stopped {
			s.mu.Unlock()
			return
		}
		err := health()
		s.mu.Unlock()

		if err != nil {
			s.lost.trip(fmt.Errorf("pulse stream lost after %d bytes: %w: %w", s.BytesCaptured(), ErrDeviceLost, err))
			return
		}
	}
}

// Name identifies the capture device.
func (s *PulseSource) Name() string {
	return "pulse:" + s.device.String()
}

// BytesCaptured reports total bytes accepted from Pulse.
func (s *PulseSource) BytesCaptured() int64 {
	return s.bytes.Load()
}

// ReadFrame blocks until one full frame has been recorded. It fails with
// ErrDeviceLost once the server or source goes away.
func (s *PulseSource) ReadFrame(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.lost.done():
		return nil, s.lost.cause()
	case frame, ok := <-s.frames:
		if !ok {
			return nil, ErrSourceClosed
		}
		return frame, nil
	}
}

// Close halts the stream and closes the frame channel exactly once. A partial
// trailing frame is discarded.
func (s *PulseSource) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	if s.stream != nil && !s.stream.Closed() {
		s.stream.Stop()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}

	s.inflight.Wait()
	close(s.frames)
	return nil
}

// onPCM receives raw Pulse fragments and emits FrameBytes slices.
func (s *PulseSource) onPCM(buffer []byte) (int, error) {
	if len(buffer) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, io.EOF
	}
	// Add is guarded by the same mutex as stopped so Close cannot race Wait.
	s.inflight.Add(1)
	defer s.inflight.Done()

	s.pending = append(s.pending, buffer...)
	var ready [][]byte
	for len(s.pending) >= FrameBytes {
		frame := make([]byte, FrameBytes)
		copy(frame, s.pending[:FrameBytes])
		s.pending = s.pending[FrameBytes:]
		ready = append(ready, frame)
	}
	s.mu.Unlock()

	s.bytes.Add(int64(len(buffer)))

	for _, frame := range ready {
		select {
		case <-s.stopCh:
			return 0, io.EOF
		case s.frames <- frame:
		}
	}
	return len(buffer), nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}

// sourceStateString maps Pulse source state constants to readable values.
func sourceStateString(state uint32) string {
	switch state {
	case 0:
		return "running"
	case 1:
		return "idle"
	case 2:
		return "suspended"
	default:
		return fmt.Sprintf("unknown(%d)", state)
	}
}

// sourceAvailable maps the active port availability to a boolean.
func sourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	for _, port := range source.Ports {
		if port.Name == source.ActivePortName {
			// PulseAudio values: unknown=0, no=1, yes=2.
			return port.Available != 1
		}
	}
	return true
}
