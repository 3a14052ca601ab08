//go:build !portaudio

package audio

import "errors"

const portAudioCompiled = false

// PortAudioSource is unavailable in builds without the portaudio tag.
type PortAudioSource struct{ unavailableSource }

// OpenPortAudio reports that the binary was built without PortAudio support.
func OpenPortAudio() (*PortAudioSource, error) {
	return nil, errors.New("portaudio backend not compiled in (rebuild with -tags portaudio)")
}
