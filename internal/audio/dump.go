package audio

import (
	"encoding/binary"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV stores raw capture-format PCM as a WAV file with mode 0600.
func WriteWAV(path string, pcm []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open wav %q: %w", path, err)
	}
	defer f.Close()

	samples := make([]int, len(pcm)/BytesPerSample)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	enc := wav.NewEncoder(f, SampleRate, 16, Channels, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode wav %q: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav %q: %w", path, err)
	}
	return nil
}
