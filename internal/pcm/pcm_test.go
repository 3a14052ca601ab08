package pcm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func s16(values ...int16) []byte {
	return Bytes(values)
}

func TestNormalizeFullScaleStaysInRange(t *testing.T) {
	samples, outOfRange := Normalize(s16(0, 16384, -32768, 32767), FullScale)
	require.Equal(t, 0, outOfRange)
	require.InDelta(t, 0.0, samples[0], 1e-9)
	require.InDelta(t, 0.5, samples[1], 1e-6)
	require.InDelta(t, -1.0, samples[2], 1e-6)
	require.InDelta(t, 0.99997, samples[3], 1e-5)
}

func TestNormalizeDivisor255FlagsOutOfRange(t *testing.T) {
	samples, outOfRange := Normalize(s16(32767, 100, -255), 255)
	require.InDelta(t, 128.498, samples[0], 1e-3)
	require.Greater(t, float64(samples[0]), 1.0)
	require.InDelta(t, 0.392, samples[1], 1e-3)
	require.InDelta(t, -1.0, samples[2], 1e-6)
	require.Equal(t, 1, outOfRange)
}

func TestNormalizeIgnoresTrailingOddByte(t *testing.T) {
	samples, _ := Normalize(append(s16(1, 2), 0xff), FullScale)
	require.Len(t, samples, 2)
}

func TestQuantizeClampsAndRoundTrips(t *testing.T) {
	require.Equal(t, []int16{0, 16384, -32768, 32767, -32768}, Quantize([]float32{0, 0.5, -1, 128.5, -3}))

	original := s16(-1200, 0, 5, 31000)
	samples, _ := Normalize(original, FullScale)
	require.Equal(t, original, Bytes(Quantize(samples)))
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := s16(1, 2, 3)
	wav := EncodeWAV(pcm, 16000, 1)

	require.Len(t, wav, 44+len(pcm))
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	require.Equal(t, uint32(16000), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint32(32000), binary.LittleEndian.Uint32(wav[28:32]))
	require.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	require.Equal(t, pcm, wav[44:])
}
