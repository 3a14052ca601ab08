// Package pcm converts between captured 16-bit PCM and engine float samples.
package pcm

import (
	"encoding/binary"
	"math"
)

// FullScale maps int16 samples onto [-1, 1).
const FullScale = 32768.0

// Normalize converts s16le PCM to float32 by dividing each sample by divisor.
// It also reports how many results fall outside the engine's [-1, 1] input range.
// A trailing odd byte is ignored.
func Normalize(pcm []byte, divisor float64) (samples []float32, outOfRange int) {
	n := len(pcm) / 2
	samples = make([]float32, n)
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / divisor
		if v > 1 || v < -1 {
			outOfRange++
		}
		samples[i] = float32(v)
	}
	return samples, outOfRange
}

// Quantize maps float samples back to int16 at full scale, clamping values
// outside [-1, 1].
func Quantize(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s) * FullScale)
		switch {
		case v > math.MaxInt16:
			v = math.MaxInt16
		case v < math.MinInt16:
			v = math.MinInt16
		}
		out[i] = int16(v)
	}
	return out
}

// Bytes encodes int16 samples as s16le.
func Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// EncodeWAV wraps s16le PCM in a 44-byte RIFF/WAV header.
func EncodeWAV(pcm []byte, sampleRate int, channels int) []byte {
	const bitsPerSample = 16
	blockAlign := channels * bitsPerSample / 8
	buf := make([]byte, 44+len(pcm))

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)
	return buf
}
