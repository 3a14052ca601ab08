// Package window holds the bounded context window the engine transcribes.
package window

import (
	"errors"
	"fmt"

	"github.com/rbright/scribe/internal/audio"
)

// DefaultChunks is the default window capacity (6 one-second chunks).
const DefaultChunks = 6

// ErrFull is returned by Append when the caller skipped the reset check.
var ErrFull = errors.New("window full")

// Buffer is an ordered, bounded list of chunks. It is owned by a single goroutine.
type Buffer struct {
	capacity int
	chunks   []audio.Chunk
	size     int
}

// New creates an empty buffer holding up to capacity chunks.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window capacity must be > 0 (got %d)", capacity)
	}
	return &Buffer{
		capacity: capacity,
		chunks:   make([]audio.Chunk, 0, capacity),
	}, nil
}

// Append adds chunk at the tail.
func (b *Buffer) Append(chunk audio.Chunk) error {
	if len(b.chunks) >= b.capacity {
		return ErrFull
	}
	b.chunks = append(b.chunks, chunk)
	b.size += len(chunk.PCM)
	return nil
}

// Clear empties the buffer, keeping its storage.
func (b *Buffer) Clear() {
	clear(b.chunks)
	b.chunks = b.chunks[:0]
	b.size = 0
}

// Concat returns the PCM of every chunk in insertion order as one new slice.
func (b *Buffer) Concat() []byte {
	out := make([]byte, 0, b.size)
	for _, chunk := range b.chunks {
		out = append(out, chunk.PCM...)
	}
	return out
}

// Len reports the number of chunks held.
func (b *Buffer) Len() int { return len(b.chunks) }

// Cap reports the capacity.
func (b *Buffer) Cap() int { return b.capacity }

// Full reports whether the next cycle must reset before appending.
func (b *Buffer) Full() bool { return len(b.chunks) >= b.capacity }

// Span returns the first and last chunk sequence numbers held.
func (b *Buffer) Span() (first uint64, last uint64, ok bool) {
	if len(b.chunks) == 0 {
		return 0, 0, false
	}
	return b.chunks[0].Seq, b.chunks[len(b.chunks)-1].Seq, true
}
