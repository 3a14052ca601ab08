package window

import (
	"testing"

	"github.com/rbright/scribe/internal/audio"
	"github.com/stretchr/testify/require"
)

func chunk(seq uint64, pcm ...byte) audio.Chunk {
	return audio.Chunk{Seq: seq, PCM: pcm}
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	require.Error(t, err)
	_, err = New(-1)
	require.Error(t, err)
}

func TestAppendUntilFull(t *testing.T) {
	b, err := New(DefaultChunks)
	require.NoError(t, err)

	for i := 0; i < DefaultChunks; i++ {
		require.False(t, b.Full())
		require.NoError(t, b.Append(chunk(uint64(i), byte(i))))
		require.Equal(t, i+1, b.Len())
	}
	require.True(t, b.Full())
	require.ErrorIs(t, b.Append(chunk(99, 0)), ErrFull)
	require.Equal(t, DefaultChunks, b.Len())
}

func TestConcatIsByteExactFIFO(t *testing.T) {
	b, err := New(3)
	require.NoError(t, err)
	require.Empty(t, b.Concat())

	require.NoError(t, b.Append(chunk(0, 1, 2)))
	require.NoError(t, b.Append(chunk(1, 3)))
	require.NoError(t, b.Append(chunk(2, 4, 5, 6)))
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b.Concat())

	first, last, ok := b.Span()
	require.True(t, ok)
	require.Equal(t, uint64(0), first)
	require.Equal(t, uint64(2), last)
}

func TestClearResetsLengthAndSpan(t *testing.T) {
	b, err := New(2)
	require.NoError(t, err)
	require.NoError(t, b.Append(chunk(7, 1)))
	require.NoError(t, b.Append(chunk(8, 2)))

	b.Clear()
	require.Equal(t, 0, b.Len())
	require.Equal(t, 2, b.Cap())
	require.Empty(t, b.Concat())
	_, _, ok := b.Span()
	require.False(t, ok)

	require.NoError(t, b.Append(chunk(9, 3)))
	require.Equal(t, []byte{3}, b.Concat())
}

func TestResetCadenceOverManyCycles(t *testing.T) {
	b, err := New(DefaultChunks)
	require.NoError(t, err)

	resets := 0
	for i := 0; i < 20; i++ {
		if b.Full() {
			b.Clear()
			resets++
		}
		require.NoError(t, b.Append(chunk(uint64(i), byte(i))))
		require.LessOrEqual(t, b.Len(), DefaultChunks)
		require.Equal(t, i%DefaultChunks+1, b.Len())
	}
	require.Equal(t, 3, resets)
}
