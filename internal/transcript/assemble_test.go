package transcript

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssembleJoinsWithSingleSpaces(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{" hello", "world.", "\nfrom", "scribe"}, Options{})
	require.Equal(t, "hello world. from scribe", got)
}

func TestAssembleEmptyInput(t *testing.T) {
	t.Parallel()

	require.Empty(t, Assemble(nil, Options{StripNoise: true}))
}

func TestAssembleSkipsWhitespaceOnlySegments(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{"  ", "\n\t", "hello"}, Options{})
	require.Equal(t, "hello", got)
}

func TestAssembleKeepsMarkersByDefault(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{"[MUSIC]", "hello (coughs) there"}, Options{})
	require.Equal(t, "[MUSIC] hello (coughs) there", got)
}

func TestAssembleStripNoiseRemovesEachMarkerOnly(t *testing.T) {
	t.Parallel()

	got := Assemble([]string{"[MUSIC] hello", "(coughs) there [BLANK_AUDIO] friend (laughs)"}, Options{StripNoise: true})
	require.Equal(t, "hello there friend", got)
}

func TestAssembleIdempotentForNormalizedOutput(t *testing.T) {
	t.Parallel()

	first := Assemble([]string{"hello   world. this is scribe"}, Options{StripNoise: true})
	second := Assemble([]string{first}, Options{StripNoise: true})
	require.Equal(t, first, second)
}

func TestPad(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hi   ", Pad("hi", 5))
	require.Equal(t, "hello", Pad("hello", 3))
	require.Equal(t, "héé ", Pad("héé", 4))
}
