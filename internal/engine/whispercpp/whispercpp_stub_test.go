//go:build !whispercpp

package whispercpp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithoutBuildTag(t *testing.T) {
	require.False(t, Compiled)
	_, err := New(Config{ModelPath: "/models/ggml-small.bin"})
	require.ErrorContains(t, err, "-tags whispercpp")
}
