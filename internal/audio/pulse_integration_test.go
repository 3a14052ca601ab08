//go:build integration

package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListDevicesIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	devices, err := ListDevices(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, devices)
}

func TestPulseSourceReadsOneFrameIntegration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	selection, err := SelectDevice(ctx, "default", "default")
	require.NoError(t, err)

	source, err := OpenPulse(selection.Device)
	require.NoError(t, err)
	defer source.Close()

	frame, err := source.ReadFrame(ctx)
	require.NoError(t, err)
	require.Len(t, frame, FrameBytes)
}
