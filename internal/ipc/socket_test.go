package ipc

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireReplacesStaleSocketFile(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), socketName)
	require.NoError(t, os.WriteFile(socketPath, []byte("left by a crashed run"), 0o600))

	listener, err := Acquire(context.Background(), socketPath, 50*time.Millisecond, 2)
	require.NoError(t, err)
	require.NoError(t, Release(listener, socketPath))
}

func TestAcquireCreatesOwnerOnlySocket(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "nested", socketName)

	listener, err := Acquire(context.Background(), socketPath, 50*time.Millisecond, 0)
	require.NoError(t, err)
	defer func() { require.NoError(t, Release(listener, socketPath)) }()

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	require.Equal(t, os.ModeSocket, info.Mode().Type())
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAcquireRefusesSecondInstance(t *testing.T) {
	socketPath := serveTest(t, func(context.Context, Request) Response {
		return Response{OK: true, State: "running", RunID: "first"}
	})

	_, err := Acquire(context.Background(), socketPath, 80*time.Millisecond, 1)
	require.ErrorIs(t, err, ErrAlreadyRunning)
	require.EqualError(t, err, "scribe is already running")
}

func TestAcquireKeepsSocketOfUnresponsiveOwner(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), socketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		for {
			conn, acceptErr := listener.Accept()
			if acceptErr != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				time.Sleep(250 * time.Millisecond)
			}(conn)
		}
	}()

	_, err = Acquire(context.Background(), socketPath, 30*time.Millisecond, 0)
	require.ErrorContains(t, err, "probe existing socket")
	require.NotErrorIs(t, err, ErrAlreadyRunning)

	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
	require.NoError(t, listener.Close())
	<-acceptDone
}

func TestReleaseToleratesClosedListenerAndMissingFile(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), socketName)
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	require.NoError(t, Release(listener, socketPath))
	require.NoError(t, Release(listener, socketPath))

	_, statErr := os.Stat(socketPath)
	require.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRuntimeSocketPath(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "  ")
	_, err := RuntimeSocketPath()
	require.EqualError(t, err, "XDG_RUNTIME_DIR is not set")

	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	path, err := RuntimeSocketPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "scribe.sock"), path)
}
