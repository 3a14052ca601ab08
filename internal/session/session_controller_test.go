package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rbright/scribe/internal/fsm"
	"github.com/rbright/scribe/internal/ipc"
)

func TestHandleStatusAndUnknownCommand(t *testing.T) {
	ctrl := NewController(nil, startWith(newFakeRunner(), nil))

	status := ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStatus})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)
	require.Equal(t, ctrl.RunID(), status.RunID)
	require.Zero(t, status.Processed)

	unknown := ctrl.Handle(context.Background(), ipc.Request{Command: "toggle"})
	require.False(t, unknown.OK)
	require.Contains(t, unknown.Error, "unknown command")
}

func TestHandleStatusReportsPipelineCounters(t *testing.T) {
	runner := newFakeRunner()
	ctrl := NewController(nil, startWith(runner, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resultCh := runAsync(ctx, ctrl)
	waitForState(t, ctrl, fsm.StateRunning)

	status := ctrl.Handle(ctx, ipc.Request{Command: ipc.CommandStatus})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateRunning), status.State)
	require.Equal(t, 3, status.Processed)
	require.Equal(t, 1, status.QueueDepth)
	require.Equal(t, 2, status.Pending)
	require.Equal(t, 3, status.WindowLength)
	require.Equal(t, 6, status.WindowCapacity)
	require.Equal(t, "running run_id="+ctrl.RunID()+" processed=3 queue_depth=1 pending=2 window=3/6", status.StatusLine())

	cancel()
	<-resultCh
}

func TestRequestStopStateGuards(t *testing.T) {
	ctrl := NewController(nil, startWith(newFakeRunner(), nil))

	stopFromIdle := ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStop})
	require.False(t, stopFromIdle.OK)
	require.Contains(t, stopFromIdle.Error, "cannot stop from state idle")

	ctrl.mu.Lock()
	ctrl.state = fsm.StateDraining
	ctrl.mu.Unlock()

	stopWhileDraining := ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStop})
	require.True(t, stopWhileDraining.OK)
	require.Equal(t, "stop already requested", stopWhileDraining.Message)

	ctrl.mu.Lock()
	ctrl.state = fsm.StateStopped
	ctrl.mu.Unlock()

	stopWhenStopped := ctrl.Handle(context.Background(), ipc.Request{Command: ipc.CommandStop})
	require.False(t, stopWhenStopped.OK)
}

func TestRequestStopAlreadyRequested(t *testing.T) {
	ctrl := NewController(nil, startWith(newFakeRunner(), nil))

	ctrl.mu.Lock()
	ctrl.state = fsm.StateRunning
	ctrl.mu.Unlock()

	first := ctrl.requestStop()
	require.True(t, first.OK)
	require.Equal(t, "stop requested", first.Message)

	second := ctrl.requestStop()
	require.True(t, second.OK)
	require.Equal(t, "stop already requested", second.Message)
}

func TestStopIsIdempotent(t *testing.T) {
	ctrl := NewController(nil, nil)
	ctrl.Stop()
	ctrl.Stop()
	require.True(t, ctrl.stopRequested())
}

func TestStartFuncDelegates(t *testing.T) {
	runner := newFakeRunner()
	got, err := startWith(runner, nil).Start(context.Background())
	require.NoError(t, err)
	require.Same(t, runner, got)
}

func TestRunIDsAreUnique(t *testing.T) {
	a := NewController(nil, nil)
	b := NewController(nil, nil)
	require.NotEmpty(t, a.RunID())
	require.NotEqual(t, a.RunID(), b.RunID())
}
