// Package session drives the run lifecycle and answers control requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/scribe/internal/fsm"
	"github.com/rbright/scribe/internal/ipc"
	"github.com/rbright/scribe/internal/pipeline"
	"github.com/rbright/scribe/internal/stats"
)

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	RunID       string
	State       fsm.State
	Err         error
	Interrupted bool
	Status      pipeline.Status
	Summary     stats.Summary
	Started     bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Controller orchestrates lifecycle state transitions for one run.
type Controller struct {
	logger  *slog.Logger
	starter Starter
	runID   string

	mu     sync.RWMutex
	state  fsm.State
	runner Runner

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewController constructs a controller with a fresh run identifier.
func NewController(logger *slog.Logger, starter Starter) *Controller {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Controller{
		logger:  logger,
		starter: starter,
		runID:   uuid.NewString(),
		state:   fsm.StateIdle,
		stopCh:  make(chan struct{}),
	}
}

// RunID identifies this run in logs, status replies and published events.
func (c *Controller) RunID() string {
	return c.runID
}

// State returns the current FSM state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Ready reports whether the pipeline is running.
func (c *Controller) Ready() bool {
	return c.State() == fsm.StateRunning
}

// transition applies one FSM event to the controller state.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.logger.Debug("lifecycle transition", "run_id", c.runID, "from", string(c.state), "event", string(event), "to", string(next))
	c.state = next
	return nil
}

// Run starts the pipeline and blocks until it stops. Cancelling ctx or a stop
// request drains the pipeline between cycles.
func (c *Controller) Run(ctx context.Context) Result {
	result := Result{RunID: c.runID, StartedAt: time.Now()}
	finish := func(err error) Result {
		result.State = c.State()
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	if c.starter == nil {
		return finish(ErrNoRunner)
	}
	if err := c.transition(fsm.EventStart); err != nil {
		return finish(err)
	}

	runner, err := c.starter.Start(ctx)
	if err == nil && runner == nil {
		err = ErrNoRunner
	}
	if err != nil {
		_ = c.transition(fsm.EventFail)
		return finish(fmt.Errorf("start pipeline: %w", err))
	}

	c.mu.Lock()
	c.runner = runner
	c.mu.Unlock()
	result.Started = true

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := c.transition(fsm.EventReady); err != nil {
		_ = c.transition(fsm.EventFail)
		return finish(err)
	}

	done := make(chan struct{})
	var interrupted bool
	var watchWG sync.WaitGroup
	watchWG.Add(1)
	go func() {
		defer watchWG.Done()
		select {
		case <-done:
			return
		case <-ctx.Done():
		case <-c.stopCh:
		}
		interrupted = true
		_ = c.transition(fsm.EventStop)
		cancel()
	}()

	c.logger.Info("pipeline running", "run_id", c.runID)
	runErr := runner.Run(runCtx)
	close(done)
	watchWG.Wait()

	result.Interrupted = interrupted || c.stopRequested()
	result.Status = runner.Status()
	result.Summary = runner.Summary()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_ = c.transition(fsm.EventFail)
		c.logger.Error("pipeline failed", "run_id", c.runID, "error", runErr.Error())
		return finish(runErr)
	}

	if c.State() == fsm.StateRunning {
		// Source exhausted without an interrupt.
		_ = c.transition(fsm.EventStop)
	}
	if err := c.transition(fsm.EventDrained); err != nil {
		return finish(err)
	}
	c.logger.Info("pipeline stopped",
		"run_id", c.runID,
		"processed", result.Status.Processed,
		"interrupted", result.Interrupted,
	)
	return finish(nil)
}

// Stop requests a graceful shutdown equivalent to SIGINT.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *Controller) stopRequested() bool {
	select {
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

// Handle serves IPC commands for the running instance.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return c.status()
	case ipc.CommandStop:
		return c.requestStop()
	default:
		return ipc.Response{OK: false, State: string(c.State()), RunID: c.runID, Error: fmt.Sprintf("unknown command: %q", req.Command)}
	}
}

// status snapshots lifecycle state and pipeline counters.
func (c *Controller) status() ipc.Response {
	c.mu.RLock()
	state, runner := c.state, c.runner
	c.mu.RUnlock()

	resp := ipc.Response{OK: true, State: string(state), RunID: c.runID, Message: "status"}
	if runner != nil {
		st := runner.Status()
		resp.Processed = st.Processed
		resp.QueueDepth = st.QueueDepth
		resp.Pending = st.Pending
		resp.WindowLength = st.WindowLength
		resp.WindowCapacity = st.WindowCapacity
	}
	return resp
}

// requestStop signals Run when state permits it.
func (c *Controller) requestStop() ipc.Response {
	state := c.State()
	switch state {
	case fsm.StateStarting, fsm.StateRunning:
	case fsm.StateDraining:
		return ipc.Response{OK: true, State: string(state), RunID: c.runID, Message: "stop already requested"}
	default:
		return ipc.Response{OK: false, State: string(state), RunID: c.runID, Error: fmt.Sprintf("cannot stop from state %s", state)}
	}

	if c.stopRequested() {
		return ipc.Response{OK: true, State: string(state), RunID: c.runID, Message: "stop already requested"}
	}
	c.Stop()
	return ipc.Response{OK: true, State: string(state), RunID: c.runID, Message: "stop requested"}
}
