package session

import (
	"context"
	"errors"

	"github.com/rbright/scribe/internal/ipc"
	"github.com/rbright/scribe/internal/pipeline"
	"github.com/rbright/scribe/internal/stats"
)

var (
	// ErrAlreadyRunning indicates another scribe process owns the runtime socket.
	ErrAlreadyRunning = ipc.ErrAlreadyRunning
	// ErrNoRunner indicates Start returned neither a runner nor an error.
	ErrNoRunner = errors.New("start produced no pipeline")
)

// Runner is the running pipeline as seen by the controller. *pipeline.Pipeline
// satisfies it.
type Runner interface {
	Run(context.Context) error
	Status() pipeline.Status
	Summary() stats.Summary
}

// Starter opens devices and engines and returns a ready pipeline.
type Starter interface {
	Start(context.Context) (Runner, error)
}

// StartFunc adapts a function to the Starter interface.
type StartFunc func(context.Context) (Runner, error)

func (f StartFunc) Start(ctx context.Context) (Runner, error) {
	return f(ctx)
}
