// Package mock provides a scripted engine for pipeline tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/rbright/scribe/internal/engine"
)

// Call records one Transcribe invocation.
type Call struct {
	Samples int
	First   float32
}

// Engine returns one segment per call naming the call number and sample count,
// unless Respond or Fail override the result for that call (1-based).
type Engine struct {
	Respond func(call int, samples []float32) []engine.Segment
	Fail    map[int]error
	// OnCall runs before the result is produced, e.g. to cancel a context mid-run.
	OnCall func(call int)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) Transcribe(_ context.Context, samples []float32) ([]engine.Segment, error) {
	e.mu.Lock()
	call := Call{Samples: len(samples)}
	if len(samples) > 0 {
		call.First = samples[0]
	}
	e.calls = append(e.calls, call)
	n := len(e.calls)
	e.mu.Unlock()

	if e.OnCall != nil {
		e.OnCall(n)
	}
	if err := e.Fail[n]; err != nil {
		return nil, err
	}
	if e.Respond != nil {
		return e.Respond(n, samples), nil
	}
	return []engine.Segment{{Text: fmt.Sprintf("call %d", n)}, {Text: fmt.Sprintf("samples %d", len(samples))}}, nil
}

// Calls returns a copy of the recorded invocations.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Closed reports whether Close was called.
func (e *Engine) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
