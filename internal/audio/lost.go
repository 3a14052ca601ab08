package audio

import (
	"errors"
	"sync"
)

// ErrDeviceLost marks a capture device that went away while recording.
var ErrDeviceLost = errors.New("audio device lost")

// lossSignal latches the first device-loss error of a live source. A nil
// *lossSignal never fires.
type lossSignal struct {
	once sync.Once
	ch   chan struct{}
	err  error
}

func newLossSignal() *lossSignal {
	return &lossSignal{ch: make(chan struct{})}
}

// trip records err and wakes every waiter. Later calls are ignored.
func (l *lossSignal) trip(err error) {
	l.once.Do(func() {
		l.err = err
		close(l.ch)
	})
}

func (l *lossSignal) done() <-chan struct{} {
	if l == nil {
		return nil
	}
	return l.ch
}

// cause is valid once done is closed.
func (l *lossSignal) cause() error {
	return l.err
}
