package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// requestReadTimeout bounds how long a client may take to send its request.
const requestReadTimeout = 2 * time.Second

// Handler answers one validated control request.
type Handler interface {
	Handle(context.Context, Request) Response
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(context.Context, Request) Response

func (f HandlerFunc) Handle(ctx context.Context, req Request) Response {
	return f(ctx, req)
}

// Serve answers one request per connection until ctx is done or the listener
// closes. Requests naming an unknown command are rejected before the handler
// sees them.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	stop := context.AfterFunc(ctx, func() { _ = listener.Close() })
	defer stop()

	var conns sync.WaitGroup
	defer conns.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		conns.Add(1)
		go func() {
			defer conns.Done()
			defer conn.Close()
			_ = json.NewEncoder(conn).Encode(answer(ctx, conn, handler))
		}()
	}
}

// answer reads and validates one request from conn and dispatches it.
func answer(ctx context.Context, conn net.Conn, handler Handler) Response {
	_ = conn.SetReadDeadline(time.Now().Add(requestReadTimeout))

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return errorResponse("read request: %v", err)
	}

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse("decode request: %v", err)
	}
	if !req.Command.Valid() {
		return errorResponse("unknown command: %q", req.Command)
	}
	return handler.Handle(ctx, req)
}
