package ipc

import "fmt"

// Command names a control request a running scribe understands.
type Command string

const (
	CommandStatus Command = "status"
	CommandStop   Command = "stop"
)

// Valid reports whether c is a known control command.
func (c Command) Valid() bool {
	switch c {
	case CommandStatus, CommandStop:
		return true
	default:
		return false
	}
}

// Request is one newline-delimited JSON control message.
type Request struct {
	Command Command `json:"command"`
}

// Response carries the lifecycle state plus live pipeline counters.
type Response struct {
	OK             bool   `json:"ok"`
	State          string `json:"state,omitempty"`
	RunID          string `json:"run_id,omitempty"`
	Processed      int    `json:"processed"`
	QueueDepth     int    `json:"queue_depth"`
	Pending        int    `json:"pending"`
	WindowLength   int    `json:"window_length"`
	WindowCapacity int    `json:"window_capacity"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// StatusLine renders a status reply on one line. A reply without a state
// means no run is active.
func (r Response) StatusLine() string {
	if r.State == "" {
		return "idle"
	}
	return fmt.Sprintf("%s run_id=%s processed=%d queue_depth=%d pending=%d window=%d/%d",
		r.State, r.RunID, r.Processed, r.QueueDepth, r.Pending, r.WindowLength, r.WindowCapacity)
}

func errorResponse(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}
