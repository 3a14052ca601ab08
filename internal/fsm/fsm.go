package fsm

import "fmt"

type State string

type Event string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateRunning  State = "running"
	StateDraining State = "draining"
	StateStopped  State = "stopped"
	StateError    State = "error"
)

const (
	EventStart   Event = "start"
	EventReady   Event = "ready"
	EventStop    Event = "stop"
	EventDrained Event = "drained"
	EventFail    Event = "fail"
	EventReset   Event = "reset"
)

// Transition returns the lifecycle state reached from current on event.
func Transition(current State, event Event) (State, error) {
	if event == EventFail {
		return StateError, nil
	}

	switch current {
	case StateIdle:
		switch event {
		case EventStart:
			return StateStarting, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStarting:
		switch event {
		case EventReady:
			return StateRunning, nil
		case EventStop:
			return StateDraining, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateRunning:
		switch event {
		case EventStop:
			return StateDraining, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateDraining:
		switch event {
		case EventDrained:
			return StateStopped, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateStopped, StateError:
		switch event {
		case EventReset:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
