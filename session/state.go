package session

import "github.com/reelkit/reel/event"

// State of a session.
type State int

const (
	Idle State = iota
	Preparing
	Prepared
	Started
	Paused
	Completed
	Stopped
	Error
	Released
)

var stateNames = [...]string{
	Idle:      "idle",
	Preparing: "preparing",
	Prepared:  "prepared",
	Started:   "started",
	Paused:    "paused",
	Completed: "completed",
	Stopped:   "stopped",
	Error:     "error",
	Released:  "released",
}

var stateCodes = [...]event.Code{
	Idle:      event.StateIdle,
	Preparing: event.StatePreparing,
	Prepared:  event.StatePrepared,
	Started:   event.StateStarted,
	Paused:    event.StatePaused,
	Completed: event.StateCompleted,
	Stopped:   event.StateStopped,
	Error:     event.StateError,
	Released:  event.StateReleased,
}

func (s State) String() string {
	if s < Idle || s > Released {
		return "unknown"
	}
	return stateNames[s]
}

// Code is the State event raised on entering s.
func (s State) Code() event.Code {
	return stateCodes[s]
}

// HasPosition reports whether the engine holds a loaded item with a meaningful position.
func (s State) HasPosition() bool {
	switch s {
	case Prepared, Started, Paused, Completed:
		return true
	default:
		return false
	}
}

// in reports whether s is one of states.
func (s State) in(states ...State) bool {
	for _, st := range states {
		if s == st {
			return true
		}
	}
	return false
}
