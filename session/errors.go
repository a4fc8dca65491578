package session

import (
	"errors"
	"fmt"
)

// Error codes raised by the session itself. Engine codes live in package adapter.
const (
	CodeTrackSelect = 2001
	CodeAdapter     = 2002
)

var (
	// ErrIllegalState is wrapped by every error returned for a call made in the wrong state.
	ErrIllegalState = errors.New("illegal state")
	// ErrReleased matches calls made after Release.
	ErrReleased = errors.New("session released")
)

// StateError reports an operation attempted in a state that does not allow it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s in state %s", ErrIllegalState, e.Op, e.State)
}

func (e *StateError) Is(target error) bool {
	return target == ErrIllegalState || (target == ErrReleased && e.State == Released)
}

// PlaybackError is the failure that moved a session to Error.
type PlaybackError struct {
	Code    int
	Message string
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("playback error %d: %s", e.Code, e.Message)
}
