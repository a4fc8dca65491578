// Package event carries session events to listeners: Action events record requested
// intent, State events record authoritative transitions, Info events carry telemetry.
package event

import (
	"fmt"
	"time"
)

// Category groups event codes.
type Category int

const (
	Action Category = iota
	State
	Info
)

func (c Category) String() string {
	switch c {
	case Action:
		return "action"
	case State:
		return "state"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Code identifies what happened. Its category is fixed by the code itself.
type Code string

const (
	ActionPrepare     Code = "action.prepare"
	ActionStart       Code = "action.start"
	ActionPause       Code = "action.pause"
	ActionSeek        Code = "action.seek"
	ActionStop        Code = "action.stop"
	ActionReset       Code = "action.reset"
	ActionRelease     Code = "action.release"
	ActionSelectTrack Code = "action.select_track"
)

const (
	StateIdle      Code = "state.idle"
	StatePreparing Code = "state.preparing"
	StatePrepared  Code = "state.prepared"
	StateStarted   Code = "state.started"
	StatePaused    Code = "state.paused"
	StateCompleted Code = "state.completed"
	StateStopped   Code = "state.stopped"
	StateError     Code = "state.error"
	StateReleased  Code = "state.released"
)

const (
	InfoBufferingStart  Code = "info.buffering_start"
	InfoBufferingEnd    Code = "info.buffering_end"
	InfoBufferingUpdate Code = "info.buffering_update"
	InfoProgress        Code = "info.progress"
	InfoVideoSize       Code = "info.video_size"
	InfoTrackInfoReady  Code = "info.track_info_ready"
	InfoTrackWillChange Code = "info.track_will_change"
	InfoTrackChanged    Code = "info.track_changed"
	InfoCacheHint       Code = "info.cache_hint"
	InfoSeekComplete    Code = "info.seek_complete"
	InfoSourceUpdated   Code = "info.source_updated"
	InfoDisplayChanged  Code = "info.display_changed"
)

var categories = map[Code]Category{
	ActionPrepare: Action, ActionStart: Action, ActionPause: Action, ActionSeek: Action,
	ActionStop: Action, ActionReset: Action, ActionRelease: Action, ActionSelectTrack: Action,

	StateIdle: State, StatePreparing: State, StatePrepared: State, StateStarted: State,
	StatePaused: State, StateCompleted: State, StateStopped: State, StateError: State,
	StateReleased: State,

	InfoBufferingStart: Info, InfoBufferingEnd: Info, InfoBufferingUpdate: Info,
	InfoProgress: Info, InfoVideoSize: Info, InfoTrackInfoReady: Info,
	InfoTrackWillChange: Info, InfoTrackChanged: Info, InfoCacheHint: Info,
	InfoSeekComplete: Info, InfoSourceUpdated: Info, InfoDisplayChanged: Info,
}

// Category of the code; unknown codes are Info.
func (c Code) Category() Category {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return Info
}

// Event is one notification raised by a session. Payload is defined by the raiser
// and depends on Code.
type Event struct {
	Seq     uint64
	Session string
	Code    Code
	Payload any
	At      time.Time
}

// Category is shorthand for e.Code.Category().
func (e Event) Category() Category {
	return e.Code.Category()
}

func (e Event) String() string {
	if e.Payload == nil {
		return fmt.Sprintf("#%d %s", e.Seq, e.Code)
	}
	return fmt.Sprintf("#%d %s %v", e.Seq, e.Code, e.Payload)
}
