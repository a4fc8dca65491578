// Package adapter defines the contract between a playback session and a concrete decoding engine.
// Engines implement Adapter; sessions consume it and receive everything asynchronous through a Callback.
package adapter

import (
	"time"

	"github.com/reelkit/reel/media"
)

// Slot names one of the three per-type track bookkeeping slots.
type Slot int

const (
	// SlotCurrent is the track the engine confirmed it is playing.
	SlotCurrent Slot = iota
	// SlotPending is a requested track the engine has not confirmed yet.
	SlotPending
	// SlotSelected is the track last requested by the caller.
	SlotSelected
)

func (s Slot) String() string {
	switch s {
	case SlotCurrent:
		return "current"
	case SlotPending:
		return "pending"
	case SlotSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Display is a render target supplied by the surface layer.
type Display interface {
	// Handle is the platform window id the engine should render into.
	Handle() int64

	// Size is the current drawable size.
	Size() media.Size
}

// Factory is the only place a concrete engine is chosen.
type Factory func(src *media.Source) (Adapter, error)

// Adapter wraps a decoding engine. Start, Pause, Stop and Release are synchronous and
// return an error on illegal engine state; Prepare and SeekTo complete through the Callback.
type Adapter interface {
	// SetCallback installs the sink every asynchronous observation goes through.
	// A new sink replaces the previous one; the engine must stop using the old one.
	SetCallback(cb Callback)

	// SetDisplay points rendering at d. A nil display detaches rendering.
	SetDisplay(d Display)

	// SetSource binds the item the next Prepare plays.
	SetSource(src *media.Source)

	// Source returns the bound item, possibly enriched by the engine.
	Source() *media.Source

	// SetStartPosition sets where the next Prepare begins.
	SetStartPosition(pos time.Duration)

	// SelectTrack chooses the variant the next Prepare uses for typ.
	SelectTrack(typ media.TrackType, track *media.Track)

	// Track reports the engine's view of a bookkeeping slot.
	Track(slot Slot, typ media.TrackType) *media.Track

	// SupportsSmoothSwitch reports whether SwitchTrack can change typ without rebuilding the pipeline.
	SupportsSmoothSwitch(typ media.TrackType) bool

	// SwitchTrack requests an in-place switch; confirmation arrives as OnTrackChanged.
	SwitchTrack(typ media.TrackType, track *media.Track) error

	// Prepare starts loading asynchronously; OnPrepared or OnError follows.
	// OnSourceUpdated, if the engine enriches the source, fires before OnPrepared.
	Prepare() error

	Start() error
	Pause() error
	Stop() error

	// Release tears the engine down for good.
	Release() error

	// SeekTo starts an asynchronous seek; OnSeekComplete follows.
	SeekTo(pos time.Duration) error

	// Seekable reports whether the loaded item supports seeking.
	Seekable() bool

	Duration() time.Duration
	Position() time.Duration
	BufferedPercentage() int
	VideoSize() media.Size

	SetVolume(volume float64)
	Volume() float64
	SetMuted(muted bool)
	Muted() bool
	SetSpeed(speed float64)
	Speed() float64
	SetPitch(pitch float64)
	Pitch() float64
}
