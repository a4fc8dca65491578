// Package adaptertest provides a scriptable in-memory adapter. Tests drive it by firing
// engine callbacks explicitly, from whatever goroutine they like.
package adaptertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/media"
	"github.com/samber/lo"
)

// Fake implements adapter.Adapter and records every call by name.
type Fake struct {
	mu       sync.Mutex
	cb       adapter.Callback
	display  adapter.Display
	src      *media.Source
	startPos time.Duration
	slots    [3][media.NumTrackTypes]*media.Track
	smooth   [media.NumTrackTypes]bool
	seekable bool
	duration time.Duration
	position time.Duration
	buffered int
	size     media.Size
	volume   float64
	muted    bool
	speed    float64
	pitch    float64
	released bool
	calls    []string
	failures map[string]error
}

var _ adapter.Adapter = (*Fake)(nil)

// New returns a seekable fake with a one-minute duration.
func New() *Fake {
	return &Fake{
		cb:       adapter.NopCallback{},
		seekable: true,
		duration: time.Minute,
		volume:   1,
		speed:    1,
		pitch:    1,
		failures: make(map[string]error),
	}
}

func (f *Fake) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if err, ok := f.failures[name]; ok {
		delete(f.failures, name)
		return err
	}
	if f.released && name != "release" {
		return fmt.Errorf("fake: %s after release", name)
	}
	return nil
}

// Calls returns recorded call names in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Called counts calls named name.
func (f *Fake) Called(name string) int {
	return lo.Count(f.Calls(), name)
}

// FailNext makes the next call named op return err.
func (f *Fake) FailNext(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

func (f *Fake) SetSmooth(typ media.TrackType, smooth bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.smooth[typ] = smooth
}

func (f *Fake) SetSeekable(seekable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seekable = seekable
}

func (f *Fake) SetDuration(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.duration = d
}

func (f *Fake) SetPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = pos
}

// Callback returns the sink currently installed.
func (f *Fake) Callback() adapter.Callback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

// StartPosition returns what SetStartPosition last received.
func (f *Fake) StartPosition() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startPos
}

// CurrentDisplay returns what SetDisplay last received.
func (f *Fake) CurrentDisplay() adapter.Display {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.display
}

// Released reports whether Release was called.
func (f *Fake) Released() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

// Engine-side events.

// Prepared promotes selected tracks to current and reports prepared.
func (f *Fake) Prepared() {
	f.mu.Lock()
	for _, typ := range media.TrackTypes {
		f.slots[adapter.SlotCurrent][typ] = f.slots[adapter.SlotSelected][typ]
	}
	f.position = f.startPos
	cb := f.cb
	f.mu.Unlock()
	cb.OnPrepared()
}

func (f *Fake) Complete() {
	f.mu.Lock()
	f.position = f.duration
	cb := f.cb
	f.mu.Unlock()
	cb.OnCompletion()
}

func (f *Fake) Fail(code int, message string) {
	f.Callback().OnError(code, message)
}

func (f *Fake) BufferingStart() { f.Callback().OnBufferingStart() }
func (f *Fake) BufferingEnd()   { f.Callback().OnBufferingEnd() }

func (f *Fake) Progress(pos time.Duration) {
	f.mu.Lock()
	f.position = pos
	cb, d := f.cb, f.duration
	f.mu.Unlock()
	cb.OnProgress(pos, d)
}

func (f *Fake) SeekDone() { f.Callback().OnSeekComplete(true) }

func (f *Fake) ResizeVideo(width, height int) {
	f.mu.Lock()
	f.size = media.Size{Width: width, Height: height}
	cb := f.cb
	f.mu.Unlock()
	cb.OnVideoSizeChanged(media.Size{Width: width, Height: height})
}

// ConfirmSwitch reports that the engine now plays track for typ.
func (f *Fake) ConfirmSwitch(typ media.TrackType, track *media.Track) {
	f.mu.Lock()
	f.slots[adapter.SlotCurrent][typ] = track
	if f.slots[adapter.SlotPending][typ].Equal(track) {
		f.slots[adapter.SlotPending][typ] = nil
	}
	cb := f.cb
	f.mu.Unlock()
	cb.OnTrackChanged(typ, track)
}

// UpdateSource replaces the bound source's tracks and reports the enrichment.
func (f *Fake) UpdateSource(tracks []*media.Track) {
	f.mu.Lock()
	src, cb := f.src, f.cb
	f.mu.Unlock()
	src.SetTracks(tracks)
	cb.OnSourceUpdated(src)
}

// ReportSource hands src to the callback without binding it.
func (f *Fake) ReportSource(src *media.Source) {
	f.Callback().OnSourceUpdated(src)
}

// adapter.Adapter

func (f *Fake) SetCallback(cb adapter.Callback) {
	_ = f.record("set_callback")
	if cb == nil {
		cb = adapter.NopCallback{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cb = cb
}

func (f *Fake) SetDisplay(d adapter.Display) {
	_ = f.record("set_display")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.display = d
}

func (f *Fake) SetSource(src *media.Source) {
	_ = f.record("set_source")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.src = src
}

func (f *Fake) Source() *media.Source {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.src
}

func (f *Fake) SetStartPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startPos = pos
}

func (f *Fake) SelectTrack(typ media.TrackType, track *media.Track) {
	_ = f.record("select_track")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[adapter.SlotSelected][typ] = track
}

func (f *Fake) Track(slot adapter.Slot, typ media.TrackType) *media.Track {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[slot][typ]
}

func (f *Fake) SupportsSmoothSwitch(typ media.TrackType) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.smooth[typ]
}

func (f *Fake) SwitchTrack(typ media.TrackType, track *media.Track) error {
	if err := f.record("switch_track"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[adapter.SlotSelected][typ] = track
	f.slots[adapter.SlotPending][typ] = track
	return nil
}

func (f *Fake) Prepare() error { return f.record("prepare") }
func (f *Fake) Start() error   { return f.record("start") }
func (f *Fake) Pause() error   { return f.record("pause") }
func (f *Fake) Stop() error    { return f.record("stop") }

func (f *Fake) Release() error {
	err := f.record("release")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
	f.cb = adapter.NopCallback{}
	return err
}

func (f *Fake) SeekTo(pos time.Duration) error {
	if err := f.record("seek"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = pos
	return nil
}

func (f *Fake) Seekable() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seekable
}

func (f *Fake) Duration() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *Fake) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *Fake) BufferedPercentage() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buffered
}

func (f *Fake) VideoSize() media.Size {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.size
}

func (f *Fake) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

func (f *Fake) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = muted
}

func (f *Fake) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}

func (f *Fake) SetSpeed(speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speed = speed
}

func (f *Fake) Speed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.speed
}

func (f *Fake) SetPitch(pitch float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pitch = pitch
}

func (f *Fake) Pitch() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pitch
}
