// Package session implements the playback state machine. A Session owns one adapter,
// serializes every mutation on its own goroutine and reports what happens as events.
//
// Public methods may be called from any goroutine, including event listeners, and block
// until the session processed them. They must not be called from a selector.Selector
// or a progress.Store invoked by the same session.
package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/serial"
	"github.com/samber/mo"
)

// Session is one playback state machine bound to one adapter.
type Session struct {
	id         uuid.UUID
	engine     adapter.Adapter
	queue      *serial.Queue
	dispatcher *event.Dispatcher
	released   atomic.Bool

	stateMu sync.RWMutex
	state   State

	// owned by queue
	opts      Options
	gen       uint64
	src       *media.Source
	display   adapter.Display
	tracks    [3][media.NumTrackTypes]*media.Track
	abandoned [media.NumTrackTypes]*media.Track
	deferred  bool
	rebuild   mo.Option[rebuild]
	rewind    bool
	buffering bool
	position  time.Duration
	size      media.Size
	lastErr   *PlaybackError
	muted     bool
	pitch     float64
}

// New wraps engine in an Idle session.
func New(engine adapter.Adapter, opts Options) (*Session, error) {
	if engine == nil {
		return nil, errors.New("session: nil adapter")
	}
	opts.setDefaults()

	id := uuid.New()
	s := &Session{
		id:         id,
		engine:     engine,
		queue:      serial.NewQueue(),
		dispatcher: event.NewDispatcher(id.String()),
		opts:       opts,
		pitch:      1,
	}

	registry.add(s)
	engine.SetCallback(sink{id: id, gen: s.gen})
	engine.SetVolume(opts.Volume)
	engine.SetSpeed(opts.Speed)

	log.WithFields(log.Fields{"session": s.ID()}).Debug("session created")
	return s, nil
}

// ID is unique per session.
func (s *Session) ID() string {
	return s.id.String()
}

// State is safe to call from any goroutine, including from inside callbacks.
func (s *Session) State() State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Subscribe registers l for every event of this session. Listeners are dropped after Release.
func (s *Session) Subscribe(l event.Listener) (unsubscribe func()) {
	return s.dispatcher.Subscribe(l)
}

// Prepare binds src and starts loading it. Legal from Idle and Stopped.
func (s *Session) Prepare(src *media.Source) error {
	return s.do("prepare", func() error { return s.prepare(src) })
}

// Start is legal from Prepared, Paused and Completed; Started is a no-op.
func (s *Session) Start() error {
	return s.do("start", s.start)
}

// Pause checkpoints the position. Legal from Prepared, Started and Completed; Paused is a no-op.
func (s *Session) Pause() error {
	return s.do("pause", s.pause)
}

// SeekTo clamps pos into [0, duration]. Legal while an item is loaded; ignored if not seekable.
func (s *Session) SeekTo(pos time.Duration) error {
	return s.do("seek", func() error { return s.seekTo(pos) })
}

// Stop halts playback but keeps the source and display. Stopped is a no-op.
func (s *Session) Stop() error {
	return s.do("stop", s.stop)
}

// Reset clears everything bound to the session and returns to Idle. The adapter survives.
func (s *Session) Reset() error {
	return s.do("reset", s.reset)
}

// Release tears the session down for good. Calling it again, from anywhere, is
// logged and otherwise ignored.
func (s *Session) Release() error {
	if !s.released.CompareAndSwap(false, true) {
		log.WithFields(log.Fields{"session": s.ID()}).Error("release called on a released session")
		return nil
	}

	s.queue.Execute(s.release)
	s.queue.Close()
	<-s.queue.Done()
	return nil
}

// SelectTrack requests track for typ. Legal once a source is bound.
func (s *Session) SelectTrack(typ media.TrackType, track *media.Track) error {
	return s.do("select_track", func() error { return s.selectTrack(typ, track) })
}

// SetDisplay points rendering at d; nil detaches.
func (s *Session) SetDisplay(d adapter.Display) error {
	return s.do("set_display", func() error {
		s.display = d
		s.engine.SetDisplay(d)
		s.emit(event.InfoDisplayChanged, d)
		return nil
	})
}

func (s *Session) SetVolume(volume float64) error {
	return s.do("set_volume", func() error {
		s.opts.Volume = clampVolume(volume)
		s.engine.SetVolume(s.opts.Volume)
		return nil
	})
}

func (s *Session) SetMuted(muted bool) error {
	return s.do("set_muted", func() error {
		s.muted = muted
		s.engine.SetMuted(muted)
		return nil
	})
}

func (s *Session) SetSpeed(speed float64) error {
	return s.do("set_speed", func() error {
		s.opts.Speed = clampRate(speed)
		s.engine.SetSpeed(s.opts.Speed)
		return nil
	})
}

func (s *Session) SetPitch(pitch float64) error {
	return s.do("set_pitch", func() error {
		s.pitch = clampRate(pitch)
		s.engine.SetPitch(s.pitch)
		return nil
	})
}

func (s *Session) SetLooping(looping bool) error {
	return s.do("set_looping", func() error {
		s.opts.Looping = looping
		return nil
	})
}

func (s *Session) SetStartWhenPrepared(start bool) error {
	return s.do("set_start_when_prepared", func() error {
		s.opts.StartWhenPrepared = start
		return nil
	})
}

// Getters. A released session reports zero values.

func (s *Session) Source() (src *media.Source) {
	s.read(func() { src = s.src })
	return
}

func (s *Session) Position() (pos time.Duration) {
	s.read(func() { pos = s.currentPosition() })
	return
}

func (s *Session) Duration() (d time.Duration) {
	s.read(func() { d = s.duration() })
	return
}

func (s *Session) BufferedPercentage() (pct int) {
	s.read(func() { pct = s.engine.BufferedPercentage() })
	return
}

func (s *Session) VideoSize() (size media.Size) {
	s.read(func() { size = s.size })
	return
}

func (s *Session) Buffering() (buffering bool) {
	s.read(func() { buffering = s.buffering })
	return
}

func (s *Session) Volume() (volume float64) {
	s.read(func() { volume = s.opts.Volume })
	return
}

func (s *Session) Muted() (muted bool) {
	s.read(func() { muted = s.muted })
	return
}

func (s *Session) Speed() (speed float64) {
	s.read(func() { speed = s.opts.Speed })
	return
}

func (s *Session) Looping() (looping bool) {
	s.read(func() { looping = s.opts.Looping })
	return
}

// Track returns the session's bookkeeping for slot and typ.
func (s *Session) Track(slot adapter.Slot, typ media.TrackType) (track *media.Track) {
	if slot < adapter.SlotCurrent || slot > adapter.SlotSelected || !typ.Valid() {
		return nil
	}
	s.read(func() { track = s.tracks[slot][typ] })
	return
}

// LastError returns the failure that moved the session to Error, or nil.
func (s *Session) LastError() (err *PlaybackError) {
	s.read(func() { err = s.lastErr })
	return
}

func (s *Session) String() string {
	return s.ID() + " (" + s.State().String() + ")"
}

// do runs fn on the owner goroutine and waits for its result.
func (s *Session) do(op string, fn func() error) error {
	var err error
	ran := s.queue.Call(func() {
		if s.state == Released {
			err = &StateError{Op: op, State: Released}
			return
		}
		err = fn()
	})
	if !ran {
		return &StateError{Op: op, State: Released}
	}
	return err
}

func (s *Session) read(fn func()) {
	s.queue.Call(fn)
}
