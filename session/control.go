package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/util"
	"github.com/samber/mo"
)

func (s *Session) fields() log.Fields {
	f := log.Fields{"session": s.ID(), "state": s.state.String()}
	if s.src != nil {
		f["source"] = s.src.String()
	}
	return f
}

func (s *Session) emit(code event.Code, payload any) {
	s.dispatcher.Emit(code, payload)
}

func (s *Session) setState(st State, payload any) {
	from := s.state
	s.stateMu.Lock()
	s.state = st
	s.stateMu.Unlock()

	log.WithFields(s.fields()).Debugf("%s -> %s", from, st)
	s.emit(st.Code(), payload)
}

func (s *Session) illegal(op string) error {
	err := &StateError{Op: op, State: s.state}
	log.WithFields(s.fields()).Warn(err.Error())
	return err
}

// supersede invalidates every callback issued for earlier engine requests.
func (s *Session) supersede() {
	s.gen++
	s.engine.SetCallback(sink{id: s.id, gen: s.gen})
}

func (s *Session) prepare(src *media.Source) error {
	if !s.state.in(Idle, Stopped) {
		return s.illegal("prepare")
	}
	if src == nil {
		return errors.New("prepare: nil source")
	}

	if s.src != nil && s.src.UniqueID() != src.UniqueID() {
		s.tracks = [3][media.NumTrackTypes]*media.Track{}
	}
	s.src = src
	s.cancelSwitches()
	s.rewind = false
	s.emit(event.ActionPrepare, src)

	s.engine.SetSource(src)

	s.deferred = !src.HasTracks()
	if !s.deferred {
		if err := s.selectInitialTracks(); err != nil {
			return s.fail(CodeTrackSelect, err.Error())
		}
	}

	resume, err := s.opts.Progress.Get(src.UniqueID())
	if err != nil {
		log.WithFields(s.fields()).Warnf("read resume point: %s", err)
	}

	return s.prepareEngine(resume.OrEmpty())
}

// prepareEngine hands the bound source to the engine under a fresh generation.
func (s *Session) prepareEngine(startAt time.Duration) error {
	for _, typ := range media.TrackTypes {
		if t := s.tracks[adapter.SlotSelected][typ]; t != nil {
			s.engine.SelectTrack(typ, t)
		}
	}
	s.engine.SetStartPosition(startAt)
	s.position = startAt
	s.buffering = false
	s.supersede()

	if s.state != Preparing {
		s.setState(Preparing, nil)
	}
	if err := s.engine.Prepare(); err != nil {
		return s.fail(CodeAdapter, fmt.Sprintf("prepare: %s", err))
	}
	return nil
}

func (s *Session) start() error {
	switch s.state {
	case Started:
		return nil
	case Prepared, Paused, Completed:
	default:
		return s.illegal("start")
	}

	s.emit(event.ActionStart, nil)
	if s.state == Completed && s.rewind {
		if err := s.engine.SeekTo(0); err != nil {
			log.WithFields(s.fields()).Warnf("rewind: %s", err)
		}
		s.position = 0
	}
	s.rewind = false

	if err := s.engine.Start(); err != nil {
		return s.fail(CodeAdapter, fmt.Sprintf("start: %s", err))
	}
	s.setState(Started, nil)
	return nil
}

func (s *Session) pause() error {
	switch s.state {
	case Paused:
		return nil
	case Prepared, Started, Completed:
	default:
		return s.illegal("pause")
	}

	s.emit(event.ActionPause, nil)
	if s.state != Completed {
		s.checkpoint()
	}

	if err := s.engine.Pause(); err != nil {
		return s.fail(CodeAdapter, fmt.Sprintf("pause: %s", err))
	}
	s.setState(Paused, nil)
	return nil
}

func (s *Session) seekTo(pos time.Duration) error {
	if !s.state.HasPosition() {
		return s.illegal("seek")
	}
	if !s.engine.Seekable() {
		log.WithFields(s.fields()).Debug("seek ignored, not seekable")
		return nil
	}

	var target time.Duration
	if d := s.duration(); d > 0 {
		target = util.Clamp(pos, 0, d)
	} else {
		target = max(pos, 0)
	}

	s.emit(event.ActionSeek, event.Seek{Target: target})
	if err := s.engine.SeekTo(target); err != nil {
		return s.fail(CodeAdapter, fmt.Sprintf("seek: %s", err))
	}
	s.position = target
	s.rewind = false
	return nil
}

func (s *Session) stop() error {
	switch s.state {
	case Stopped:
		return nil
	case Preparing, Prepared, Started, Paused, Completed:
	default:
		return s.illegal("stop")
	}

	s.emit(event.ActionStop, nil)
	if s.state.in(Prepared, Started, Paused) {
		s.checkpoint()
	}

	s.gen++
	if err := s.engine.Stop(); err != nil {
		log.WithFields(s.fields()).Warnf("engine stop: %s", err)
	}
	s.cancelSwitches()
	s.buffering = false
	s.setState(Stopped, nil)
	return nil
}

func (s *Session) reset() error {
	s.emit(event.ActionReset, nil)
	if s.state.in(Preparing, Prepared, Started, Paused, Completed) {
		if err := s.engine.Stop(); err != nil {
			log.WithFields(s.fields()).Warnf("engine stop: %s", err)
		}
	}

	s.gen++
	s.src = nil
	s.tracks = [3][media.NumTrackTypes]*media.Track{}
	s.deferred = false
	s.rebuild = mo.None[rebuild]()
	s.rewind = false
	s.buffering = false
	s.position = 0
	s.size = media.Size{}
	s.lastErr = nil

	s.setState(Idle, nil)
	return nil
}

func (s *Session) release() {
	s.emit(event.ActionRelease, nil)
	if s.state.in(Started, Paused) {
		s.checkpoint()
	}

	s.gen++
	registry.remove(s.id)
	if err := s.engine.Release(); err != nil {
		log.WithFields(s.fields()).Errorf("engine release: %s", err)
	}

	s.setState(Released, nil)
	s.dispatcher.Close()
}

// fail moves the session to Error once. It returns the recorded error.
func (s *Session) fail(code int, message string) error {
	if s.state == Error {
		log.WithFields(s.fields()).Debugf("error %d while in error dropped", code)
		return s.lastErr
	}

	if s.state.HasPosition() {
		s.checkpoint()
	}

	s.lastErr = &PlaybackError{Code: code, Message: message}
	s.buffering = false
	s.cancelSwitches()
	log.WithFields(s.fields()).Error(s.lastErr.Error())
	s.setState(Error, s.lastErr)
	return s.lastErr
}

// checkpoint records the current position as the source's resume point.
func (s *Session) checkpoint() {
	if s.src == nil {
		return
	}
	pos := s.currentPosition()
	if pos <= 0 {
		return
	}
	if err := s.opts.Progress.Record(s.src.UniqueID(), pos); err != nil {
		log.WithFields(s.fields()).Warnf("record progress: %s", err)
	}
}

func (s *Session) currentPosition() time.Duration {
	if s.state.in(Started, Paused) {
		if pos := s.engine.Position(); pos > 0 {
			s.position = pos
		}
	}
	return s.position
}

func (s *Session) duration() time.Duration {
	if d := s.engine.Duration(); d > 0 {
		return d
	}
	if s.src != nil {
		return s.src.Duration()
	}
	return 0
}

func clampVolume(volume float64) float64 {
	return util.Clamp(volume, 0, 1)
}

func clampRate(rate float64) float64 {
	return util.Clamp(rate, 0.25, 4)
}
