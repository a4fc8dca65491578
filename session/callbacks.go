package session

import (
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
)

// Handlers for engine callbacks. They run on the owner goroutine, never return
// errors and only mutate state and emit events.

func (s *Session) onPrepared() {
	if s.state != Preparing {
		log.WithFields(s.fields()).Debug("prepared outside preparing dropped")
		return
	}

	if s.deferred {
		log.WithFields(s.fields()).Debug("prepared without source update, engine picks tracks")
		s.deferred = false
	}

	for _, typ := range media.TrackTypes {
		current := s.engine.Track(adapter.SlotCurrent, typ)
		if current == nil {
			current = s.tracks[adapter.SlotSelected][typ]
		} else if t, ok := s.src.Find(current); ok {
			current = t
		}
		s.tracks[adapter.SlotCurrent][typ] = current
		if s.tracks[adapter.SlotSelected][typ] == nil {
			s.tracks[adapter.SlotSelected][typ] = current
		}
	}

	if d := s.engine.Duration(); d > 0 {
		s.src.SetDuration(d)
	}

	s.setState(Prepared, nil)

	var err error
	switch r, ok := s.rebuild.Get(); {
	case ok:
		err = s.finishRebuild(r)
	case s.opts.StartWhenPrepared:
		err = s.start()
	}
	if err != nil {
		log.WithFields(s.fields()).Warnf("after prepared: %s", err)
		return
	}

	if s.state.HasPosition() {
		if err := s.switchLate(); err != nil {
			log.WithFields(s.fields()).Warnf("late switch: %s", err)
		}
	}
}

func (s *Session) onCompletion() {
	if !s.state.in(Prepared, Started, Paused) {
		log.WithFields(s.fields()).Debug("completion outside playback dropped")
		return
	}

	if err := s.opts.Progress.Remove(s.src.UniqueID()); err != nil {
		log.WithFields(s.fields()).Warnf("remove progress: %s", err)
	}

	s.buffering = false
	s.rewind = true
	s.position = s.duration()
	s.setState(Completed, nil)

	if s.opts.Looping {
		if err := s.start(); err != nil {
			log.WithFields(s.fields()).Warnf("loop: %s", err)
		}
	}
}

func (s *Session) onSourceUpdated(src *media.Source) {
	if src == nil {
		return
	}
	switch {
	case s.src == nil:
		s.src = src
	case s.src != src:
		if s.src.UniqueID() != src.UniqueID() {
			log.WithFields(s.fields()).Warnf("engine reported foreign source %s, tracks copied into %s", src, s.src)
		}
		s.src.SetTracks(src.AllTracks())
		if d := src.Duration(); d > 0 {
			s.src.SetDuration(d)
		}
		src = s.src
	}
	s.emit(event.InfoSourceUpdated, src)

	if !s.deferred || s.state != Preparing || !src.HasTracks() {
		return
	}
	s.deferred = false

	if err := s.selectInitialTracks(); err != nil {
		s.fail(CodeTrackSelect, err.Error())
		return
	}
	for _, typ := range media.TrackTypes {
		if t := s.tracks[adapter.SlotSelected][typ]; t != nil {
			s.engine.SelectTrack(typ, t)
		}
	}
}

func (s *Session) onVideoSize(size media.Size) {
	if size == s.size {
		return
	}
	s.size = size
	s.emit(event.InfoVideoSize, size)
}

func (s *Session) onBuffering(buffering bool) {
	if buffering == s.buffering {
		return
	}
	s.buffering = buffering
	if buffering {
		s.emit(event.InfoBufferingStart, nil)
	} else {
		s.emit(event.InfoBufferingEnd, nil)
	}
}

func (s *Session) onBufferingUpdate(percent int) {
	s.emit(event.InfoBufferingUpdate, event.Buffering{Percent: percent})
}

func (s *Session) onProgress(position, duration time.Duration) {
	s.position = position
	if duration > 0 && s.src != nil && s.src.Duration() != duration {
		s.src.SetDuration(duration)
	}
	s.emit(event.InfoProgress, event.Progress{Position: position, Duration: duration})
}

func (s *Session) onCacheHint(bytes int64) {
	s.emit(event.InfoCacheHint, event.CacheHint{Bytes: bytes})
}

func (s *Session) onSeekComplete(success bool) {
	if !success {
		log.WithFields(s.fields()).Warn("seek failed")
	}
	s.emit(event.InfoSeekComplete, event.SeekResult{Success: success})
}
