package session

import (
	"fmt"
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/selector"
	"github.com/samber/mo"
)

// rebuild remembers what to restore once a non-smooth switch finished preparing.
type rebuild struct {
	types   [media.NumTrackTypes]bool
	from    [media.NumTrackTypes]*media.Track
	resume  time.Duration
	restore State
}

// selectInitialTracks fills the selected slot of every type the source has candidates for.
// A selection made earlier survives if the source still offers it.
func (s *Session) selectInitialTracks() error {
	for _, typ := range media.TrackTypes {
		candidates := s.src.Tracks(typ)
		if len(candidates) == 0 {
			continue
		}

		if prev := s.tracks[adapter.SlotSelected][typ]; prev != nil {
			if t, ok := s.src.Find(prev); ok {
				s.tracks[adapter.SlotSelected][typ] = t
				continue
			}
		}

		t, err := s.opts.Selector.SelectTrack(selector.Playback, typ, candidates, s.src)
		if err != nil {
			return err
		}
		if t == nil {
			return fmt.Errorf("%s %s: %w", s.src, typ, selector.ErrNoTrack)
		}
		s.tracks[adapter.SlotSelected][typ] = t
		log.WithFields(s.fields()).Debugf("selected %s", t)
	}

	if s.tracks[adapter.SlotSelected][media.TrackVideo] == nil && s.tracks[adapter.SlotSelected][media.TrackAudio] == nil {
		return fmt.Errorf("%s: %w", s.src, selector.ErrNoTrack)
	}
	return nil
}

func (s *Session) selectTrack(typ media.TrackType, track *media.Track) error {
	if s.src == nil {
		return s.illegal("select_track")
	}
	if !typ.Valid() || track == nil || track.Type != typ {
		return fmt.Errorf("select_track: %s is not a %s track", track, typ)
	}

	resolved, ok := s.src.Find(track)
	if !ok {
		return fmt.Errorf("select_track: %s not offered by %s", track, s.src)
	}

	selected := s.tracks[adapter.SlotSelected][typ]
	if selected.Equal(resolved) {
		return nil
	}

	current := s.tracks[adapter.SlotCurrent][typ]
	s.tracks[adapter.SlotSelected][typ] = resolved
	s.emit(event.ActionSelectTrack, event.TrackChange{Type: typ, From: current, To: resolved})

	if r, ok := s.rebuild.Get(); ok {
		return s.retarget(r, typ, resolved)
	}

	// Nothing loaded yet: applied on the next prepare, or once the running prepare completes.
	if !s.state.HasPosition() {
		return nil
	}

	if current.Equal(resolved) {
		if pending := s.tracks[adapter.SlotPending][typ]; pending != nil {
			log.WithFields(s.fields()).Debugf("pending %s cancelled, %s kept", pending, current)
			s.tracks[adapter.SlotPending][typ] = nil
			s.abandoned[typ] = pending
		}
		return nil
	}

	if s.engine.SupportsSmoothSwitch(typ) {
		return s.switchSmooth(typ, resolved)
	}
	return s.switchRebuild()
}

func (s *Session) switchSmooth(typ media.TrackType, track *media.Track) error {
	if prev := s.tracks[adapter.SlotPending][typ]; prev != nil {
		log.WithFields(s.fields()).Debugf("pending %s replaced by %s", prev, track)
	}
	s.tracks[adapter.SlotPending][typ] = track
	s.abandoned[typ] = nil

	if err := s.engine.SwitchTrack(typ, track); err != nil {
		s.tracks[adapter.SlotPending][typ] = nil
		s.tracks[adapter.SlotSelected][typ] = s.tracks[adapter.SlotCurrent][typ]
		return fmt.Errorf("switch %s track: %w", typ, err)
	}
	return nil
}

// switchRebuild stops the engine and prepares it again on the selected tracks,
// resuming where playback was. Every type whose selection differs switches at once.
func (s *Session) switchRebuild() error {
	r := rebuild{
		resume:  s.currentPosition(),
		restore: s.state,
	}
	if s.state == Completed {
		r.resume, r.restore = 0, Prepared
	}

	for _, typ := range media.TrackTypes {
		from, to := s.tracks[adapter.SlotCurrent][typ], s.tracks[adapter.SlotSelected][typ]
		if to == nil || to.Equal(from) {
			continue
		}
		r.types[typ] = true
		r.from[typ] = from
		s.tracks[adapter.SlotPending][typ] = to
		s.emit(event.InfoTrackWillChange, event.TrackChange{Type: typ, From: from, To: to})
	}
	s.rebuild = mo.Some(r)

	if err := s.engine.Stop(); err != nil {
		log.WithFields(s.fields()).Warnf("engine stop for switch: %s", err)
	}
	return s.prepareEngine(r.resume)
}

// retarget replaces the target of a rebuild still preparing. The engine is
// prepared again on the new selection, keeping the position and state to restore.
func (s *Session) retarget(r rebuild, typ media.TrackType, track *media.Track) error {
	from := s.tracks[adapter.SlotCurrent][typ]
	if prev := s.tracks[adapter.SlotPending][typ]; prev != nil {
		log.WithFields(s.fields()).Debugf("rebuild target %s replaced by %s", prev, track)
	}

	if track.Equal(from) {
		r.types[typ] = false
		r.from[typ] = nil
		s.tracks[adapter.SlotPending][typ] = nil
	} else {
		if !r.types[typ] {
			r.types[typ] = true
			r.from[typ] = from
		}
		s.tracks[adapter.SlotPending][typ] = track
		s.emit(event.InfoTrackWillChange, event.TrackChange{Type: typ, From: from, To: track})
	}
	s.rebuild = mo.Some(r)

	if err := s.engine.Stop(); err != nil {
		log.WithFields(s.fields()).Warnf("engine stop for retarget: %s", err)
	}
	return s.prepareEngine(r.resume)
}

// switchLate applies selections made while the engine was preparing.
func (s *Session) switchLate() error {
	for _, typ := range media.TrackTypes {
		selected := s.tracks[adapter.SlotSelected][typ]
		if selected == nil || selected.Equal(s.tracks[adapter.SlotCurrent][typ]) {
			continue
		}
		if s.engine.SupportsSmoothSwitch(typ) {
			if err := s.switchSmooth(typ, selected); err != nil {
				return err
			}
			continue
		}
		return s.switchRebuild()
	}
	return nil
}

// finishRebuild runs once the engine prepared the switched variant.
func (s *Session) finishRebuild(r rebuild) error {
	s.rebuild = mo.None[rebuild]()

	for _, typ := range media.TrackTypes {
		if !r.types[typ] {
			continue
		}
		now := s.tracks[adapter.SlotCurrent][typ]
		s.tracks[adapter.SlotPending][typ] = nil
		s.emit(event.InfoTrackChanged, event.TrackChange{Type: typ, From: r.from[typ], To: now})
	}

	switch r.restore {
	case Started:
		return s.start()
	case Paused:
		return s.pause()
	default:
		return nil
	}
}

func (s *Session) cancelSwitches() {
	for _, typ := range media.TrackTypes {
		s.tracks[adapter.SlotPending][typ] = nil
	}
	s.abandoned = [media.NumTrackTypes]*media.Track{}
	s.rebuild = mo.None[rebuild]()
}

func (s *Session) onTrackChanged(typ media.TrackType, track *media.Track) {
	if !typ.Valid() {
		return
	}

	// The engine landed on a switch the caller cancelled: move it back.
	if abandoned := s.abandoned[typ]; abandoned != nil && abandoned.Equal(track) {
		s.abandoned[typ] = nil
		want := s.tracks[adapter.SlotSelected][typ]
		log.WithFields(s.fields()).Debugf("confirmation of cancelled %s, switching back to %s", track, want)
		if want != nil && s.state.HasPosition() {
			if err := s.switchSmooth(typ, want); err != nil {
				log.WithFields(s.fields()).Warnf("switch back: %s", err)
			}
		}
		return
	}

	pending := s.tracks[adapter.SlotPending][typ]
	if pending != nil && !pending.Equal(track) {
		log.WithFields(s.fields()).Debugf("confirmation of superseded %s dropped, waiting for %s", track, pending)
		return
	}

	from := s.tracks[adapter.SlotCurrent][typ]
	if from.Equal(track) {
		s.tracks[adapter.SlotPending][typ] = nil
		return
	}

	if pending != nil {
		track = pending
	}
	s.tracks[adapter.SlotPending][typ] = nil
	s.tracks[adapter.SlotCurrent][typ] = track
	if pending == nil {
		// engine-initiated change, e.g. adaptive bitrate
		s.tracks[adapter.SlotSelected][typ] = track
	}
	s.emit(event.InfoTrackChanged, event.TrackChange{Type: typ, From: from, To: track})
}

func (s *Session) onTrackWillChange(typ media.TrackType, from, to *media.Track) {
	s.emit(event.InfoTrackWillChange, event.TrackChange{Type: typ, From: from, To: to})
}

func (s *Session) onTrackInfoReady(typ media.TrackType, tracks []*media.Track) {
	s.emit(event.InfoTrackInfoReady, event.TrackInfo{Type: typ, Tracks: tracks})
}
