package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
)

// sink is the adapter.Callback handed to an engine. It carries the session id and the
// generation it was installed for; anything arriving for a released session or an
// older generation is dropped.
type sink struct {
	id  uuid.UUID
	gen uint64
}

var _ adapter.Callback = sink{}

func (k sink) post(name string, fn func(s *Session)) {
	s, ok := registry.lookup(k.id)
	if !ok {
		log.WithFields(log.Fields{"session": k.id.String(), "callback": name}).Debug("callback for released session dropped")
		return
	}

	s.queue.Execute(func() {
		if s.gen != k.gen || s.State() == Released {
			log.WithFields(log.Fields{
				"session":  s.ID(),
				"callback": name,
				"gen":      k.gen,
				"current":  s.gen,
			}).Debug("stale callback dropped")
			return
		}
		fn(s)
	})
}

func (k sink) OnPrepared() {
	k.post("prepared", (*Session).onPrepared)
}

func (k sink) OnCompletion() {
	k.post("completion", (*Session).onCompletion)
}

func (k sink) OnError(code int, message string) {
	k.post("error", func(s *Session) { s.fail(code, message) })
}

func (k sink) OnVideoSizeChanged(size media.Size) {
	k.post("video_size", func(s *Session) { s.onVideoSize(size) })
}

func (k sink) OnBufferingStart() {
	k.post("buffering_start", func(s *Session) { s.onBuffering(true) })
}

func (k sink) OnBufferingEnd() {
	k.post("buffering_end", func(s *Session) { s.onBuffering(false) })
}

func (k sink) OnBufferingUpdate(percent int) {
	k.post("buffering_update", func(s *Session) { s.onBufferingUpdate(percent) })
}

func (k sink) OnProgress(position, duration time.Duration) {
	k.post("progress", func(s *Session) { s.onProgress(position, duration) })
}

func (k sink) OnTrackInfoReady(typ media.TrackType, tracks []*media.Track) {
	k.post("track_info_ready", func(s *Session) { s.onTrackInfoReady(typ, tracks) })
}

func (k sink) OnTrackWillChange(typ media.TrackType, from, to *media.Track) {
	k.post("track_will_change", func(s *Session) { s.onTrackWillChange(typ, from, to) })
}

func (k sink) OnTrackChanged(typ media.TrackType, track *media.Track) {
	k.post("track_changed", func(s *Session) { s.onTrackChanged(typ, track) })
}

func (k sink) OnCacheHint(bytes int64) {
	k.post("cache_hint", func(s *Session) { s.onCacheHint(bytes) })
}

func (k sink) OnSeekComplete(success bool) {
	k.post("seek_complete", func(s *Session) { s.onSeekComplete(success) })
}

func (k sink) OnSourceUpdated(src *media.Source) {
	k.post("source_updated", func(s *Session) { s.onSourceUpdated(src) })
}
