package adapter

import (
	"time"

	"github.com/reelkit/reel/media"
)

// Engine error codes reported through Callback.OnError.
const (
	CodeUnknown      = -1
	CodeEngineStart  = 1001
	CodeEngineExited = 1002
	CodeIPC          = 1003
	CodeSource       = 1004
)

// Callback is the single sink of everything an engine observes asynchronously.
// Implementations must tolerate calls from any goroutine.
type Callback interface {
	OnPrepared()
	OnCompletion()
	OnError(code int, message string)
	OnVideoSizeChanged(size media.Size)
	OnBufferingStart()
	OnBufferingEnd()
	OnBufferingUpdate(percent int)
	OnProgress(position, duration time.Duration)
	OnTrackInfoReady(typ media.TrackType, tracks []*media.Track)
	OnTrackWillChange(typ media.TrackType, from, to *media.Track)
	OnTrackChanged(typ media.TrackType, track *media.Track)
	OnCacheHint(bytes int64)
	OnSeekComplete(success bool)
	OnSourceUpdated(src *media.Source)
}

// NopCallback discards everything. Engines start with it so they never need nil checks.
type NopCallback struct{}

func (NopCallback) OnPrepared()                                                   {}
func (NopCallback) OnCompletion()                                                 {}
func (NopCallback) OnError(int, string)                                           {}
func (NopCallback) OnVideoSizeChanged(media.Size)                                 {}
func (NopCallback) OnBufferingStart()                                             {}
func (NopCallback) OnBufferingEnd()                                               {}
func (NopCallback) OnBufferingUpdate(int)                                         {}
func (NopCallback) OnProgress(time.Duration, time.Duration)                       {}
func (NopCallback) OnTrackInfoReady(media.TrackType, []*media.Track)              {}
func (NopCallback) OnTrackWillChange(media.TrackType, *media.Track, *media.Track) {}
func (NopCallback) OnTrackChanged(media.TrackType, *media.Track)                  {}
func (NopCallback) OnCacheHint(int64)                                             {}
func (NopCallback) OnSeekComplete(bool)                                           {}
func (NopCallback) OnSourceUpdated(*media.Source)                                 {}
