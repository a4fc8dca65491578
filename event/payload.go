package event

import (
	"fmt"
	"time"

	"github.com/reelkit/reel/media"
)

// Payloads carried by Info and Action events.

type Progress struct {
	Position time.Duration
	Duration time.Duration
}

func (p Progress) String() string {
	return fmt.Sprintf("%s/%s", p.Position, p.Duration)
}

// TrackChange accompanies ActionSelectTrack, InfoTrackWillChange and InfoTrackChanged.
// From is nil when nothing was playing for Type.
type TrackChange struct {
	Type media.TrackType
	From *media.Track
	To   *media.Track
}

func (t TrackChange) String() string {
	return fmt.Sprintf("%s %s -> %s", t.Type, t.From, t.To)
}

type TrackInfo struct {
	Type   media.TrackType
	Tracks []*media.Track
}

type Seek struct {
	Target time.Duration
}

type SeekResult struct {
	Success bool
}

type Buffering struct {
	Percent int
}

type CacheHint struct {
	Bytes int64
}
