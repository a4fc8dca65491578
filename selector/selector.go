// Package selector decides which variant of a source a session plays. The Selector
// interface is the plug-in point for adaptive policies; Policy is the default.
package selector

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrNoTrack is returned when no candidate is playable.
var ErrNoTrack = errors.New("no playable track")

// Purpose tells a selector why a track is being picked.
type Purpose int

const (
	// Playback selects for what the user is about to watch.
	Playback Purpose = iota
	// Preload selects for prefetching, where a cheaper variant is usually enough.
	Preload
)

func (p Purpose) String() string {
	if p == Preload {
		return "preload"
	}
	return "playback"
}

// Selector picks one track among candidates of a single type.
type Selector interface {
	SelectTrack(purpose Purpose, typ media.TrackType, candidates []*media.Track, src *media.Source) (*media.Track, error)
}

// Func adapts a function to Selector.
type Func func(purpose Purpose, typ media.TrackType, candidates []*media.Track, src *media.Source) (*media.Track, error)

func (f Func) SelectTrack(purpose Purpose, typ media.TrackType, candidates []*media.Track, src *media.Source) (*media.Track, error) {
	return f(purpose, typ, candidates, src)
}

// Policy picks the best video variant not above a cap, and the highest bitrate audio.
type Policy struct {
	// MaxQuality caps Playback selection; zero means uncapped.
	MaxQuality media.Quality
	// PreloadMaxQuality caps Preload selection; zero falls back to MaxQuality.
	PreloadMaxQuality media.Quality
	// Preferred is matched fuzzily against track labels and wins when within the cap.
	Preferred string
}

// FromConfig builds a Policy from the selector.* configuration keys.
func FromConfig() (Policy, error) {
	maxQuality, err := media.ParseQuality(viper.GetString(key.SelectorMaxQuality))
	if err != nil {
		return Policy{}, fmt.Errorf("%s: %w", key.SelectorMaxQuality, err)
	}

	preloadMax, err := media.ParseQuality(viper.GetString(key.SelectorPreloadMaxQuality))
	if err != nil {
		return Policy{}, fmt.Errorf("%s: %w", key.SelectorPreloadMaxQuality, err)
	}

	return Policy{
		MaxQuality:        maxQuality,
		PreloadMaxQuality: preloadMax,
		Preferred:         viper.GetString(key.SelectorPreferred),
	}, nil
}

func (p Policy) SelectTrack(purpose Purpose, typ media.TrackType, candidates []*media.Track, src *media.Source) (*media.Track, error) {
	playable := lo.Filter(candidates, func(t *media.Track, _ int) bool {
		return t != nil && t.Type == typ && len(t.URLs()) > 0
	})
	if len(playable) == 0 {
		return nil, fmt.Errorf("%s %s: %w", src, typ, ErrNoTrack)
	}

	// highest first
	sort.SliceStable(playable, func(i, j int) bool {
		if c := playable[i].Quality.Compare(playable[j].Quality); c != 0 {
			return c > 0
		}
		return playable[i].Bitrate > playable[j].Bitrate
	})

	if typ == media.TrackAudio {
		return playable[0], nil
	}

	limit := p.MaxQuality
	if purpose == Preload && !p.PreloadMaxQuality.IsZero() {
		limit = p.PreloadMaxQuality
	}

	allowed := lo.Filter(playable, func(t *media.Track, _ int) bool { return t.Quality.AtMost(limit) })
	if len(allowed) == 0 {
		// everything exceeds the cap: take the cheapest
		chosen := playable[len(playable)-1]
		log.WithFields(log.Fields{"source": src.String(), "cap": limit.String(), "track": chosen.String()}).Debug("no track within cap")
		return chosen, nil
	}

	if purpose == Playback && p.Preferred != "" {
		if t, ok := p.preferred(allowed); ok {
			return t, nil
		}
	}

	return allowed[0], nil
}

func (p Policy) preferred(tracks []*media.Track) (*media.Track, bool) {
	labels := lo.Map(tracks, func(t *media.Track, _ int) string { return t.Quality.String() })
	ranks := fuzzy.RankFindFold(p.Preferred, labels)
	if len(ranks) == 0 {
		return nil, false
	}
	sort.Sort(ranks)
	return tracks[ranks[0].OriginalIndex], true
}
