// Package media models playable items: a Source and the encoded Track variants it offers.
package media

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Kind tells how a Source was described and what an engine must do to resolve it.
type Kind int

const (
	// ByID sources carry only a logical id; the engine resolves variants.
	ByID Kind = iota
	// ByURL sources point directly at playable URLs.
	ByURL
	// ByModel sources come with a fully populated track list.
	ByModel
)

func (k Kind) String() string {
	switch k {
	case ByID:
		return "id"
	case ByURL:
		return "url"
	case ByModel:
		return "model"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "id":
		return ByID, nil
	case "", "url":
		return ByURL, nil
	case "model":
		return ByModel, nil
	}
	return ByURL, fmt.Errorf("unknown source kind %q", s)
}

// Source describes one playable item. Its identity is fixed at construction; metadata
// and the track list may be replaced by an engine once it fetched richer information,
// so every accessor is safe for concurrent use.
type Source struct {
	uniqueID string
	mediaID  string
	kind     Kind

	mu       sync.RWMutex
	duration time.Duration
	cover    string
	tracks   [NumTrackTypes][]*Track
	extras   map[string]any
}

// New creates a Source with the given identity.
func New(kind Kind, uniqueID, mediaID string) *Source {
	return &Source{
		uniqueID: uniqueID,
		mediaID:  mediaID,
		kind:     kind,
		extras:   make(map[string]any),
	}
}

// FromURL builds a ByURL source around a single video track. The unique id is derived
// from the URL so repeated calls key the same pool entry.
func FromURL(rawURL string) *Source {
	sum := sha256.Sum256([]byte(rawURL))
	src := New(ByURL, hex.EncodeToString(sum[:8]), rawURL)
	src.SetTracks([]*Track{{
		Type:   TrackVideo,
		URL:    rawURL,
		Format: FormatFromURL(rawURL),
	}})
	return src
}

func (s *Source) UniqueID() string { return s.uniqueID }
func (s *Source) MediaID() string  { return s.mediaID }
func (s *Source) Kind() Kind       { return s.kind }

func (s *Source) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.duration
}

func (s *Source) SetDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

func (s *Source) Cover() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cover
}

func (s *Source) SetCover(cover string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cover = cover
}

// Tracks returns a copy of the tracks of the given type.
func (s *Source) Tracks(typ TrackType) []*Track {
	if !typ.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Track(nil), s.tracks[typ]...)
}

// AllTracks returns every track, video first.
func (s *Source) AllTracks() []*Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Track
	for _, group := range s.tracks {
		all = append(all, group...)
	}
	return all
}

// HasTracks reports whether any track is known.
func (s *Source) HasTracks() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.SomeBy(s.tracks[:], func(group []*Track) bool { return len(group) > 0 })
}

// SetTracks replaces the whole track list, regrouping it by type. Tracks with an
// invalid type and value-duplicates are dropped.
func (s *Source) SetTracks(tracks []*Track) {
	var grouped [NumTrackTypes][]*Track
	for _, t := range tracks {
		if t == nil || !t.Type.Valid() {
			continue
		}
		if lo.ContainsBy(grouped[t.Type], t.Equal) {
			continue
		}
		grouped[t.Type] = append(grouped[t.Type], t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = grouped
}

// Find returns the track of this source equal by value to t.
func (s *Source) Find(t *Track) (*Track, bool) {
	if t == nil || !t.Type.Valid() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.tracks[t.Type], t.Equal)
}

// Extra returns a backend-specific value.
func (s *Source) Extra(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.extras[key]
	return v, ok
}

func (s *Source) SetExtra(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.extras[key] = value
}

// Extras returns a copy of all extras.
func (s *Source) Extras() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.extras)
}

func (s *Source) String() string {
	return fmt.Sprintf("%s:%s", s.kind, s.uniqueID)
}
