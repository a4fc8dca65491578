package media

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Description is the declarative, serializable form of a Source.
type Description struct {
	ID       string             `json:"id" jsonschema:"required,description=Unique id keying pooled sessions"`
	MediaID  string             `json:"media_id,omitempty"`
	Kind     string             `json:"kind,omitempty" jsonschema:"enum=id,enum=url,enum=model"`
	Duration float64            `json:"duration,omitempty" jsonschema:"description=Duration in seconds"`
	Cover    string             `json:"cover,omitempty"`
	Tracks   []TrackDescription `json:"tracks,omitempty"`
	Extras   map[string]any     `json:"extras,omitempty"`
}

// TrackDescription is the serializable form of a Track.
type TrackDescription struct {
	Type         string   `json:"type,omitempty" jsonschema:"enum=video,enum=audio"`
	Quality      string   `json:"quality,omitempty" jsonschema:"description=Resolution class such as 720p or 4k"`
	Label        string   `json:"label,omitempty"`
	Tag          string   `json:"tag,omitempty"`
	DynamicRange string   `json:"dynamic_range,omitempty" jsonschema:"enum=sdr,enum=hlg,enum=hdr10,enum=dv"`
	FPS          int      `json:"fps,omitempty"`
	URL          string   `json:"url,omitempty"`
	BackupURLs   []string `json:"backup_urls,omitempty"`
	FileID       string   `json:"file_id,omitempty"`
	FileHash     string   `json:"file_hash,omitempty"`
	Bitrate      int64    `json:"bitrate,omitempty"`
	EncryptKey   string   `json:"encrypt_key,omitempty"`
	AuthToken    string   `json:"auth_token,omitempty"`
	Width        int      `json:"width,omitempty"`
	Height       int      `json:"height,omitempty"`
	Format       string   `json:"format,omitempty"`
	Codec        string   `json:"codec,omitempty"`
}

// DecodeDescription reads a JSON Description and builds its Source.
func DecodeDescription(r io.Reader) (*Source, error) {
	var d Description
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode description: %w", err)
	}
	return d.Source()
}

// Source validates the description and builds the Source it describes.
func (d Description) Source() (*Source, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("description: id is required")
	}

	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, fmt.Errorf("description %s: %w", d.ID, err)
	}

	src := New(kind, d.ID, d.MediaID)
	src.SetDuration(time.Duration(d.Duration * float64(time.Second)))
	src.SetCover(d.Cover)
	for k, v := range d.Extras {
		src.SetExtra(k, v)
	}

	tracks := make([]*Track, 0, len(d.Tracks))
	for i, td := range d.Tracks {
		t, err := td.Track()
		if err != nil {
			return nil, fmt.Errorf("description %s: track %d: %w", d.ID, i, err)
		}
		tracks = append(tracks, t)
	}
	src.SetTracks(tracks)

	if kind != ByID && !src.HasTracks() {
		return nil, fmt.Errorf("description %s: %s source without tracks", d.ID, kind)
	}

	return src, nil
}

// Track builds the Track described by td. The resolution class falls back to Height.
func (td TrackDescription) Track() (*Track, error) {
	typ, err := ParseTrackType(td.Type)
	if err != nil {
		return nil, err
	}

	quality, err := ParseQuality(td.Quality)
	if err != nil {
		return nil, err
	}
	if quality.Resolution == ResolutionUnknown {
		quality.Resolution = ResolutionFromHeight(td.Height)
	}
	if quality.Range, err = ParseDynamicRange(td.DynamicRange); err != nil {
		return nil, err
	}
	if td.FPS > 0 {
		quality.FPS = td.FPS
	}
	quality.Label = td.Label
	quality.Tag = td.Tag

	format := ParseFormat(td.Format)
	if format == FormatUnknown {
		format = FormatFromURL(td.URL)
	}

	return &Track{
		Type:       typ,
		Quality:    quality,
		URL:        td.URL,
		BackupURLs: td.BackupURLs,
		FileID:     td.FileID,
		FileHash:   td.FileHash,
		Bitrate:    td.Bitrate,
		EncryptKey: td.EncryptKey,
		AuthToken:  td.AuthToken,
		Width:      td.Width,
		Height:     td.Height,
		Format:     format,
		Codec:      ParseCodec(td.Codec),
	}, nil
}
