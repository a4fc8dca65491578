package media

import (
	"fmt"
	"path"
	"strings"

	"github.com/samber/lo"
)

// TrackType is the closed set of track kinds a session keeps bookkeeping for.
type TrackType int

const (
	TrackVideo TrackType = iota
	TrackAudio

	// NumTrackTypes sizes per-type arrays.
	NumTrackTypes = 2
)

// TrackTypes lists every TrackType in index order.
var TrackTypes = [NumTrackTypes]TrackType{TrackVideo, TrackAudio}

func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	default:
		return "unknown"
	}
}

// Valid reports whether t indexes per-type arrays.
func (t TrackType) Valid() bool {
	return t >= 0 && t < NumTrackTypes
}

// ParseTrackType accepts "video"/"v" and "audio"/"a".
func ParseTrackType(s string) (TrackType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "video", "v":
		return TrackVideo, nil
	case "audio", "a":
		return TrackAudio, nil
	}
	return TrackVideo, fmt.Errorf("unknown track type %q", s)
}

// Format is the container or delivery format of a track.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP4
	FormatHLS
	FormatDASH
	FormatWebM
	FormatMP3
	FormatM4A
	FormatFLV
)

var formatNames = map[Format]string{
	FormatUnknown: "unknown",
	FormatMP4:     "mp4",
	FormatHLS:     "hls",
	FormatDASH:    "dash",
	FormatWebM:    "webm",
	FormatMP3:     "mp3",
	FormatM4A:     "m4a",
	FormatFLV:     "flv",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnknown]
}

// ParseFormat accepts format names and the file extensions that imply them.
func ParseFormat(s string) Format {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "m3u8":
		return FormatHLS
	case "mpd":
		return FormatDASH
	}
	for f, name := range formatNames {
		if name == s {
			return f
		}
	}
	return FormatUnknown
}

// FormatFromURL guesses the format from the URL path extension.
func FormatFromURL(rawURL string) Format {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return ParseFormat(path.Ext(p))
}

// Codec of the elementary stream carried by a track.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecH264
	CodecH265
	CodecVP9
	CodecAV1
	CodecAAC
	CodecOpus
	CodecMP3
)

var codecAliases = map[Codec][]string{
	CodecH264: {"h264", "avc", "avc1"},
	CodecH265: {"h265", "hevc", "hvc1", "hev1"},
	CodecVP9:  {"vp9", "vp09"},
	CodecAV1:  {"av1", "av01"},
	CodecAAC:  {"aac", "mp4a"},
	CodecOpus: {"opus"},
	CodecMP3:  {"mp3"},
}

func (c Codec) String() string {
	if aliases, ok := codecAliases[c]; ok {
		return aliases[0]
	}
	return "unknown"
}

// ParseCodec matches codec names and RFC 6381 prefixes like "avc1.64001f".
func ParseCodec(s string) Codec {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CodecUnknown
	}
	for c, aliases := range codecAliases {
		if lo.ContainsBy(aliases, func(alias string) bool { return strings.HasPrefix(s, alias) }) {
			return c
		}
	}
	return CodecUnknown
}

// Track is one encoded variant of a Source.
type Track struct {
	Type       TrackType
	Quality    Quality
	URL        string
	BackupURLs []string
	FileID     string
	FileHash   string
	Bitrate    int64
	EncryptKey string
	AuthToken  string
	Width      int
	Height     int
	Format     Format
	Codec      Codec
}

// Equal compares identity fields by value. Two nil tracks are equal.
func (t *Track) Equal(other *Track) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Type == other.Type &&
		t.URL == other.URL &&
		t.FileID == other.FileID &&
		t.FileHash == other.FileHash &&
		t.Quality.Compare(other.Quality) == 0 &&
		t.Quality.Tag == other.Quality.Tag
}

// URLs returns the primary URL followed by distinct backups.
func (t *Track) URLs() []string {
	all := append([]string{t.URL}, t.BackupURLs...)
	return lo.Uniq(lo.Compact(all))
}

func (t *Track) String() string {
	if t == nil {
		return "<none>"
	}
	label := t.Quality.String()
	if label == "" {
		label = t.Format.String()
	}
	if t.Bitrate > 0 {
		return fmt.Sprintf("%s %s (%d kbps)", t.Type, label, t.Bitrate/1000)
	}
	return fmt.Sprintf("%s %s", t.Type, label)
}

// Size holds video dimensions in pixels.
type Size struct {
	Width  int
	Height int
}

func (s Size) String() string {
	if s.Width == 0 && s.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}
