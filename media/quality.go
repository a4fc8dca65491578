package media

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolution is a vertical resolution class, expressed as its nominal line count.
type Resolution int

const (
	ResolutionUnknown Resolution = 0
	Resolution240     Resolution = 240
	Resolution360     Resolution = 360
	Resolution480     Resolution = 480
	Resolution540     Resolution = 540
	Resolution720     Resolution = 720
	Resolution1080    Resolution = 1080
	Resolution1440    Resolution = 1440
	Resolution2160    Resolution = 2160
	Resolution4320    Resolution = 4320
)

var resolutionClasses = []Resolution{
	Resolution4320, Resolution2160, Resolution1440, Resolution1080,
	Resolution720, Resolution540, Resolution480, Resolution360, Resolution240,
}

// ResolutionFromHeight maps a pixel height onto the highest class it reaches.
// Heights below the smallest class keep their own value.
func ResolutionFromHeight(height int) Resolution {
	if height <= 0 {
		return ResolutionUnknown
	}
	for _, class := range resolutionClasses {
		if height >= int(class) {
			return class
		}
	}
	return Resolution(height)
}

func (r Resolution) String() string {
	switch {
	case r == ResolutionUnknown:
		return ""
	case r >= Resolution4320:
		return "8K"
	case r >= Resolution2160:
		return "4K"
	default:
		return fmt.Sprintf("%dp", int(r))
	}
}

// DynamicRange of a video variant.
type DynamicRange int

const (
	SDR DynamicRange = iota
	HLG
	HDR10
	DolbyVision
)

func (d DynamicRange) String() string {
	switch d {
	case HLG:
		return "HLG"
	case HDR10:
		return "HDR10"
	case DolbyVision:
		return "DV"
	default:
		return "SDR"
	}
}

// ParseDynamicRange accepts "sdr", "hlg", "hdr", "hdr10", "dv" and "dolbyvision".
func ParseDynamicRange(s string) (DynamicRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sdr":
		return SDR, nil
	case "hlg":
		return HLG, nil
	case "hdr", "hdr10":
		return HDR10, nil
	case "dv", "dolbyvision", "dolby-vision":
		return DolbyVision, nil
	}
	return SDR, fmt.Errorf("unknown dynamic range %q", s)
}

// Quality orders variants for display and for "max allowed" policy caps.
// Label and Tag are carried along but never take part in ordering.
type Quality struct {
	Resolution Resolution
	Range      DynamicRange
	FPS        int
	// Label is the human-readable name a backend gave this variant.
	Label string
	// Tag is an opaque backend identifier.
	Tag string
}

// Compare orders by resolution, then dynamic range, then frame rate.
func (q Quality) Compare(other Quality) int {
	switch {
	case q.Resolution != other.Resolution:
		return sign(int(q.Resolution) - int(other.Resolution))
	case q.Range != other.Range:
		return sign(int(q.Range) - int(other.Range))
	default:
		return sign(q.FPS - other.FPS)
	}
}

// AtMost reports whether q does not exceed limit. A zero limit allows everything.
func (q Quality) AtMost(limit Quality) bool {
	if limit.IsZero() {
		return true
	}
	if q.Resolution != limit.Resolution {
		return q.Resolution < limit.Resolution
	}
	if limit.FPS > 0 && q.FPS > limit.FPS {
		return false
	}
	return true
}

// IsZero reports whether no ordering attribute is set.
func (q Quality) IsZero() bool {
	return q.Resolution == ResolutionUnknown && q.Range == SDR && q.FPS == 0
}

func (q Quality) String() string {
	if q.Label != "" {
		return q.Label
	}

	var b strings.Builder
	b.WriteString(q.Resolution.String())
	if q.FPS > 30 && q.Resolution != ResolutionUnknown {
		b.WriteString(strconv.Itoa(q.FPS))
	}
	if q.Range != SDR {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(q.Range.String())
	}
	return b.String()
}

// ParseQuality reads labels like "720p", "1080p60", "4k", "hd" or "fhd".
func ParseQuality(s string) (Quality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Quality{}, nil
	}

	switch s {
	case "8k":
		return Quality{Resolution: Resolution4320}, nil
	case "4k", "uhd":
		return Quality{Resolution: Resolution2160}, nil
	case "2k", "qhd":
		return Quality{Resolution: Resolution1440}, nil
	case "fhd":
		return Quality{Resolution: Resolution1080}, nil
	case "hd":
		return Quality{Resolution: Resolution720}, nil
	case "sd":
		return Quality{Resolution: Resolution480}, nil
	}

	idx := strings.IndexByte(s, 'p')
	if idx <= 0 {
		return Quality{}, fmt.Errorf("unknown quality %q", s)
	}

	height, err := strconv.Atoi(s[:idx])
	if err != nil {
		return Quality{}, fmt.Errorf("unknown quality %q: %w", s, err)
	}

	q := Quality{Resolution: ResolutionFromHeight(height)}
	if rest := s[idx+1:]; rest != "" {
		fps, err := strconv.Atoi(rest)
		if err != nil {
			return Quality{}, fmt.Errorf("unknown frame rate in %q: %w", s, err)
		}
		q.FPS = fps
	}

	return q, nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
