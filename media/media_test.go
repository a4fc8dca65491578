package media

import (
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQuality(t *testing.T) {
	Convey("Given parsed qualities", t, func() {
		q720, err := ParseQuality("720p")
		So(err, ShouldBeNil)
		q1080p60, err := ParseQuality("1080p60")
		So(err, ShouldBeNil)
		q4k, err := ParseQuality("4k")
		So(err, ShouldBeNil)

		Convey("They should order by resolution then frame rate", func() {
			So(q720.Compare(q1080p60), ShouldEqual, -1)
			So(q4k.Compare(q1080p60), ShouldEqual, 1)
			So(q1080p60.Compare(Quality{Resolution: Resolution1080, FPS: 30}), ShouldEqual, 1)
			So(q720.Compare(Quality{Resolution: Resolution720}), ShouldEqual, 0)
		})

		Convey("Caps should bound by resolution and frame rate", func() {
			So(q720.AtMost(q1080p60), ShouldBeTrue)
			So(q4k.AtMost(q1080p60), ShouldBeFalse)
			So(Quality{Resolution: Resolution1080, FPS: 60}.AtMost(Quality{Resolution: Resolution1080, FPS: 30}), ShouldBeFalse)
			So(q4k.AtMost(Quality{}), ShouldBeTrue)
		})

		Convey("Labels should render like the backend would", func() {
			So(q720.String(), ShouldEqual, "720p")
			So(q1080p60.String(), ShouldEqual, "1080p60")
			So(q4k.String(), ShouldEqual, "4K")
			So(Quality{Resolution: Resolution2160, Range: HDR10}.String(), ShouldEqual, "4K HDR10")
			So(Quality{Resolution: Resolution480, Label: "Standard"}.String(), ShouldEqual, "Standard")
		})

		Convey("Unknown labels should fail", func() {
			_, err := ParseQuality("ultra")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("ResolutionFromHeight should snap to the reached class", t, func() {
		So(ResolutionFromHeight(1080), ShouldEqual, Resolution1080)
		So(ResolutionFromHeight(800), ShouldEqual, Resolution720)
		So(ResolutionFromHeight(144), ShouldEqual, Resolution(144))
		So(ResolutionFromHeight(0), ShouldEqual, ResolutionUnknown)
	})
}

func TestTrack(t *testing.T) {
	Convey("Given two tracks with the same identity", t, func() {
		a := &Track{Type: TrackVideo, URL: "https://cdn/a.m3u8", Quality: Quality{Resolution: Resolution720}, Bitrate: 1}
		b := &Track{Type: TrackVideo, URL: "https://cdn/a.m3u8", Quality: Quality{Resolution: Resolution720}, Bitrate: 2}

		Convey("They should be equal by value", func() {
			So(a.Equal(b), ShouldBeTrue)
		})

		Convey("A different URL breaks equality", func() {
			b.URL = "https://cdn/b.m3u8"
			So(a.Equal(b), ShouldBeFalse)
		})

		Convey("Nil handling should be symmetric", func() {
			var none *Track
			So(none.Equal(nil), ShouldBeTrue)
			So(a.Equal(nil), ShouldBeFalse)
		})

		Convey("URLs should deduplicate backups", func() {
			a.BackupURLs = []string{"https://cdn/a.m3u8", "https://mirror/a.m3u8", ""}
			So(a.URLs(), ShouldResemble, []string{"https://cdn/a.m3u8", "https://mirror/a.m3u8"})
		})
	})

	Convey("Formats and codecs should parse from names and extensions", t, func() {
		So(FormatFromURL("https://cdn/x/master.m3u8?token=1"), ShouldEqual, FormatHLS)
		So(FormatFromURL("/media/clip.mp4"), ShouldEqual, FormatMP4)
		So(ParseFormat("mpd"), ShouldEqual, FormatDASH)
		So(ParseCodec("avc1.64001f"), ShouldEqual, CodecH264)
		So(ParseCodec("mp4a.40.2"), ShouldEqual, CodecAAC)
		So(ParseCodec("hevc"), ShouldEqual, CodecH265)
		So(ParseCodec("weird"), ShouldEqual, CodecUnknown)
	})
}

func TestSource(t *testing.T) {
	Convey("Given a source built from a URL", t, func() {
		src := FromURL("https://cdn/movie.mp4")

		Convey("Identity should be stable across calls", func() {
			So(FromURL("https://cdn/movie.mp4").UniqueID(), ShouldEqual, src.UniqueID())
			So(src.Kind(), ShouldEqual, ByURL)
		})

		Convey("It should expose one video track", func() {
			So(src.Tracks(TrackVideo), ShouldHaveLength, 1)
			So(src.Tracks(TrackAudio), ShouldBeEmpty)
			So(src.Tracks(TrackVideo)[0].Format, ShouldEqual, FormatMP4)
		})

		Convey("SetTracks should regroup and drop duplicates", func() {
			v := &Track{Type: TrackVideo, URL: "v1"}
			src.SetTracks([]*Track{v, {Type: TrackVideo, URL: "v1"}, {Type: TrackAudio, URL: "a1"}, nil})
			So(src.Tracks(TrackVideo), ShouldHaveLength, 1)
			So(src.Tracks(TrackAudio), ShouldHaveLength, 1)
			So(src.AllTracks(), ShouldHaveLength, 2)

			found, ok := src.Find(&Track{Type: TrackVideo, URL: "v1"})
			So(ok, ShouldBeTrue)
			So(found, ShouldPointTo, v)
		})

		Convey("Extras should round through copies", func() {
			src.SetExtra("drm", "widevine")
			extras := src.Extras()
			extras["drm"] = "changed"
			v, ok := src.Extra("drm")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "widevine")
		})
	})
}

func TestDescription(t *testing.T) {
	Convey("Given a JSON description with two video variants", t, func() {
		doc := `{
			"id": "ep-1",
			"kind": "model",
			"duration": 90.5,
			"tracks": [
				{"type": "video", "quality": "720p", "url": "https://cdn/720.m3u8", "codec": "avc1"},
				{"type": "video", "height": 1080, "url": "https://cdn/1080.m3u8", "dynamic_range": "hdr10"},
				{"type": "audio", "url": "https://cdn/en.m4a"}
			]
		}`

		src, err := DecodeDescription(strings.NewReader(doc))

		Convey("It should build the described source", func() {
			So(err, ShouldBeNil)
			So(src.UniqueID(), ShouldEqual, "ep-1")
			So(src.Kind(), ShouldEqual, ByModel)
			So(src.Duration(), ShouldEqual, 90500*time.Millisecond)

			videos := src.Tracks(TrackVideo)
			So(videos, ShouldHaveLength, 2)
			So(videos[0].Format, ShouldEqual, FormatHLS)
			So(videos[0].Codec, ShouldEqual, CodecH264)
			So(videos[1].Quality.Resolution, ShouldEqual, Resolution1080)
			So(videos[1].Quality.Range, ShouldEqual, HDR10)
			So(src.Tracks(TrackAudio)[0].Format, ShouldEqual, FormatM4A)
		})
	})

	Convey("Descriptions should be validated", t, func() {
		_, err := Description{}.Source()
		So(err, ShouldNotBeNil)

		_, err = Description{ID: "x", Kind: "url"}.Source()
		So(err, ShouldNotBeNil)

		src, err := Description{ID: "x", Kind: "id"}.Source()
		So(err, ShouldBeNil)
		So(src.HasTracks(), ShouldBeFalse)
	})
}
