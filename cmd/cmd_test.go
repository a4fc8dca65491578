package cmd

import (
	"testing"
	"time"

	"github.com/reelkit/reel/config"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/media"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
	_ = config.Setup()
}

func TestParseValue(t *testing.T) {
	Convey("Given raw values for config keys", t, func() {
		Convey("Then they take the type of the default", func() {
			v, err := parseValue(key.PlayerVolume, []string{"0.5"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.5)

			v, err = parseValue(key.PlayerLooping, []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)

			v, err = parseValue(key.ProgressMinPosition, []string{"10"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 10)

			v, err = parseValue(key.MpvExtraFlags, []string{"--hwdec=auto", "--profile=fast"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--hwdec=auto", "--profile=fast"})
		})

		Convey("Then malformed values are rejected", func() {
			_, err := parseValue(key.PlayerVolume, []string{"loud"})
			So(err, ShouldNotBeNil)
			_, err = parseValue(key.PlayerLooping, []string{"maybe"})
			So(err, ShouldNotBeNil)
			_, err = parseValue(key.PlayerSpeed, []string{"9"})
			So(err, ShouldNotBeNil)
		})

		Convey("Then unknown keys suggest the closest one", func() {
			_, err := parseValue("player.volum", []string{"1"})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.PlayerVolume)
		})
	})
}

func TestEngineFactory(t *testing.T) {
	Convey("Given the engine setting", t, func() {
		defer viper.Set(key.PlayerEngine, "mpv")

		Convey("When it names mpv", func() {
			viper.Set(key.PlayerEngine, "mpv")
			factory, err := engineFactory()

			Convey("Then the mpv factory is used", func() {
				So(err, ShouldBeNil)
				engine, err := factory(media.FromURL("https://example.com/a.mp4"))
				So(err, ShouldBeNil)
				So(engine, ShouldNotBeNil)
			})
		})

		Convey("When it names something unknown", func() {
			viper.Set(key.PlayerEngine, "mvp")
			_, err := engineFactory()

			Convey("Then the error suggests mpv", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "mpv")
			})
		})
	})
}

func TestStatusPrinter(t *testing.T) {
	Convey("Given a status printer", t, func() {
		finished := make(chan struct{})
		closed := func() bool {
			select {
			case <-finished:
				return true
			default:
				return false
			}
		}

		Convey("When playback completes without looping", func() {
			printer := statusPrinter(false, finished)
			printer(event.Event{Code: event.InfoProgress, Payload: event.Progress{Position: time.Minute, Duration: time.Hour}})
			So(closed(), ShouldBeFalse)
			printer(event.Event{Code: event.StateCompleted})

			Convey("Then it is finished, once", func() {
				So(closed(), ShouldBeTrue)
				So(func() { printer(event.Event{Code: event.StateReleased}) }, ShouldNotPanic)
			})
		})

		Convey("When playback completes while looping", func() {
			printer := statusPrinter(true, finished)
			printer(event.Event{Code: event.StateCompleted})

			Convey("Then it keeps going until an error", func() {
				So(closed(), ShouldBeFalse)
				printer(event.Event{Code: event.StateError})
				So(closed(), ShouldBeTrue)
			})
		})
	})
}
