package config

import (
	"testing"

	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetString(key.SelectorMaxQuality), ShouldEqual, "1080p")
			So(viper.GetBool(key.PlayerStartWhenPrepared), ShouldBeTrue)
		})

		Convey("Env should carry the application prefix once", func() {
			field := Default[key.PlayerLooping]
			So(field.Env(), ShouldEqual, "REEL_PLAYER_LOOPING")
		})

		Convey("Pretty should mention the key", func() {
			field := Default[key.MpvPath]
			So(field.Pretty(), ShouldContainSubstring, key.MpvPath)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			So(EnvKeyReplacer.Replace("selector.max_quality"), ShouldEqual, "selector_max_quality")
		})

		Convey("Validate should enforce ranges and quality labels", func() {
			volume := Default[key.PlayerVolume]
			So(volume.Validate(0.5), ShouldBeNil)
			So(volume.Validate(1.5), ShouldNotBeNil)

			maxQuality := Default[key.SelectorMaxQuality]
			So(maxQuality.Validate("720p"), ShouldBeNil)
			So(maxQuality.Validate(""), ShouldBeNil)
			So(maxQuality.Validate("very good"), ShouldNotBeNil)

			looping := Default[key.PlayerLooping]
			So(looping.Validate(true), ShouldBeNil)
		})

		Convey("MarshalJSON should report the env name and type", func() {
			field := Default[key.PlayerSpeed]
			data, err := field.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"env":"REEL_PLAYER_SPEED"`)
			So(string(data), ShouldContainSubstring, `"type":"float"`)
		})
	})
}
