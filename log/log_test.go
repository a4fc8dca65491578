package log

import (
	"bytes"
	"testing"

	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/key"
	logrus "github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestLog(t *testing.T) {
	Convey("Given logging disabled by configuration", t, func() {
		viper.Set(key.LogsWrite, false)
		So(Setup(), ShouldBeNil)

		Convey("WithFields should return a usable sink", func() {
			entry := WithFields(Fields{"session": "x"})
			So(entry, ShouldNotBeNil)
			So(func() { entry.Info("dropped") }, ShouldNotPanic)
		})
	})

	Convey("Given logging routed to a buffer", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf, logrus.DebugLevel)
		defer func() { enabled = false }()

		Convey("Structured entries should carry their fields", func() {
			WithFields(Fields{"state": "prepared"}).Info("transition")
			So(buf.String(), ShouldContainSubstring, "state=prepared")
		})

		Convey("Leveled helpers should write", func() {
			Warnf("stale callback %d", 3)
			So(buf.String(), ShouldContainSubstring, "stale callback 3")
		})
	})

	Convey("Given logging enabled by configuration", t, func() {
		viper.Set(key.LogsWrite, true)
		viper.Set(key.LogsLevel, "bogus")
		defer func() {
			viper.Set(key.LogsWrite, false)
			enabled = false
		}()

		Convey("Setup should open a file and fall back to info level", func() {
			So(Setup(), ShouldBeNil)
			So(logrus.GetLevel(), ShouldEqual, logrus.InfoLevel)
		})
	})
}
