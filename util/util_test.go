package util

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-3, 0, 10), ShouldEqual, 0)
		So(Clamp(42, 0, 10), ShouldEqual, 10)
		So(Clamp(7*time.Second, 0, 5*time.Second), ShouldEqual, 5*time.Second)

		Convey("Lower bound wins on an inverted range", func() {
			So(Clamp(3, 2, 1), ShouldEqual, 2)
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "session", "sessions"), ShouldEqual, "1 session")
		So(Quantify(2, "session", "sessions"), ShouldEqual, "2 sessions")
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Timestamp", t, func() {
		So(Timestamp(0), ShouldEqual, "0:00")
		So(Timestamp(65*time.Second), ShouldEqual, "1:05")
		So(Timestamp(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1:02:03")
		So(Timestamp(-time.Second), ShouldEqual, "0:00")
	})
}
