package where

import (
	"path/filepath"
	"testing"

	"github.com/reelkit/reel/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Config() honors the override variable", func() {
			t.Setenv(EnvConfigPath, "/custom/reel")
			So(Config(), ShouldEqual, "/custom/reel")
			So(lo.Must(filesystem.API().IsDir("/custom/reel")), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Progress() lives under State()", func() {
			So(filepath.Dir(Progress()), ShouldEqual, State())
			So(filepath.Base(Progress()), ShouldEqual, "progress.json")
		})

		Convey("Sockets()", func() {
			So(lo.Must(filesystem.API().IsDir(Sockets())), ShouldBeTrue)
		})
	})
}
