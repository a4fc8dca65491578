package progress

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/reelkit/reel/filesystem"
	"github.com/reelkit/reel/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestCacheStore(t *testing.T) {
	Convey("Given a cache store", t, func() {
		store := NewCacheStore(filepath.Join("progress", t.Name()+".json"), 5*time.Second)
		So(store.Clear(), ShouldBeNil)

		Convey("When a position is recorded", func() {
			So(store.Record("ep-1", 90*time.Second), ShouldBeNil)

			Convey("Then it should be returned", func() {
				pos, err := store.Get("ep-1")
				So(err, ShouldBeNil)
				So(pos.IsPresent(), ShouldBeTrue)
				So(pos.MustGet(), ShouldEqual, 90*time.Second)
			})

			Convey("And recording again should overwrite it", func() {
				So(store.Record("ep-1", 2*time.Minute), ShouldBeNil)
				pos, err := store.Get("ep-1")
				So(err, ShouldBeNil)
				So(pos.OrEmpty(), ShouldEqual, 2*time.Minute)
			})

			Convey("And removing should forget it", func() {
				So(store.Remove("ep-1"), ShouldBeNil)
				pos, err := store.Get("ep-1")
				So(err, ShouldBeNil)
				So(pos.IsAbsent(), ShouldBeTrue)
			})

			Convey("And a position below the minimum should remove it", func() {
				So(store.Record("ep-1", time.Second), ShouldBeNil)
				pos, err := store.Get("ep-1")
				So(err, ShouldBeNil)
				So(pos.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("Ids should be ordered by recency", func() {
			So(store.Record("old", time.Minute), ShouldBeNil)
			time.Sleep(5 * time.Millisecond)
			So(store.Record("new", time.Minute), ShouldBeNil)

			ids, err := store.IDs()
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"new", "old"})
		})

		Convey("Removing an unknown id is fine", func() {
			So(store.Remove("missing"), ShouldBeNil)
		})
	})
}

func TestMemory(t *testing.T) {
	Convey("Given a memory store", t, func() {
		store := NewMemory()

		pos, err := store.Get("a")
		So(err, ShouldBeNil)
		So(pos.IsAbsent(), ShouldBeTrue)

		So(store.Record("a", time.Second), ShouldBeNil)
		pos, _ = store.Get("a")
		So(pos.MustGet(), ShouldEqual, time.Second)

		So(store.Remove("a"), ShouldBeNil)
		pos, _ = store.Get("a")
		So(pos.IsAbsent(), ShouldBeTrue)
	})
}

func TestFromConfig(t *testing.T) {
	Convey("Disabled progress should yield a nop store", t, func() {
		viper.Set(key.ProgressEnabled, false)
		defer viper.Set(key.ProgressEnabled, true)

		store := FromConfig()
		So(store, ShouldHaveSameTypeAs, Nop{})
		So(store.Record("a", time.Hour), ShouldBeNil)
		pos, err := store.Get("a")
		So(err, ShouldBeNil)
		So(pos.IsAbsent(), ShouldBeTrue)
	})
}
