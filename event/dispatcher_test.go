package event_test

import (
	"sync"
	"testing"

	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/event/eventtest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCodes(t *testing.T) {
	Convey("Codes should know their category", t, func() {
		So(event.ActionStart.Category(), ShouldEqual, event.Action)
		So(event.StateReleased.Category(), ShouldEqual, event.State)
		So(event.InfoProgress.Category(), ShouldEqual, event.Info)
		So(event.Code("custom").Category(), ShouldEqual, event.Info)
		So(event.Event{Code: event.StatePaused}.Category().String(), ShouldEqual, "state")
	})
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher with two listeners", t, func() {
		d := event.NewDispatcher("s-1")
		first, second := eventtest.NewRecorder(), eventtest.NewRecorder()
		d.Subscribe(first.Listen)
		unsubscribe := d.Subscribe(second.Listen)

		Convey("Both should observe the same order", func() {
			codes := []event.Code{event.ActionPrepare, event.StatePreparing, event.StatePrepared, event.ActionStart, event.StateStarted}
			for _, c := range codes {
				d.Emit(c, nil)
			}
			So(first.Await(event.StateStarted), ShouldBeTrue)
			So(second.Await(event.StateStarted), ShouldBeTrue)
			So(first.Codes(), ShouldResemble, codes)
			So(second.Codes(), ShouldResemble, codes)

			Convey("Sequence numbers should be contiguous and stamped", func() {
				for i, e := range first.Events() {
					So(e.Seq, ShouldEqual, uint64(i+1))
					So(e.Session, ShouldEqual, "s-1")
				}
			})
		})

		Convey("Events raised from many goroutines should still be delivered identically", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 25; j++ {
						d.Emit(event.InfoProgress, j)
					}
				}()
			}
			wg.Wait()

			So(first.Await(event.InfoProgress, 200), ShouldBeTrue)
			So(second.Await(event.InfoProgress, 200), ShouldBeTrue)
			a, b := first.Events(), second.Events()
			for i := range a {
				So(a[i].Seq, ShouldEqual, b[i].Seq)
				if i > 0 {
					So(a[i].Seq, ShouldBeGreaterThan, a[i-1].Seq)
				}
			}
		})

		Convey("An unsubscribed listener should stop receiving", func() {
			unsubscribe()
			d.Emit(event.StateIdle, nil)
			So(first.Await(event.StateIdle), ShouldBeTrue)
			So(second.Count(event.StateIdle), ShouldEqual, 0)
		})

		Convey("A panicking listener should not break delivery", func() {
			d.Subscribe(func(event.Event) { panic("boom") })
			d.Emit(event.InfoCacheHint, nil)
			d.Emit(event.InfoSeekComplete, nil)
			So(first.Await(event.InfoSeekComplete), ShouldBeTrue)
			So(first.Codes(), ShouldResemble, []event.Code{event.InfoCacheHint, event.InfoSeekComplete})
		})

		Convey("Close should deliver pending events before dropping listeners", func() {
			d.Emit(event.ActionRelease, nil)
			d.Emit(event.StateReleased, nil)
			d.Close()
			<-d.Done()

			So(first.Codes(), ShouldResemble, []event.Code{event.ActionRelease, event.StateReleased})

			d.Emit(event.StateIdle, nil)
			So(first.Count(event.StateIdle), ShouldEqual, 0)
			So(d.Close, ShouldNotPanic)
		})
	})
}
