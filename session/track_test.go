package session

import (
	"testing"
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelectBeforePlayback(t *testing.T) {
	Convey("Given a session with a bound source that is still preparing", t, func() {
		h := newHarness()
		Reset(h.release)
		So(h.s.Prepare(h.src), ShouldBeNil)

		Convey("A selection should be recorded and applied once prepared", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v480), ShouldBeNil)
			So(h.s.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v480)
			So(h.fake.Called("switch_track"), ShouldEqual, 0)
			So(h.fake.Called("stop"), ShouldEqual, 0)

			h.fake.Prepared()
			So(h.rec.Await(event.StatePreparing, 2), ShouldBeTrue)
			So(h.fake.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v480)
		})

		Convey("A selection kept across stop should be used by the next prepare", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)
			So(h.s.Stop(), ShouldBeNil)
			So(h.s.Prepare(h.src), ShouldBeNil)
			So(h.fake.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v720)
		})

		Convey("A track the source does not offer should be refused", func() {
			foreign := videoTrack(media.Resolution2160)
			So(h.s.SelectTrack(media.TrackVideo, foreign), ShouldNotBeNil)
			So(h.s.SelectTrack(media.TrackAudio, h.v720), ShouldNotBeNil)
		})
	})
}

func TestSmoothSwitch(t *testing.T) {
	Convey("Given a started session whose engine switches video in place", t, func() {
		h := newHarness()
		Reset(h.release)
		h.fake.SetSmooth(media.TrackVideo, true)
		h.started()
		h.flush()
		h.rec.Reset()

		Convey("Selecting the current track again should do nothing", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v1080), ShouldBeNil)
			h.flush()
			So(h.rec.Count(event.ActionSelectTrack), ShouldEqual, 0)
			So(h.fake.Called("switch_track"), ShouldEqual, 0)
		})

		Convey("When another variant is selected", func() {
			clone := *h.v720
			So(h.s.SelectTrack(media.TrackVideo, &clone), ShouldBeNil)

			Convey("Then it should be pending, resolved by value", func() {
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldPointTo, h.v720)
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v1080)
				So(h.fake.Called("switch_track"), ShouldEqual, 1)
			})

			Convey("Then reselecting it should be a no-op", func() {
				So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)
				So(h.fake.Called("switch_track"), ShouldEqual, 1)
			})

			Convey("Then the confirmation should complete the switch without preparing", func() {
				h.fake.ConfirmSwitch(media.TrackVideo, h.v720)
				So(h.rec.Await(event.InfoTrackChanged), ShouldBeTrue)

				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v720)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldBeNil)
				So(h.s.State(), ShouldEqual, Started)
				So(h.rec.Codes(event.State), ShouldBeEmpty)

				changed, _ := h.rec.Last(event.InfoTrackChanged)
				So(changed.Payload, ShouldResemble, event.TrackChange{Type: media.TrackVideo, From: h.v1080, To: h.v720})
			})

			Convey("And replaced before the engine confirmed", func() {
				So(h.s.SelectTrack(media.TrackVideo, h.v480), ShouldBeNil)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldPointTo, h.v480)

				Convey("Then the superseded confirmation should be dropped", func() {
					h.fake.ConfirmSwitch(media.TrackVideo, h.v720)
					h.flush()
					So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 0)
					So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v1080)

					h.fake.ConfirmSwitch(media.TrackVideo, h.v480)
					So(h.rec.Await(event.InfoTrackChanged), ShouldBeTrue)
					h.flush()
					So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 1)
					So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v480)
				})
			})
		})

		Convey("When switching away and back before the engine confirmed", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)
			So(h.s.SelectTrack(media.TrackVideo, h.v1080), ShouldBeNil)

			Convey("Then the adapter should see only the first request", func() {
				So(h.fake.Called("switch_track"), ShouldEqual, 1)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldBeNil)
				So(h.s.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v1080)
			})

			Convey("Then confirming the kept track should not report a change", func() {
				h.fake.ConfirmSwitch(media.TrackVideo, h.v1080)
				h.flush()
				So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 0)
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v1080)
			})

			Convey("Then a late confirmation of the cancelled track should switch back", func() {
				h.fake.ConfirmSwitch(media.TrackVideo, h.v720)
				h.flush()
				So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 0)
				So(h.fake.Called("switch_track"), ShouldEqual, 2)
				So(h.fake.Track(adapter.SlotPending, media.TrackVideo), ShouldPointTo, h.v1080)
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v1080)

				h.fake.ConfirmSwitch(media.TrackVideo, h.v1080)
				h.flush()
				So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 0)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldBeNil)
			})
		})

		Convey("An engine-initiated change should be adopted", func() {
			h.fake.ConfirmSwitch(media.TrackVideo, h.v480)
			So(h.rec.Await(event.InfoTrackChanged), ShouldBeTrue)
			So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v480)
			So(h.s.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v480)
		})
	})
}

func TestRebuildSwitch(t *testing.T) {
	Convey("Given a started session whose engine cannot switch in place", t, func() {
		h := newHarness()
		Reset(h.release)
		h.started()
		h.fake.Progress(20 * time.Second)
		h.flush()
		h.rec.Reset()

		Convey("When another variant is selected", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)

			Convey("Then the engine should be rebuilt at the current position", func() {
				So(h.s.State(), ShouldEqual, Preparing)
				So(h.fake.Called("stop"), ShouldEqual, 1)
				So(h.fake.Called("prepare"), ShouldEqual, 2)
				So(h.fake.StartPosition(), ShouldEqual, 20*time.Second)
				So(h.fake.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v720)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldPointTo, h.v720)
			})

			Convey("Then playback should resume once prepared", func() {
				h.fake.Prepared()
				So(h.rec.Await(event.StateStarted), ShouldBeTrue)
				So(h.rec.Await(event.InfoTrackChanged), ShouldBeTrue)

				So(h.rec.Codes(event.State), ShouldResemble, []event.Code{
					event.StatePreparing, event.StatePrepared, event.StateStarted,
				})
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v720)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldBeNil)
				So(h.rec.Count(event.InfoTrackWillChange), ShouldEqual, 1)
			})
		})

		Convey("When the selection changes again while rebuilding", func() {
			So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)
			So(h.s.SelectTrack(media.TrackVideo, h.v480), ShouldBeNil)

			Convey("Then the rebuild should be retargeted in place", func() {
				So(h.s.State(), ShouldEqual, Preparing)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldPointTo, h.v480)
				So(h.fake.Called("prepare"), ShouldEqual, 3)
				So(h.fake.StartPosition(), ShouldEqual, 20*time.Second)
				So(h.fake.Track(adapter.SlotSelected, media.TrackVideo), ShouldPointTo, h.v480)
			})

			Convey("Then playback should resume once on the newest target", func() {
				h.fake.Prepared()
				So(h.rec.Await(event.StateStarted), ShouldBeTrue)
				So(h.rec.Await(event.InfoTrackChanged), ShouldBeTrue)
				h.flush()

				So(h.rec.Codes(event.State), ShouldResemble, []event.Code{
					event.StatePreparing, event.StatePrepared, event.StateStarted,
				})
				So(h.fake.Called("prepare"), ShouldEqual, 3)
				So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 1)
				changed, _ := h.rec.Last(event.InfoTrackChanged)
				So(changed.Payload, ShouldResemble, event.TrackChange{Type: media.TrackVideo, From: h.v1080, To: h.v480})
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v480)
			})

			Convey("Then returning to the playing track should still restore playback", func() {
				So(h.s.SelectTrack(media.TrackVideo, h.v1080), ShouldBeNil)
				So(h.s.Track(adapter.SlotPending, media.TrackVideo), ShouldBeNil)

				h.fake.Prepared()
				So(h.rec.Await(event.StateStarted), ShouldBeTrue)
				h.flush()
				So(h.rec.Count(event.InfoTrackChanged), ShouldEqual, 0)
				So(h.s.Track(adapter.SlotCurrent, media.TrackVideo), ShouldPointTo, h.v1080)
			})
		})

		Convey("Callbacks of the replaced pipeline should be dropped", func() {
			stale := h.fake.Callback()
			So(h.s.SelectTrack(media.TrackVideo, h.v720), ShouldBeNil)

			stale.OnPrepared()
			stale.OnProgress(21*time.Second, time.Minute)
			h.flush()

			So(h.s.State(), ShouldEqual, Preparing)
			So(h.rec.Count(event.InfoProgress), ShouldEqual, 0)
		})

		Convey("When paused before switching", func() {
			So(h.s.Pause(), ShouldBeNil)
			h.flush()
			h.rec.Reset()

			So(h.s.SelectTrack(media.TrackVideo, h.v480), ShouldBeNil)
			h.fake.Prepared()

			Convey("Then it should end up paused again", func() {
				So(h.rec.Await(event.StatePaused), ShouldBeTrue)
				So(h.rec.Codes(event.State), ShouldResemble, []event.Code{
					event.StatePreparing, event.StatePrepared, event.StatePaused,
				})
				So(h.fake.Called("start"), ShouldEqual, 1)
			})
		})
	})
}
