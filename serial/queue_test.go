package serial

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestQueue(t *testing.T) {
	Convey("Given a running queue", t, func() {
		q := NewQueue()
		defer q.Close()

		Convey("Tasks should run in submission order", func() {
			var (
				mu  sync.Mutex
				got []int
			)
			for i := 0; i < 100; i++ {
				i := i
				So(q.Execute(func() {
					mu.Lock()
					got = append(got, i)
					mu.Unlock()
				}), ShouldBeTrue)
			}
			So(q.Call(func() {}), ShouldBeTrue)

			mu.Lock()
			defer mu.Unlock()
			So(got, ShouldHaveLength, 100)
			for i, v := range got {
				So(v, ShouldEqual, i)
			}
		})

		Convey("A task may enqueue onto its own queue", func() {
			second := make(chan struct{})
			q.Execute(func() {
				q.Execute(func() { close(second) })
			})

			select {
			case <-second:
			case <-time.After(time.Second):
				So("nested task never ran", ShouldBeEmpty)
			}
		})

		Convey("Call should wait for the task", func() {
			value := 0
			So(q.Call(func() { value = 7 }), ShouldBeTrue)
			So(value, ShouldEqual, 7)
		})
	})

	Convey("Given a closed queue", t, func() {
		q := NewQueue()
		ran := false
		q.Execute(func() { ran = true })
		q.Close()
		<-q.Done()

		Convey("Pending tasks should have drained", func() {
			So(ran, ShouldBeTrue)
		})

		Convey("New tasks should be refused", func() {
			So(q.Execute(func() {}), ShouldBeFalse)
			So(q.Call(func() {}), ShouldBeFalse)
		})

		Convey("Close should be idempotent", func() {
			So(q.Close, ShouldNotPanic)
		})
	})
}
