// Package eventtest records dispatched events for assertions in tests.
package eventtest

import (
	"sync"
	"time"

	"github.com/reelkit/reel/event"
	"github.com/samber/lo"
)

// Timeout bounds every Await call.
var Timeout = 2 * time.Second

// Recorder accumulates events in delivery order.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
	signal chan struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{signal: make(chan struct{}, 1)}
}

// Listen is an event.Listener.
func (r *Recorder) Listen(e event.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

// Codes returns recorded codes, optionally restricted to some categories.
func (r *Recorder) Codes(categories ...event.Category) []event.Code {
	events := r.Events()
	if len(categories) > 0 {
		events = lo.Filter(events, func(e event.Event, _ int) bool {
			return lo.Contains(categories, e.Category())
		})
	}
	return lo.Map(events, func(e event.Event, _ int) event.Code { return e.Code })
}

// Count returns how many events with code were recorded.
func (r *Recorder) Count(code event.Code) int {
	return lo.CountBy(r.Events(), func(e event.Event) bool { return e.Code == code })
}

// Last returns the most recent event with code.
func (r *Recorder) Last(code event.Code) (event.Event, bool) {
	e, _, ok := lo.FindLastIndexOf(r.Events(), func(e event.Event) bool { return e.Code == code })
	return e, ok
}

// Await waits until at least n events with code were recorded.
func (r *Recorder) Await(code event.Code, n ...int) bool {
	want := 1
	if len(n) > 0 {
		want = n[0]
	}
	return r.AwaitFunc(func() bool { return r.Count(code) >= want })
}

// AwaitFunc waits until cond holds, re-checking on every recorded event.
func (r *Recorder) AwaitFunc(cond func() bool) bool {
	deadline := time.After(Timeout)
	for {
		if cond() {
			return true
		}
		select {
		case <-r.signal:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			return cond()
		}
	}
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
