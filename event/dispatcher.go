package event

import (
	"sync"
	"time"

	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/serial"
)

// Listener receives events on the dispatcher's delivery goroutine.
type Listener func(Event)

type subscription struct {
	id       uint64
	listener Listener
}

// Dispatcher delivers the events of one session in the order they were raised.
// Every listener sees the same sequence; a slow listener delays the others.
type Dispatcher struct {
	session string
	queue   *serial.Queue

	mu        sync.Mutex
	seq       uint64
	nextID    uint64
	listeners []subscription
	closed    bool
}

// NewDispatcher starts a dispatcher whose events are stamped with the session id.
func NewDispatcher(session string) *Dispatcher {
	return &Dispatcher{
		session: session,
		queue:   serial.NewQueue(),
	}
}

// Subscribe registers l and returns a function removing it. Subscribing to a
// closed dispatcher is a no-op.
func (d *Dispatcher) Subscribe(l Listener) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || l == nil {
		return func() {}
	}

	d.nextID++
	id := d.nextID
	d.listeners = append(d.listeners, subscription{id: id, listener: l})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		for i, s := range d.listeners {
			if s.id == id {
				d.listeners = append(d.listeners[:i:i], d.listeners[i+1:]...)
				return
			}
		}
	}
}

// Emit stamps and enqueues an event. It never blocks on listeners.
func (d *Dispatcher) Emit(code Code, payload any) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.WithFields(log.Fields{"session": d.session, "code": code}).Debug("event after close dropped")
		return
	}
	d.seq++
	e := Event{Seq: d.seq, Session: d.session, Code: code, Payload: payload, At: time.Now()}
	// enqueue under the lock so sequence order equals delivery order
	d.queue.Execute(func() { d.deliver(e) })
	d.mu.Unlock()
}

// Close delivers everything already emitted, then drops all listeners.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.queue.Execute(func() {
		d.mu.Lock()
		d.listeners = nil
		d.mu.Unlock()
	})
	d.mu.Unlock()

	d.queue.Close()
}

// Done is closed once Close finished delivering.
func (d *Dispatcher) Done() <-chan struct{} {
	return d.queue.Done()
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.Lock()
	snapshot := append([]subscription(nil), d.listeners...)
	d.mu.Unlock()

	for _, s := range snapshot {
		d.invoke(s.listener, e)
	}
}

func (d *Dispatcher) invoke(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{"session": d.session, "code": e.Code, "panic": r}).Error("listener panicked")
		}
	}()
	l(e)
}
