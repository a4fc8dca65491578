// Package pool keeps live sessions keyed by media identity so a rebinding caller can
// pick up a warm session instead of building a new one.
package pool

import (
	"errors"
	"sync"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/event"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/session"
	"github.com/samber/lo"
)

// ErrNilFactory is returned by Acquire when it has to create a session but got no factory.
var ErrNilFactory = errors.New("pool: nil factory")

// Factory creates a session for src.
type Factory func(src *media.Source) (*session.Session, error)

// SessionFactory builds sessions on engines from newAdapter.
func SessionFactory(newAdapter adapter.Factory, opts session.Options) Factory {
	return func(src *media.Source) (*session.Session, error) {
		engine, err := newAdapter(src)
		if err != nil {
			return nil, err
		}
		return session.New(engine, opts)
	}
}

type entry struct {
	session     *session.Session
	unsubscribe func()
}

type watcher struct {
	id uint64
	fn func()
}

// Pool maps source unique ids to sessions. It never holds a released session, but
// it never releases one on its own either: callers recycle what they are done with.
type Pool struct {
	mu       sync.Mutex
	entries  map[string]*entry
	watchers []watcher
	nextID   uint64
}

func New() *Pool {
	return &Pool{entries: make(map[string]*entry)}
}

// Acquire returns the usable session for src, creating one with factory if needed.
// A session in Error or Released under the same key is dropped and replaced.
func (p *Pool) Acquire(src *media.Source, factory Factory) (*session.Session, error) {
	if src == nil {
		return nil, errors.New("pool: nil source")
	}
	id := src.UniqueID()

	p.mu.Lock()
	if e, ok := p.entries[id]; ok {
		if usable(e.session) {
			p.mu.Unlock()
			return e.session, nil
		}
		e.unsubscribe()
		delete(p.entries, id)
	}

	if factory == nil {
		p.mu.Unlock()
		return nil, ErrNilFactory
	}

	s, err := factory(src)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}

	e := &entry{session: s}
	e.unsubscribe = s.Subscribe(func(ev event.Event) {
		if ev.Code == event.StateReleased || ev.Code == event.StateError {
			p.evict(s)
		}
	})
	p.entries[id] = e
	p.mu.Unlock()

	log.WithFields(log.Fields{"source": src.String(), "session": s.ID()}).Debug("pool: session created")
	p.notify()
	return s, nil
}

// Get returns the pooled session for a unique id.
func (p *Pool) Get(id string) (*session.Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// Len returns how many sessions are pooled.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Recycle removes every entry holding s, whatever its key, then releases s.
func (p *Pool) Recycle(s *session.Session) {
	if s == nil {
		return
	}
	p.evict(s)
	if err := s.Release(); err != nil {
		log.WithFields(log.Fields{"session": s.ID()}).Warnf("pool: release: %s", err)
	}
}

// RecycleAll releases every pooled session.
func (p *Pool) RecycleAll() {
	p.mu.Lock()
	sessions := lo.Uniq(lo.MapToSlice(p.entries, func(_ string, e *entry) *session.Session { return e.session }))
	p.mu.Unlock()

	for _, s := range sessions {
		p.Recycle(s)
	}
}

// Watch calls fn after every change of the pool's contents. fn runs on whatever
// goroutine made the change and must not block.
func (p *Pool) Watch(fn func()) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID
	p.watchers = append(p.watchers, watcher{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.watchers = lo.Reject(p.watchers, func(w watcher, _ int) bool { return w.id == id })
	}
}

// evict drops every entry pointing at s.
func (p *Pool) evict(s *session.Session) {
	p.mu.Lock()
	removed := 0
	for id, e := range p.entries {
		if e.session == s {
			e.unsubscribe()
			delete(p.entries, id)
			removed++
		}
	}
	p.mu.Unlock()

	if removed > 0 {
		log.WithFields(log.Fields{"session": s.ID()}).Debug("pool: session evicted")
		p.notify()
	}
}

func (p *Pool) notify() {
	p.mu.Lock()
	watchers := append([]watcher(nil), p.watchers...)
	p.mu.Unlock()

	for _, w := range watchers {
		w.fn()
	}
}

func usable(s *session.Session) bool {
	switch s.State() {
	case session.Error, session.Released:
		return false
	default:
		return true
	}
}
