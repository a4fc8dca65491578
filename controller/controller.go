// Package controller sequences surface readiness, source binding and a pooled session
// for one view.
package controller

import (
	"errors"
	"fmt"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/reelkit/reel/pool"
	"github.com/reelkit/reel/serial"
	"github.com/reelkit/reel/session"
)

// Controller binds at most one (surface provider, source, session) triple.
type Controller struct {
	pool    *pool.Pool
	factory pool.Factory
	queue   *serial.Queue
	unwatch func()

	// owned by queue
	provider SurfaceProvider
	surface  adapter.Display
	src      *media.Source
	session  *session.Session
	deferred bool
	closed   bool
}

var _ SurfaceObserver = (*Controller)(nil)

// New returns a controller acquiring sessions from p, creating them with factory.
func New(p *pool.Pool, factory pool.Factory) *Controller {
	c := &Controller{
		pool:    p,
		factory: factory,
		queue:   serial.NewQueue(),
	}
	c.unwatch = p.Watch(func() {
		c.queue.Execute(c.reevaluate)
	})
	return c
}

// BindSurfaceProvider replaces the surface provider. Nil unbinds.
func (c *Controller) BindSurfaceProvider(sp SurfaceProvider) {
	var previous SurfaceProvider
	c.queue.Call(func() {
		previous = c.provider
		c.provider = sp
	})

	if previous != nil && previous != sp {
		previous.SetObserver(nil)
	}

	var surface adapter.Display
	if sp != nil {
		surface = sp.Surface()
		sp.SetObserver(c)
	}
	c.queue.Call(func() { c.setSurface(surface) })
}

// Bind points the controller at src. A different source than the bound one releases
// the current session and acquires another.
func (c *Controller) Bind(src *media.Source) error {
	if src == nil {
		return errors.New("controller: nil source")
	}

	var err error
	c.queue.Call(func() {
		if c.closed {
			err = errors.New("controller: closed")
			return
		}
		if c.src != nil && c.src.UniqueID() == src.UniqueID() {
			return
		}

		if c.session != nil {
			log.WithFields(c.fields()).Info("rebinding, releasing session")
			c.pool.Recycle(c.session)
			c.session = nil
		}
		c.src = src
		err = c.acquire()
		if err == nil {
			c.reevaluate()
		}
	})
	return err
}

// StartPlayback starts as soon as both a surface and a source are there. Called
// earlier, it arms a one-shot start fired by the next surface or pool change that
// makes playback possible. A session that failed is replaced.
func (c *Controller) StartPlayback() error {
	var err error
	c.queue.Call(func() {
		if c.closed {
			err = errors.New("controller: closed")
			return
		}

		if c.session != nil {
			switch c.session.State() {
			case session.Error:
				log.WithFields(c.fields()).Info("replacing failed session")
				c.pool.Recycle(c.session)
				c.session = nil
			case session.Released:
				c.session = nil
			}
		}
		if c.session == nil && c.src != nil {
			if err = c.acquire(); err != nil {
				return
			}
		}

		c.deferred = true
		c.reevaluate()
	})
	return err
}

// StopPlayback ends this view's interest in the session: it is released, not just stopped.
func (c *Controller) StopPlayback() {
	c.queue.Call(c.stopPlayback)
}

// Session returns the bound session, or nil.
func (c *Controller) Session() (s *session.Session) {
	c.queue.Call(func() { s = c.session })
	return
}

// Source returns the bound source, or nil.
func (c *Controller) Source() (src *media.Source) {
	c.queue.Call(func() { src = c.src })
	return
}

// Close releases the session and detaches from the pool and provider.
func (c *Controller) Close() {
	var provider SurfaceProvider
	c.queue.Call(func() {
		c.stopPlayback()
		c.closed = true
		provider = c.provider
		c.provider = nil
	})
	if provider != nil {
		provider.SetObserver(nil)
	}
	c.unwatch()
	c.queue.Close()
	<-c.queue.Done()
}

// SurfaceObserver

func (c *Controller) SurfaceAvailable(d adapter.Display) {
	c.queue.Call(func() { c.setSurface(d) })
}

func (c *Controller) SurfaceSizeChanged(d adapter.Display, size media.Size) {
	c.queue.Call(func() {
		log.WithFields(c.fields()).Debugf("surface resized to %s", size)
		c.setSurface(d)
	})
}

func (c *Controller) SurfaceDestroyed() {
	c.queue.Call(func() { c.setSurface(nil) })
}

func (c *Controller) setSurface(d adapter.Display) {
	c.surface = d
	if c.session != nil {
		if err := c.session.SetDisplay(d); err != nil {
			log.WithFields(c.fields()).Warnf("set display: %s", err)
		}
	}
	c.reevaluate()
}

func (c *Controller) acquire() error {
	s, err := c.pool.Acquire(c.src, c.factory)
	if err != nil {
		return fmt.Errorf("acquire session for %s: %w", c.src, err)
	}
	c.session = s
	if c.surface != nil {
		if err := s.SetDisplay(c.surface); err != nil {
			log.WithFields(c.fields()).Warnf("set display: %s", err)
		}
	}
	return nil
}

func (c *Controller) stopPlayback() {
	c.deferred = false
	if c.session == nil {
		return
	}
	c.pool.Recycle(c.session)
	c.session = nil
}

// reevaluate fires the deferred start once everything is in place.
func (c *Controller) reevaluate() {
	if !c.deferred || c.closed {
		return
	}
	if c.surface == nil || c.src == nil || c.session == nil {
		return
	}

	s := c.session
	switch s.State() {
	case session.Error:
		// retry is the caller's call
		c.deferred = false
		log.WithFields(c.fields()).Warn("deferred start dropped, session failed")
		return
	case session.Released:
		c.deferred = false
		c.session = nil
		return
	}

	c.deferred = false
	if err := c.start(s); err != nil {
		log.WithFields(c.fields()).Errorf("start playback: %s", err)
	}
}

func (c *Controller) start(s *session.Session) error {
	switch s.State() {
	case session.Idle, session.Stopped:
		if err := s.SetStartWhenPrepared(true); err != nil {
			return err
		}
		return s.Prepare(c.src)
	case session.Preparing:
		return s.SetStartWhenPrepared(true)
	case session.Started:
		return nil
	default:
		return s.Start()
	}
}

func (c *Controller) fields() log.Fields {
	f := log.Fields{}
	if c.src != nil {
		f["source"] = c.src.String()
	}
	if c.session != nil {
		f["session"] = c.session.ID()
	}
	return f
}
