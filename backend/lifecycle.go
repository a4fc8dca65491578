// Package backend tracks the process-wide, one-time setup an engine needs before it can
// play anything, and holds work submitted before that setup finished.
package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/reelkit/reel/log"
)

// ErrTornDown is returned by Run after Teardown.
var ErrTornDown = errors.New("backend torn down")

// Status of a Lifecycle.
type Status int

const (
	Uninitialized Status = iota
	Initializing
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Task is pending work. It receives the init error, nil when setup succeeded.
type Task func(err error)

// Lifecycle runs one-time setup and drains the tasks queued during it exactly once.
// The zero value is ready to use.
type Lifecycle struct {
	Name string

	mu      sync.Mutex
	status  Status
	err     error
	pending []Task
}

// Status returns the current status.
func (l *Lifecycle) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// Init runs setup unless it already ran or is running. Tasks queued before or
// during setup run afterwards, in order, on the calling goroutine.
func (l *Lifecycle) Init(setup func() error) error {
	l.mu.Lock()
	switch l.status {
	case Ready:
		l.mu.Unlock()
		return nil
	case Initializing:
		l.mu.Unlock()
		return nil
	case Failed:
		err := l.err
		l.mu.Unlock()
		return err
	}
	l.status = Initializing
	l.mu.Unlock()

	err := setup()
	if err != nil {
		err = fmt.Errorf("%s init: %w", l.Name, err)
	}

	l.mu.Lock()
	if err != nil {
		l.status, l.err = Failed, err
	} else {
		l.status = Ready
	}
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	log.WithFields(log.Fields{"backend": l.Name, "pending": len(pending), "ok": err == nil}).Info("backend initialized")

	for _, task := range pending {
		task(err)
	}
	return err
}

// Run executes task now if setup finished, otherwise queues it for the end of Init.
func (l *Lifecycle) Run(task Task) {
	l.mu.Lock()
	switch l.status {
	case Ready, Failed:
		err := l.err
		l.mu.Unlock()
		task(err)
	default:
		l.pending = append(l.pending, task)
		l.mu.Unlock()
	}
}

// Teardown returns to Uninitialized so Init can run again. Tasks still queued are
// completed with ErrTornDown.
func (l *Lifecycle) Teardown() {
	l.mu.Lock()
	pending := l.pending
	l.pending = nil
	l.status, l.err = Uninitialized, nil
	l.mu.Unlock()

	for _, task := range pending {
		task(ErrTornDown)
	}
}
