// Package serial runs tasks one at a time, in submission order, on a goroutine it owns.
// A Queue is the "owner thread" of whatever state only its tasks touch.
package serial

import "sync"

// Queue is an unbounded FIFO executor. Execute never blocks, so a task may safely
// enqueue follow-up work onto its own queue.
type Queue struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	wake   chan struct{}
	done   chan struct{}
}

// NewQueue starts the executing goroutine.
func NewQueue() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

// Execute enqueues task. It returns false once the queue is closed.
func (q *Queue) Execute(task func()) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs task on the queue and waits for it. It returns false without
// running task if the queue is closed. Call must not be used from a task of
// the same queue.
func (q *Queue) Call(task func()) bool {
	ran := make(chan struct{})
	if !q.Execute(func() {
		defer close(ran)
		task()
	}) {
		return false
	}

	select {
	case <-ran:
		return true
	case <-q.done:
		// the queue drains before done closes, so task either ran or never will
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Close stops accepting tasks. Tasks already enqueued still run.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Done is closed after Close once every enqueued task ran.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		batch := q.tasks
		q.tasks = nil
		closed := q.closed
		q.mu.Unlock()

		for _, task := range batch {
			task()
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
