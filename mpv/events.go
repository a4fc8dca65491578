package mpv

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/reelkit/reel/log"
)

// observed lists the properties whose changes the engine reacts to. Index+1 is the
// observer id sent to mpv.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"seeking",
	"seekable",
	"eof-reached",
	"paused-for-cache",
	"cache-buffering-state",
	"video-params",
	"demuxer-cache-state",
}

// listener keeps one connection open and receives every event and property change on it.
type listener struct {
	conn    net.Conn
	handle  func(ipcMessage)
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

func listen(socketPath string, handle func(ipcMessage)) (*listener, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("event listener connect: %w", err)
	}

	// observers belong to the connection that registered them
	for i, name := range observed {
		if err := writeCommand(conn, []any{"observe_property", i + 1, name}); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("observe %s: %w", name, err)
		}
	}

	l := &listener{conn: conn, handle: handle, done: make(chan struct{})}
	go l.readLoop()

	log.Debugf("mpv event listener started on %s", socketPath)
	return l, nil
}

func (l *listener) readLoop() {
	defer close(l.done)

	scanner := bufio.NewScanner(l.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		msg, err := decodeMessage(scanner.Bytes())
		if err != nil {
			log.Debugf("mpv: skipping line: %s", err)
			continue
		}
		if msg.Event == "" {
			// reply to one of our observe_property requests
			continue
		}
		l.handle(msg)
	}

	l.mu.Lock()
	stopped := l.stopped
	l.mu.Unlock()
	if err := scanner.Err(); err != nil && !stopped && !errors.Is(err, net.ErrClosed) {
		log.Warnf("mpv event listener read error: %v", err)
	}
}

func (l *listener) stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.mu.Unlock()

	_ = l.conn.Close()
	<-l.done
}
