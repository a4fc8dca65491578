package session

import (
	"sync"

	"github.com/google/uuid"
)

// registry resolves live sessions by id. Engine callbacks hold an id rather than a
// pointer, so a released session is unreachable from them.
var registry = &liveness{sessions: make(map[uuid.UUID]*Session)}

type liveness struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func (l *liveness) add(s *Session) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[s.id] = s
}

func (l *liveness) remove(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sessions, id)
}

func (l *liveness) lookup(id uuid.UUID) (*Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.sessions[id]
	return s, ok
}

// Live returns how many sessions have not been released.
func Live() int {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	return len(registry.sessions)
}
