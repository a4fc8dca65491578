// Package progress persists resume points keyed by media unique id.
package progress

import (
	"sync"
	"time"

	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/where"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// Store is the position persistence boundary consulted by sessions.
type Store interface {
	// Get returns the resume point for id, if any.
	Get(id string) (mo.Option[time.Duration], error)
	// Record checkpoints pos for id.
	Record(id string, pos time.Duration) error
	// Remove forgets id.
	Remove(id string) error
}

// Entry is one persisted resume point.
type Entry struct {
	Position  time.Duration `json:"position"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Nop stores nothing.
type Nop struct{}

func (Nop) Get(string) (mo.Option[time.Duration], error) { return mo.None[time.Duration](), nil }
func (Nop) Record(string, time.Duration) error           { return nil }
func (Nop) Remove(string) error                          { return nil }

// Memory keeps resume points in process.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Duration
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]time.Duration)}
}

func (m *Memory) Get(id string) (mo.Option[time.Duration], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pos, ok := m.entries[id]
	return mo.TupleToOption(pos, ok), nil
}

func (m *Memory) Record(id string, pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = pos
	return nil
}

func (m *Memory) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// FromConfig returns the disk-backed store, or Nop when progress.enabled is off.
func FromConfig() Store {
	if !viper.GetBool(key.ProgressEnabled) {
		return Nop{}
	}

	minPosition := time.Duration(viper.GetInt(key.ProgressMinPosition)) * time.Second
	return NewCacheStore(where.Progress(), minPosition)
}
