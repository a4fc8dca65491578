package adaptertest

import (
	"sync"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/media"
)

// Farm is an adapter.Factory that keeps every Fake it created.
type Farm struct {
	// Configure, when set, adjusts each new Fake before it is handed out.
	Configure func(*Fake)

	mu    sync.Mutex
	fakes []*Fake
}

// Factory creates a Fake for src.
func (f *Farm) Factory(_ *media.Source) (adapter.Adapter, error) {
	fake := New()
	if f.Configure != nil {
		f.Configure(fake)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.fakes = append(f.fakes, fake)
	return fake, nil
}

// Created returns how many fakes were handed out.
func (f *Farm) Created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fakes)
}

// Last returns the most recently created fake, or nil.
func (f *Farm) Last() *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fakes) == 0 {
		return nil
	}
	return f.fakes[len(f.fakes)-1]
}
