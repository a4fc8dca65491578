package cmd

import (
	"sync"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/controller"
	"github.com/reelkit/reel/media"
)

// window is mpv's own window: handle 0 lets the engine open one.
type window struct{}

func (window) Handle() int64    { return 0 }
func (window) Size() media.Size { return media.Size{} }

// windowProvider hands out the engine-owned window. It is available from the start
// and goes away only when the CLI tears it down.
type windowProvider struct {
	mu       sync.Mutex
	observer controller.SurfaceObserver
	display  adapter.Display
}

func newWindowProvider() *windowProvider {
	return &windowProvider{display: window{}}
}

func (w *windowProvider) Surface() adapter.Display {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.display
}

func (w *windowProvider) SetObserver(o controller.SurfaceObserver) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observer = o
}

// destroy reports the window gone to the observer, if any.
func (w *windowProvider) destroy() {
	w.mu.Lock()
	observer := w.observer
	w.display = nil
	w.mu.Unlock()

	if observer != nil {
		observer.SurfaceDestroyed()
	}
}
