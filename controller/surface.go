package controller

import (
	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/media"
)

// SurfaceObserver hears about the lifecycle of a render surface. A nil display
// means the surface is gone.
type SurfaceObserver interface {
	SurfaceAvailable(d adapter.Display)
	SurfaceSizeChanged(d adapter.Display, size media.Size)
	SurfaceDestroyed()
}

// SurfaceProvider owns a render surface.
type SurfaceProvider interface {
	// Surface returns the current display, or nil.
	Surface() adapter.Display

	// SetObserver installs o; nil removes it. Providers must not call o from inside SetObserver.
	SetObserver(o SurfaceObserver)
}
