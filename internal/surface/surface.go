// Package surface bridges decoded frames onto the native 2D drawing layer.
// A ManagedSurface jointly owns a pixel buffer and the drawing handle built
// over it, so the buffer can never be released while a draw still uses it
// and the pair is released exactly once.
package surface

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// ManagedSurface owns one RGBA pixel buffer together with the native image
// handle constructed over it. The handle is never handed out without its
// buffer, and Release tears both down together. A ManagedSurface belongs to
// the render-side goroutine; it carries no locking of its own because native
// drawing handles are not safe to share across goroutines.
type ManagedSurface struct {
	pix    []byte // RGBA, stride width*4, no padding
	width  int
	height int

	handle  *ebiten.Image
	release sync.Once
	dead    bool
}

// Width returns the surface width in pixels.
func (s *ManagedSurface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *ManagedSurface) Height() int { return s.height }

// Handle returns the native image for drawing, creating it on first use.
// It returns nil once the surface has been released.
func (s *ManagedSurface) Handle() *ebiten.Image {
	if s.dead {
		return nil
	}
	if s.handle == nil {
		s.handle = ebiten.NewImage(s.width, s.height)
		s.handle.WritePixels(s.pix)
	}
	return s.handle
}

// Release frees the native handle and drops the pixel buffer. It is
// idempotent; the surface must not be drawn after the first call.
func (s *ManagedSurface) Release() {
	s.release.Do(func() {
		s.dead = true
		if s.handle != nil {
			s.handle.Deallocate()
			s.handle = nil
		}
		s.pix = nil
	})
}
