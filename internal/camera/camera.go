// Package camera provides frame sources for the viewer. A source yields one
// frame per Read call, or reports that no frame is available; it makes no
// synchronization promises beyond being safe to call repeatedly from one
// goroutine.
package camera

import "thermalview/internal/frame"

// Source is the contract the capture loop consumes.
type Source interface {
	// Read returns the next frame, or (false, nil) when the source has no
	// frame to offer (closed, exhausted, or faulted).
	Read() (bool, *frame.Frame)
	// Close releases the source. Read returns (false, nil) afterwards.
	Close()
}
