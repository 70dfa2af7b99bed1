// Package display runs the on-screen render loop: a capture goroutine feeds
// the pacer, and the game loop draws the newest accepted frame through the
// surface bridge.
package display

import "thermalview/internal/frame"

// Display renders frames until the window closes.
type Display interface {
	Run() error
}

// Publisher receives every frame the pacer accepts, for fan-out beyond the
// local window (the remote view stream).
type Publisher interface {
	Publish(f *frame.Frame)
}
