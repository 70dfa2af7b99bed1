// Package frame defines the pixel frame value exchanged between the camera,
// the pacer and the rendering bridge.
package frame

import (
	"fmt"
	"time"
)

// Format identifies the pixel layout of a frame's byte buffer.
type Format int

const (
	// Gray8 is single-channel 8-bit, one byte per pixel.
	Gray8 Format = iota
	// RGB24 is 3-channel 8-bit, three bytes per pixel, R first.
	RGB24
)

// Channels returns the number of bytes per pixel for the format.
func (f Format) Channels() int {
	if f == RGB24 {
		return 3
	}
	return 1
}

func (f Format) String() string {
	switch f {
	case Gray8:
		return "gray8"
	case RGB24:
		return "rgb24"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Frame is one decoded image sample. It is treated as immutable once built:
// producers hand it off and never write to Data again.
type Frame struct {
	Width     int
	Height    int
	Format    Format
	Data      []byte
	Seq       uint64
	Timestamp time.Time
}

// Validate reports whether the buffer length matches the declared geometry.
func (f *Frame) Validate() error {
	if f == nil {
		return fmt.Errorf("frame: nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame: invalid dimensions %dx%d", f.Width, f.Height)
	}
	want := f.Width * f.Height * f.Format.Channels()
	if len(f.Data) != want {
		return fmt.Errorf("frame: buffer length %d, want %d for %dx%d %s",
			len(f.Data), want, f.Width, f.Height, f.Format)
	}
	return nil
}
