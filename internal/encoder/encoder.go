// Package encoder turns frames into compressed bytes for capture storage and
// the remote view stream.
package encoder

import "thermalview/internal/frame"

// Encoder encodes a frame into a self-contained byte blob.
type Encoder interface {
	Encode(f *frame.Frame) ([]byte, error)
	SetQuality(quality int)
}
