package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"thermalview/internal/frame"
)

// ErrInvalidFrame is returned by Wrap for frames that cannot back a surface:
// nil, empty, malformed geometry, or not 3-channel.
var ErrInvalidFrame = errors.New("surface: invalid frame")

// maxGeometry bounds every computed blit coordinate. Anything beyond it is
// treated as degenerate geometry and skipped.
const maxGeometry = 1e6

// Canvas is the drawing-context contract consumed by Blit. Implementations
// wrap a concrete backend (the ebiten screen in production, a recorder in
// tests). Paint reports backend draw failures; every other call only mutates
// context state.
type Canvas interface {
	Save()
	Restore()
	Translate(x, y float64)
	Scale(sx, sy float64)
	SetSource(s *ManagedSurface, x, y float64)
	Paint() error
}

// Bridge converts accepted frames into surfaces and blits them, scaled and
// centered, into a destination canvas. It holds no mutable state, so one
// bridge may serve every draw tick.
type Bridge struct {
	log zerolog.Logger
}

// NewBridge creates a bridge that logs recoverable draw failures to log.
func NewBridge(log zerolog.Logger) *Bridge {
	return &Bridge{log: log}
}

// Wrap copies the frame's pixels into a fresh RGBA buffer (alpha forced to
// 255) and returns a surface owning that buffer. The source must already be
// 3-channel; palette expansion of grayscale input is the producer's job.
func (b *Bridge) Wrap(f *frame.Frame) (*ManagedSurface, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrInvalidFrame)
	}
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidFrame)
	}
	if f.Format != frame.RGB24 {
		return nil, fmt.Errorf("%w: format %s, need %s", ErrInvalidFrame, f.Format, frame.RGB24)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}

	w, h := f.Width, f.Height
	pix := make([]byte, w*h*4)
	for p := 0; p < w*h; p++ {
		src := p * 3
		dst := p * 4
		pix[dst+0] = f.Data[src+0]
		pix[dst+1] = f.Data[src+1]
		pix[dst+2] = f.Data[src+2]
		pix[dst+3] = 0xFF
	}
	return &ManagedSurface{pix: pix, width: w, height: h}, nil
}

// Blit paints the surface into a target of the given size, scaled uniformly
// to fit and centered. Degenerate geometry of any kind is a silent no-op:
// window sizes pass through transient zero and non-finite states during
// resize, and the render loop must survive all of them. The context save and
// restore bracket every path, including a failed paint.
func (b *Bridge) Blit(c Canvas, s *ManagedSurface, targetWidth, targetHeight float64) {
	if c == nil || s == nil || s.dead {
		return
	}
	if !finitePositive(targetWidth) || !finitePositive(targetHeight) {
		return
	}
	sw, sh := float64(s.width), float64(s.height)
	if sw <= 0 || sh <= 0 {
		return
	}

	scale := math.Min(targetWidth/sw, targetHeight/sh)
	if !finitePositive(scale) {
		return
	}
	newW := math.Floor(sw * scale)
	newH := math.Floor(sh * scale)
	x := math.Floor((targetWidth - newW) / 2)
	y := math.Floor((targetHeight - newH) / 2)
	if outOfBounds(newW) || outOfBounds(newH) || outOfBounds(x) || outOfBounds(y) || outOfBounds(scale) {
		return
	}

	c.Save()
	defer c.Restore()
	c.Translate(x, y)
	c.Scale(scale, scale)
	c.SetSource(s, 0, 0)
	if err := c.Paint(); err != nil {
		b.log.Warn().Err(err).Msg("draw failed, frame skipped")
	}
}

func finitePositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func outOfBounds(v float64) bool {
	return math.Abs(v) > maxGeometry
}
