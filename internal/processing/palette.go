// Package processing holds the colormap and temperature math applied to raw
// thermal frames before display. Expanding grayscale to 3-channel color here
// is what makes a frame eligible for the rendering bridge.
package processing

import (
	"errors"
	"fmt"
	"sort"

	"thermalview/internal/frame"
)

// ErrUnknownPalette is returned when a palette name has no registered LUT.
var ErrUnknownPalette = errors.New("processing: unknown palette")

// Palette maps each 8-bit intensity to an RGB color through a precomputed
// lookup table.
type Palette struct {
	name string
	lut  [256][3]byte
}

// control points for each palette, interpolated linearly across 0..255.
var paletteStops = map[string][]stop{
	"iron": {
		{0, 0, 0, 0},
		{48, 32, 0, 64},
		{112, 160, 16, 96},
		{160, 224, 80, 16},
		{208, 255, 176, 0},
		{255, 255, 255, 224},
	},
	"rainbow": {
		{0, 0, 0, 128},
		{64, 0, 128, 255},
		{128, 0, 255, 128},
		{192, 255, 255, 0},
		{255, 255, 0, 0},
	},
	"gray": {
		{0, 0, 0, 0},
		{255, 255, 255, 255},
	},
}

type stop struct {
	at      int
	r, g, b byte
}

// Lookup returns the named palette, building its LUT on first use.
func Lookup(name string) (*Palette, error) {
	stops, ok := paletteStops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownPalette, name, Names())
	}
	p := &Palette{name: name}
	for i := 0; i < 256; i++ {
		p.lut[i] = interpolate(stops, i)
	}
	return p, nil
}

// Names lists the registered palette names in stable order.
func Names() []string {
	names := make([]string, 0, len(paletteStops))
	for name := range paletteStops {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Name returns the palette's registered name.
func (p *Palette) Name() string { return p.name }

// Apply expands a gray8 frame into a new rgb24 frame through the LUT. The
// input frame is not modified; sequence and timestamp carry over.
func (p *Palette) Apply(f *frame.Frame) (*frame.Frame, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if f.Format != frame.Gray8 {
		return nil, fmt.Errorf("processing: palette input must be %s, got %s", frame.Gray8, f.Format)
	}
	out := &frame.Frame{
		Width:     f.Width,
		Height:    f.Height,
		Format:    frame.RGB24,
		Data:      make([]byte, f.Width*f.Height*3),
		Seq:       f.Seq,
		Timestamp: f.Timestamp,
	}
	for i, v := range f.Data {
		c := p.lut[v]
		out.Data[i*3+0] = c[0]
		out.Data[i*3+1] = c[1]
		out.Data[i*3+2] = c[2]
	}
	return out, nil
}

func interpolate(stops []stop, at int) [3]byte {
	if at <= stops[0].at {
		return [3]byte{stops[0].r, stops[0].g, stops[0].b}
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if at > hi.at {
			continue
		}
		t := float64(at-lo.at) / float64(hi.at-lo.at)
		return [3]byte{
			lerp(lo.r, hi.r, t),
			lerp(lo.g, hi.g, t),
			lerp(lo.b, hi.b, t),
		}
	}
	last := stops[len(stops)-1]
	return [3]byte{last.r, last.g, last.b}
}

func lerp(a, b byte, t float64) byte {
	return byte(float64(a) + (float64(b)-float64(a))*t + 0.5)
}
