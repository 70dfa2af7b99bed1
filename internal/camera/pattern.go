package camera

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"thermalview/internal/frame"
)

const (
	// DefaultWidth and DefaultHeight match the P2 Pro sensor resolution.
	DefaultWidth  = 256
	DefaultHeight = 192

	patternFPS = 30
)

// PatternSource is a synthetic thermal camera producing an animated
// interference pattern with a wandering hot spot. It stands in for real
// hardware in development and tests, pacing itself to roughly 30fps the way
// the sensor would.
type PatternSource struct {
	width  int
	height int

	mu     sync.Mutex
	open   bool
	seq    uint64
	lastAt time.Time
	rng    *rand.Rand
}

// NewPatternSource creates a pattern source at the given resolution.
// Non-positive dimensions fall back to the sensor defaults.
func NewPatternSource(width, height int) *PatternSource {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &PatternSource{
		width:  width,
		height: height,
		open:   true,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Read generates the next gray8 pattern frame, sleeping as needed to cap the
// rate near 30fps.
func (s *PatternSource) Read() (bool, *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false, nil
	}

	// Rate cap before generating, mirroring a blocking sensor read.
	if !s.lastAt.IsZero() {
		if elapsed := time.Since(s.lastAt); elapsed < time.Second/patternFPS {
			time.Sleep(time.Second/patternFPS - elapsed)
		}
	}
	now := time.Now()
	s.lastAt = now
	s.seq++

	data := make([]byte, s.width*s.height)
	t := float64(now.UnixNano()) / float64(time.Second)
	phase := math.Mod(t*2, 2*math.Pi)
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			v := math.Sin(float64(x)/32+phase)*128 + math.Cos(float64(y)/32-phase)*128
			v += s.rng.NormFloat64() * 5 // sensor noise
			data[y*s.width+x] = clampByte(v)
		}
	}
	s.drawHotSpot(data, t)

	return true, &frame.Frame{
		Width:     s.width,
		Height:    s.height,
		Format:    frame.Gray8,
		Data:      data,
		Seq:       s.seq,
		Timestamp: now,
	}
}

// Close stops the source; subsequent reads report no frame.
func (s *PatternSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// drawHotSpot paints a saturated disc orbiting the center, visible under any
// palette.
func (s *PatternSource) drawHotSpot(data []byte, t float64) {
	const radius = 10
	cx := s.width/2 + int(math.Sin(t)*50)
	cy := s.height/2 + int(math.Cos(t)*30)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			x, y := cx+dx, cy+dy
			if x < 0 || x >= s.width || y < 0 || y >= s.height {
				continue
			}
			data[y*s.width+x] = 0xFF
		}
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
