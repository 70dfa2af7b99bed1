package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"thermalview/internal/frame"
)

// PlaybackSource replays stored JPEG captures from a directory as a looping
// frame source. It serves as the input path on machines without a sensor
// attached.
type PlaybackSource struct {
	paths []string
	fps   int

	mu     sync.Mutex
	open   bool
	next   int
	seq    uint64
	lastAt time.Time
}

// NewPlaybackSource scans dir for *.jpg captures. The files are replayed in
// name order (capture names sort chronologically) at the given rate.
func NewPlaybackSource(dir string, fps int) (*PlaybackSource, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("camera: scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("camera: no captures in %s", dir)
	}
	sort.Strings(paths)
	if fps <= 0 {
		fps = patternFPS
	}
	return &PlaybackSource{paths: paths, fps: fps, open: true}, nil
}

// Read decodes the next capture into an rgb24 frame, looping at the end and
// pacing to the configured rate. A capture that fails to decode is skipped,
// reported as no-frame-available.
func (s *PlaybackSource) Read() (bool, *frame.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return false, nil
	}

	if !s.lastAt.IsZero() {
		period := time.Second / time.Duration(s.fps)
		if elapsed := time.Since(s.lastAt); elapsed < period {
			time.Sleep(period - elapsed)
		}
	}
	s.lastAt = time.Now()

	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)

	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil
	}
	rgba, err := decodeJPEG(data)
	if err != nil {
		return false, nil
	}

	s.seq++
	return true, rgbaToFrame(rgba, s.seq)
}

// Close stops playback.
func (s *PlaybackSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func decodeJPEG(data []byte) (*image.RGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba, nil
}

func rgbaToFrame(img *image.RGBA, seq uint64) *frame.Frame {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(data[(y*w+x)*3:], row[x*4:x*4+3])
		}
	}
	return &frame.Frame{
		Width:     w,
		Height:    h,
		Format:    frame.RGB24,
		Data:      data,
		Seq:       seq,
		Timestamp: time.Now(),
	}
}
