// Package pacer decides, frame by frame, whether an incoming camera frame is
// forwarded to the display or dropped. It keeps a small ring of accepted
// frames and rolling timing metrics so a bursty producer can never push the
// view arbitrarily far behind real time.
package pacer

import (
	"sync"
	"time"

	"thermalview/internal/frame"
)

const (
	// DefaultCapacity is the ring buffer size used when none is given.
	DefaultCapacity = 5

	// fpsWindow is the number of inter-frame intervals kept for fps smoothing.
	fpsWindow = 30

	// stallThreshold is the inter-arrival gap beyond which a frame is dropped
	// outright: the producer or caller stalled, and accepting now only adds
	// latency (~2.4x a 30fps period).
	stallThreshold = 80 * time.Millisecond

	// pressureRatio is the ring occupancy fraction at which backpressure
	// dropping starts.
	pressureRatio = 0.9

	// decimateAboveFPS is the rolling fps estimate above which every other
	// frame is dropped.
	decimateAboveFPS = 35.0
)

// Metrics is a snapshot of the pacer's timing health.
type Metrics struct {
	// FPS is a rolling estimate over the last accepted intervals.
	FPS float64
	// FrameTime is the seconds between the two most recent arrivals.
	FrameTime float64
	// DroppedFrames counts policy skips since the last Clear.
	DroppedFrames uint64
	// BufferUsage is occupied ring slots over capacity, 0.0 to 1.0.
	BufferUsage float64
}

// Pacer applies the admission policy. All methods are safe for concurrent use
// from a capture goroutine and a render loop; a single mutex covers each call
// end to end and no call blocks on anything but that lock.
type Pacer struct {
	mu sync.Mutex

	ring     []*frame.Frame // fixed capacity, oldest at head
	capacity int
	head     int
	count    int

	samples  []float64 // rolling 1/frameTime values, newest last
	skipNext bool
	lastAt   time.Time
	metrics  Metrics

	now func() time.Time
}

// New creates a pacer with the given ring capacity. Non-positive capacity
// falls back to DefaultCapacity.
func New(capacity int) *Pacer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pacer{
		ring:     make([]*frame.Frame, capacity),
		capacity: capacity,
		samples:  make([]float64, 0, fpsWindow),
		now:      time.Now,
	}
}

// Accept runs one frame through the admission policy. It returns the frame
// itself when accepted, or nil when the policy dropped it, together with the
// metrics after this decision. Accept assumes the caller has already
// validated the frame.
func (p *Pacer) Accept(f *frame.Frame) (*frame.Frame, Metrics) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	frameTime := now.Sub(p.lastAt).Seconds()
	if p.lastAt.IsZero() {
		frameTime = 0
	}
	p.lastAt = now

	if frameTime > 0 {
		if len(p.samples) == fpsWindow {
			copy(p.samples, p.samples[1:])
			p.samples = p.samples[:fpsWindow-1]
		}
		p.samples = append(p.samples, 1.0/frameTime)
	}

	skip, toggle := decide(frameTime, p.count, p.capacity, meanOf(p.samples), p.skipNext)
	p.skipNext = toggle
	if skip {
		p.metrics.DroppedFrames++
		p.metrics.FrameTime = frameTime
		return nil, p.snapshotLocked()
	}

	p.pushLocked(f)
	p.metrics.FPS = meanOf(p.samples)
	p.metrics.FrameTime = frameTime
	p.metrics.BufferUsage = float64(p.count) / float64(p.capacity)
	return f, p.snapshotLocked()
}

// decide is the admission policy itself, kept free of pacer state so it can
// be exercised directly. Rules apply in order, first match wins:
// a stalled arrival is dropped, a near-full ring applies backpressure, and
// above the fps ceiling every other frame is dropped via the toggle.
func decide(frameTime float64, occupancy, capacity int, fpsEstimate float64, skipNext bool) (skip, nextToggle bool) {
	if frameTime > stallThreshold.Seconds() {
		return true, skipNext
	}
	if float64(occupancy) >= pressureRatio*float64(capacity) {
		return true, skipNext
	}
	if fpsEstimate > decimateAboveFPS {
		// Decimation by two, not a hard rate limit: bursts still get through
		// at half rate.
		return !skipNext, !skipNext
	}
	return false, skipNext
}

// Latest returns the most recently accepted frame without removing it, or
// nil when nothing has been accepted yet.
func (p *Pacer) Latest() *frame.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.count == 0 {
		return nil
	}
	return p.ring[(p.head+p.count-1)%p.capacity]
}

// Clear empties the ring, resets the fps window and all metrics, and restarts
// the stall timer as if the pacer had just been created.
func (p *Pacer) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.ring {
		p.ring[i] = nil
	}
	p.head = 0
	p.count = 0
	p.samples = p.samples[:0]
	p.skipNext = false
	p.metrics = Metrics{}
	p.lastAt = p.now()
}

// Metrics returns a consistent snapshot, recomputing buffer usage from the
// current occupancy. It never mutates pacing state.
func (p *Pacer) Metrics() Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Capacity returns the fixed ring size.
func (p *Pacer) Capacity() int {
	return p.capacity
}

func (p *Pacer) snapshotLocked() Metrics {
	m := p.metrics
	m.BufferUsage = float64(p.count) / float64(p.capacity)
	return m
}

// pushLocked appends to the ring, silently evicting the oldest frame when
// full. Eviction is not a drop: the evicted frame was accepted, its turn has
// simply passed.
func (p *Pacer) pushLocked(f *frame.Frame) {
	if p.count == p.capacity {
		p.ring[p.head] = f
		p.head = (p.head + 1) % p.capacity
		return
	}
	p.ring[(p.head+p.count)%p.capacity] = f
	p.count++
}

func meanOf(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s
	}
	return sum / float64(len(samples))
}
