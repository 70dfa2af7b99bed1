// Package telemetry exposes the pacer's frame metrics to Prometheus. The
// collector reads a consistent snapshot at scrape time, so scraping never
// perturbs pacing state.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thermalview/internal/pacer"
)

// Telemetry owns the process metrics registry.
type Telemetry struct {
	reg *prometheus.Registry
}

// New builds a registry with the pacer collector registered. viewerCount may
// be nil when no remote view server is running.
func New(p *pacer.Pacer, viewerCount func() int) *Telemetry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(newPacerCollector(p, viewerCount))
	return &Telemetry{reg: reg}
}

// Handler returns the scrape endpoint handler.
func (t *Telemetry) Handler() http.Handler {
	return promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{})
}

// Registry exposes the registry for additional collectors.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.reg
}

type pacerCollector struct {
	pacer       *pacer.Pacer
	viewerCount func() int

	fps         *prometheus.Desc
	frameTime   *prometheus.Desc
	dropped     *prometheus.Desc
	bufferUsage *prometheus.Desc
	viewers     *prometheus.Desc
}

func newPacerCollector(p *pacer.Pacer, viewerCount func() int) *pacerCollector {
	return &pacerCollector{
		pacer:       p,
		viewerCount: viewerCount,
		fps: prometheus.NewDesc("thermalview_fps",
			"Rolling frames-per-second estimate of accepted frames.", nil, nil),
		frameTime: prometheus.NewDesc("thermalview_frame_time_seconds",
			"Interval between the two most recent frame arrivals.", nil, nil),
		dropped: prometheus.NewDesc("thermalview_dropped_frames_total",
			"Frames dropped by the admission policy since the last reset.", nil, nil),
		bufferUsage: prometheus.NewDesc("thermalview_buffer_usage",
			"Frame ring occupancy as a fraction of capacity.", nil, nil),
		viewers: prometheus.NewDesc("thermalview_stream_viewers",
			"Connected remote view clients.", nil, nil),
	}
}

func (c *pacerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fps
	ch <- c.frameTime
	ch <- c.dropped
	ch <- c.bufferUsage
	if c.viewerCount != nil {
		ch <- c.viewers
	}
}

func (c *pacerCollector) Collect(ch chan<- prometheus.Metric) {
	m := c.pacer.Metrics()
	ch <- prometheus.MustNewConstMetric(c.fps, prometheus.GaugeValue, m.FPS)
	ch <- prometheus.MustNewConstMetric(c.frameTime, prometheus.GaugeValue, m.FrameTime)
	ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(m.DroppedFrames))
	ch <- prometheus.MustNewConstMetric(c.bufferUsage, prometheus.GaugeValue, m.BufferUsage)
	if c.viewerCount != nil {
		ch <- prometheus.MustNewConstMetric(c.viewers, prometheus.GaugeValue, float64(c.viewerCount()))
	}
}
