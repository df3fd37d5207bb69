package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "facecam"

type Metrics struct {
	FramesCaptured prometheus.Counter
	FramesDropped  prometheus.Counter
	FacesDetected  prometheus.Counter
	DetectErrors   prometheus.Counter
	CaptureErrors  prometheus.Counter
	JobsDispatched prometheus.Counter
	EmptyPolls     prometheus.Counter
	QueueDepth     prometheus.Gauge
	DispatchIdle   prometheus.Gauge
	CaptureLatency prometheus.Histogram
}

// NewMetrics creates the pipeline metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	m := &Metrics{
		FramesCaptured: counter("frames_captured_total", "Frames read from the camera."),
		FramesDropped:  counter("frames_dropped_total", "Render jobs dropped because the hand-off queue was full."),
		FacesDetected:  counter("faces_detected_total", "Frames in which a face was found."),
		DetectErrors:   counter("detect_errors_total", "Detector failures treated as no detection."),
		CaptureErrors:  counter("capture_errors_total", "Camera read failures that stopped the capture loop."),
		JobsDispatched: counter("jobs_dispatched_total", "Render jobs applied to the panes."),
		EmptyPolls:     counter("empty_polls_total", "Dispatch ticks that found the queue empty."),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Render jobs waiting in the hand-off queue.",
		}),
		DispatchIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatch_idle",
			Help:      "1 when the dispatch loop gave up polling after too many empty attempts.",
		}),
		CaptureLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_iteration_seconds",
			Help:      "Time spent converting and detecting per frame.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.FramesCaptured, m.FramesDropped, m.FacesDetected, m.DetectErrors,
			m.CaptureErrors, m.JobsDispatched, m.EmptyPolls, m.QueueDepth,
			m.DispatchIdle, m.CaptureLatency,
		)
	}
	return m
}
