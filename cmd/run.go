package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"facecam/config"
	"facecam/pipeline"
	"facecam/serve"
	"facecam/ui"
	"facecam/video/process"
	"facecam/video/sink"
	"facecam/video/source"
)

type app struct {
	c        *config.Config
	src      *source.VideoCapture
	det      *process.CascadeDetector
	reg      *prometheus.Registry
	mjpeg    *sink.MJPEGServer
	webcamMS *sink.MJPEGStream
	faceMS   *sink.MJPEGStream
}

func run(ctx context.Context, c *config.Config) error {
	setLevel(c.LogLevel)

	src, err := source.NewVideoCapture(c.Source, c.FrameWidth, c.FrameHeight)
	if err != nil {
		return fmt.Errorf("failed to open source %q: %w", c.Source, err)
	}
	det, err := process.NewCascadeDetector(c.CascadePath, c.ScaleFactor, c.MinNeighbors)
	if err != nil {
		src.Close()
		return err
	}
	// The capture goroutine is joined before run returns.
	defer det.Close()

	config.OnReload(func(n *config.Config) {
		setLevel(n.LogLevel)
		det.SetParams(n.ScaleFactor, n.MinNeighbors)
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	mjpeg := sink.NewMJPEGServer()
	a := &app{
		c:        c,
		src:      src,
		det:      det,
		reg:      reg,
		mjpeg:    mjpeg,
		webcamMS: mjpeg.NewStream("webcam"),
		faceMS:   mjpeg.NewStream("face"),
	}
	defer a.webcamMS.Close()
	defer a.faceMS.Close()

	if c.Headless {
		return a.runHeadless(ctx)
	}
	return a.runWindow(ctx)
}

func (a *app) options() pipeline.Options {
	return pipeline.Options{
		QueueCapacity: a.c.QueueCapacity,
		Capture: pipeline.CaptureOptions{
			Convert:  process.ToDisplay,
			CropMode: a.c.Crop(),
		},
		Dispatch: pipeline.DispatchOptions{
			BusyDelay:        a.c.BusyDelay(),
			IdleDelay:        a.c.IdleDelay(),
			MaxEmptyAttempts: a.c.MaxEmptyAttempts,
		},
		Metrics: pipeline.NewMetrics(a.reg),
	}
}

// serveHTTP starts the web endpoints. The returned server is nil when
// disabled.
func (a *app) serveHTTP(l *pipeline.Lifecycle, do func(func())) *http.Server {
	if a.c.ListenAddr == "" {
		return nil
	}
	srv := &http.Server{
		Addr: a.c.ListenAddr,
		Handler: serve.NewHandler(l, serve.HandlerOptions{
			MJPEG:    a.mjpeg,
			Gatherer: a.reg,
			Do:       do,
		}),
	}
	go func() {
		log.Infof("Hosting web endpoints on %v", a.c.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Web server failed: %v", err)
		}
	}()
	return srv
}

// watch logs a capture failure and runs closeFn once ctx is done.
func watch(ctx context.Context, l *pipeline.Lifecycle, closeFn func()) {
	for {
		select {
		case err := <-l.Errors():
			log.Warnf("Panes will keep showing their last frame: %v", err)
		case <-ctx.Done():
			log.Info("Caught signal, shutting down")
			closeFn()
			return
		}
	}
}

func (a *app) runHeadless(ctx context.Context) error {
	loop := pipeline.NewEventLoop()
	l := pipeline.New(pipeline.Components{
		Source:    a.src,
		Detector:  a.det,
		Scheduler: loop,
		Webcam:    a.webcamMS,
		Face:      a.faceMS,
		Teardown:  loop.Stop,
	}, a.options())

	if srv := a.serveHTTP(l, loop.Do); srv != nil {
		defer srv.Close()
	}

	closeErr := make(chan error, 1)
	go watch(ctx, l, func() {
		loop.Do(func() { closeErr <- l.Close() })
	})
	if err := l.Start(); err != nil {
		return err
	}
	log.WithField("session", l.Session).Info("Running headless")
	loop.Run()
	return <-closeErr
}

func (a *app) runWindow(ctx context.Context) error {
	win := ui.NewWindow(a.c.PaneWidth, a.c.PaneHeight)
	l := pipeline.New(pipeline.Components{
		Source:    a.src,
		Detector:  a.det,
		Scheduler: ui.Scheduler{},
		Webcam:    pipeline.Slots(win.Webcam, a.webcamMS),
		Face:      pipeline.Slots(win.Face, a.faceMS),
		Teardown:  win.Teardown,
	}, a.options())

	if srv := a.serveHTTP(l, win.Do); srv != nil {
		defer srv.Close()
	}

	closeFn := func() {
		if err := l.Close(); err != nil {
			log.Warnf("Closed after capture failure: %v", err)
		}
	}
	win.OnClose(closeFn)
	go watch(ctx, l, func() { win.Do(closeFn) })

	if err := l.Start(); err != nil {
		return err
	}
	win.ShowAndRun()
	// Quitting from the app menu skips the close intercept.
	return l.Close()
}
