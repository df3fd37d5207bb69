package serve

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type HandlerOptions struct {
	// MJPEG serves /mjpeg. Optional.
	MJPEG http.Handler
	// Gatherer serves /metrics. Optional.
	Gatherer prometheus.Gatherer
	// Do runs a func on the UI thread.
	Do           func(func())
	StatusPeriod time.Duration
}

// NewHandler builds the request log wrapped mux for the web endpoints.
func NewHandler(p Pipeline, opts HandlerOptions) http.Handler {
	if opts.StatusPeriod <= 0 {
		opts.StatusPeriod = time.Second
	}
	mux := http.NewServeMux()
	if opts.MJPEG != nil {
		mux.Handle("/mjpeg", opts.MJPEG)
	}
	mux.Handle("/status", &StatusServer{P: p})
	mux.Handle("/statusws", NewStatusUpdater(p, opts.StatusPeriod))
	mux.Handle("/dispatch/resume", &ResumeServer{P: p, Do: opts.Do})
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return handlers.CombinedLoggingHandler(log.StandardLogger().WriterLevel(log.DebugLevel), mux)
}
