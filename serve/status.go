// Package serve hosts the pipeline status, control and metrics endpoints.
package serve

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"facecam/pipeline"
)

// Pipeline is the part of a Lifecycle the endpoints need.
type Pipeline interface {
	Snapshot() pipeline.Snapshot
	ResumeDispatch()
}

type StatusServer struct {
	P Pipeline
}

func (s *StatusServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	js, err := json.Marshal(s.P.Snapshot())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}

// ResumeServer restarts an idle dispatch loop on POST.
type ResumeServer struct {
	P Pipeline
	// Do runs f on the UI thread.
	Do func(f func())
}

func (s *ResumeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	log.WithField("addr", r.RemoteAddr).Info("Dispatch resume requested")
	if s.Do != nil {
		s.Do(s.P.ResumeDispatch)
	} else {
		s.P.ResumeDispatch()
	}
	w.WriteHeader(http.StatusAccepted)
}
