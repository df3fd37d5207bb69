package serve

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	// Time allowed to write message to the client
	writeWait  = 10 * time.Second
	pingPeriod = 10 * time.Second
)

// StatusUpdater pushes a JSON snapshot to each websocket client every
// Period.
type StatusUpdater struct {
	P      Pipeline
	Period time.Duration

	upgrader websocket.Upgrader
}

func NewStatusUpdater(p Pipeline, period time.Duration) *StatusUpdater {
	return &StatusUpdater{
		P:      p,
		Period: period,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (m *StatusUpdater) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if _, ok := err.(websocket.HandshakeError); !ok {
			log.WithField("addr", r.RemoteAddr).Errorf("Websocket handshake failed for status stream: %v", err)
		}
		return
	}
	go m.serve(ws)
}

func (m *StatusUpdater) send(ws *websocket.Conn) error {
	ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteJSON(m.P.Snapshot())
}

func (m *StatusUpdater) serve(ws *websocket.Conn) {
	clog := log.WithField("addr", ws.RemoteAddr())
	clog.Info("connected to status socket")
	defer func() {
		ws.Close()
		clog.Info("disconnected from status socket")
	}()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()
	statusTicker := time.NewTicker(m.Period)
	defer statusTicker.Stop()

	// Incoming messages are ignored but must be read to process control
	// frames.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := m.send(ws); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case <-statusTicker.C:
			if err := m.send(ws); err != nil {
				return
			}
		case <-pingTicker.C:
			ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
