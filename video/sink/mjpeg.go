package sink

import (
	"fmt"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"facecam/video/frame"
)

// MJPEG multi-streaming, based on implementation by saljam:
// https://github.com/saljam/mjpeg/blob/master/stream.go

const boundaryWord = "MJPEGBOUNDARY"
const headerf = "\r\n" +
	"--" + boundaryWord + "\r\n" +
	"Content-Type: image/jpeg\r\n" +
	"Content-Length: %d\r\n" +
	"X-Timestamp: %d.%06d\r\n" +
	"\r\n"

type MJPEGServer struct {
	m map[string]*MJPEGStream

	lock sync.Mutex
}

func NewMJPEGServer() *MJPEGServer {
	return &MJPEGServer{
		m: make(map[string]*MJPEGStream),
	}
}

// NewStream registers a named stream, served at ?name=<name>.
func (s *MJPEGServer) NewStream(name string) *MJPEGStream {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.m[name]; ok {
		log.Panicf("A stream for %v already exists", name)
	}

	ms := &MJPEGStream{
		name:   name,
		m:      make(map[chan []byte]bool),
		in:     make(chan frame.Frame, 1),
		done:   make(chan bool),
		parent: s,
	}
	go ms.loop()

	s.m[name] = ms
	return ms
}

func (s *MJPEGServer) getStream(name string) *MJPEGStream {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.m[name]
}

// ServeHTTP implements http.Handler interface, serving MJPEG.
func (s *MJPEGServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := r.Form.Get("name")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	stream := s.getStream(name)
	if stream == nil {
		http.Error(w, "unknown stream", http.StatusNotFound)
		return
	}

	clog := log.WithField("addr", r.RemoteAddr)
	clog.Infof("MJPEG stream connected to %v", name)
	w.Header().Add("Content-Type", "multipart/x-mixed-replace;boundary="+boundaryWord)

	c := make(chan []byte)
	stream.lock.Lock()
	stream.m[c] = true
	stream.lock.Unlock()

loop:
	for {
		select {
		case b := <-c:
			if _, err := w.Write(b); err != nil {
				break loop
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			break loop
		case <-stream.done:
			break loop
		}
	}

	stream.lock.Lock()
	delete(stream.m, c)
	stream.lock.Unlock()
	clog.Infof("MJPEG stream disconnected from %v", name)
}

// MJPEGStream is one named pane mirror.
type MJPEGStream struct {
	name string
	m    map[chan []byte]bool
	in   chan frame.Frame
	done chan bool

	parent    *MJPEGServer
	lock      sync.Mutex
	closeOnce sync.Once
}

func (s *MJPEGStream) empty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.m) == 0
}

// Update queues f for encoding. If the encoder is still busy with the
// previous frame, f is skipped.
func (s *MJPEGStream) Update(f frame.Frame) {
	if s.empty() {
		// Nobody is listening; don't bother encoding.
		return
	}
	select {
	case s.in <- f:
	default:
	}
}

func (s *MJPEGStream) loop() {
	for {
		select {
		case <-s.done:
			return
		case f := <-s.in:
			s.put(f)
		}
	}
}

func (s *MJPEGStream) put(f frame.Frame) {
	jpeg, err := encode(f)
	if err != nil {
		log.Errorf("Error encoding to JPG for MJPEG stream %v: %v", s.name, err)
		return
	}

	ts := f.Time.UnixMicro()
	header := fmt.Sprintf(headerf, len(jpeg), ts/1e6, ts%1e6)
	// Listeners may still be writing the previous part.
	part := make([]byte, 0, len(header)+len(jpeg))
	part = append(part, header...)
	part = append(part, jpeg...)

	s.lock.Lock()
	defer s.lock.Unlock()
	for c := range s.m {
		select {
		case c <- part:
		default:
			// Skip listeners not ready for next frame.
		}
	}
}

func encode(f frame.Frame) ([]byte, error) {
	if f.Empty() {
		return nil, fmt.Errorf("empty frame")
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	// imencode expects BGR.
	src := mat
	if f.Space == frame.RGB {
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(mat, &bgr, gocv.ColorRGBToBGR)
		src = bgr
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, src)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}

// Close unregisters the stream and disconnects its viewers.
func (s *MJPEGStream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.parent.lock.Lock()
		defer s.parent.lock.Unlock()
		delete(s.parent.m, s.name)
	})
}
