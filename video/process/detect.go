package process

import (
	"fmt"
	"image"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"facecam/video/frame"
)

// CascadeDetector finds faces with an OpenCV cascade classifier.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	gray       gocv.Mat

	scaleFactor  float64
	minNeighbors int
	l            sync.Mutex
}

func NewCascadeDetector(path string, scaleFactor float64, minNeighbors int) (*CascadeDetector, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load cascade file %q", path)
	}
	log.Infof("Loaded face cascade %v", path)
	return &CascadeDetector{
		classifier:   classifier,
		gray:         gocv.NewMat(),
		scaleFactor:  scaleFactor,
		minNeighbors: minNeighbors,
	}, nil
}

// SetParams changes the detection parameters for subsequent frames.
func (d *CascadeDetector) SetParams(scaleFactor float64, minNeighbors int) {
	d.l.Lock()
	defer d.l.Unlock()
	if d.scaleFactor != scaleFactor || d.minNeighbors != minNeighbors {
		log.Infof("Face detection parameters now scale=%v neighbors=%d", scaleFactor, minNeighbors)
	}
	d.scaleFactor = scaleFactor
	d.minNeighbors = minNeighbors
}

// Detect returns the faces found in f in the classifier's own order.
func (d *CascadeDetector) Detect(f frame.Frame) ([]frame.BoundingBox, error) {
	if f.Empty() {
		return nil, nil
	}
	d.l.Lock()
	defer d.l.Unlock()

	start := time.Now()
	defer func() {
		log.Debugf("Face detection ran in %v", time.Since(start))
	}()

	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, f.Pix)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	code := gocv.ColorRGBToGray
	if f.Space == frame.BGR {
		code = gocv.ColorBGRToGray
	}
	gocv.CvtColor(mat, &d.gray, code)

	rects := d.classifier.DetectMultiScaleWithParams(d.gray, d.scaleFactor, d.minNeighbors, 0, image.Point{}, image.Point{})
	boxes := make([]frame.BoundingBox, 0, len(rects))
	for _, r := range rects {
		boxes = append(boxes, frame.FromRect(r))
	}
	return boxes, nil
}

func (d *CascadeDetector) Close() {
	d.l.Lock()
	defer d.l.Unlock()
	d.gray.Close()
	d.classifier.Close()
}
