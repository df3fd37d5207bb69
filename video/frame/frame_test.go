package frame

import (
	"image"
	"testing"
)

// gradient builds a BGR frame whose pixel (x, y) holds (x, y, 7).
func gradient(w, h int) Frame {
	pix := make([]byte, 0, w*h*Channels)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix = append(pix, byte(x), byte(y), 7)
		}
	}
	f, err := New(pix, w, h, BGR)
	if err != nil {
		panic(err)
	}
	return f
}

func TestNewRejectsShortBuffer(t *testing.T) {
	if _, err := New(make([]byte, 5), 2, 2, BGR); err == nil {
		t.Error("expected error for short buffer")
	}
	if _, err := New(nil, -1, 2, BGR); err == nil {
		t.Error("expected error for negative width")
	}
}

func TestToRGB(t *testing.T) {
	f := gradient(2, 1)
	rgb := ToRGB(f)
	if rgb.Space != RGB {
		t.Fatalf("space = %v, want RGB", rgb.Space)
	}
	if r, g, b := rgb.At(1, 0); r != 7 || g != 0 || b != 1 {
		t.Errorf("pixel (1,0) = %d,%d,%d, want 7,0,1", r, g, b)
	}
	// Source must be untouched.
	if b, _, _ := f.At(1, 0); b != 1 {
		t.Errorf("source frame modified")
	}
	if again := ToRGB(rgb); &again.Pix[0] != &rgb.Pix[0] {
		t.Errorf("RGB frame was copied")
	}
}

func TestImage(t *testing.T) {
	f := gradient(3, 2)
	img := f.Image()
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	c := img.RGBAAt(2, 1)
	if c.R != 7 || c.G != 1 || c.B != 2 || c.A != 0xff {
		t.Errorf("BGR pixel rendered as %v", c)
	}
	c = ToRGB(f).Image().RGBAAt(2, 1)
	if c.R != 7 || c.G != 1 || c.B != 2 {
		t.Errorf("RGB pixel rendered as %v", c)
	}
}

func TestCropModes(t *testing.T) {
	f := gradient(100, 100)
	box := BoundingBox{X: 10, Y: 20, W: 30, H: 40}

	tests := []struct {
		mode         CropMode
		wantW, wantH int
	}{
		// rows y:y+w, cols x:x+h
		{CropWidthRows, 40, 30},
		// rows y:y+h, cols x:x+w
		{CropHeightRows, 30, 40},
	}
	for _, tt := range tests {
		got := Crop(f, box, tt.mode)
		if got.Width != tt.wantW || got.Height != tt.wantH {
			t.Errorf("%v: size %dx%d, want %dx%d", tt.mode, got.Width, got.Height, tt.wantW, tt.wantH)
			continue
		}
		if x, y, _ := got.At(0, 0); x != 10 || y != 20 {
			t.Errorf("%v: top-left pixel from (%d,%d), want (10,20)", tt.mode, x, y)
		}
		if x, y, _ := got.At(got.Width-1, got.Height-1); int(x) != 10+tt.wantW-1 || int(y) != 20+tt.wantH-1 {
			t.Errorf("%v: bottom-right pixel from (%d,%d)", tt.mode, x, y)
		}
	}
}

func TestCropSquareBoxAgrees(t *testing.T) {
	f := gradient(100, 100)
	box := BoundingBox{X: 10, Y: 20, W: 30, H: 30}
	a := Crop(f, box, CropWidthRows)
	b := Crop(f, box, CropHeightRows)
	if a.Width != 30 || a.Height != 30 || b.Width != 30 || b.Height != 30 {
		t.Fatalf("sizes %dx%d and %dx%d, want 30x30", a.Width, a.Height, b.Width, b.Height)
	}
	if string(a.Pix) != string(b.Pix) {
		t.Error("square crops differ between modes")
	}
}

func TestCropClipsToFrame(t *testing.T) {
	f := gradient(50, 40)
	got := Crop(f, BoundingBox{X: 40, Y: 30, W: 20, H: 20}, CropHeightRows)
	if got.Width != 10 || got.Height != 10 {
		t.Errorf("clipped size %dx%d, want 10x10", got.Width, got.Height)
	}

	outside := Crop(f, BoundingBox{X: 60, Y: 60, W: 5, H: 5}, CropHeightRows)
	if outside.Width != f.Width || outside.Height != f.Height {
		t.Errorf("empty region should return the original frame")
	}
}

func TestParseCropMode(t *testing.T) {
	for in, want := range map[string]CropMode{"": CropWidthRows, "width": CropWidthRows, "height": CropHeightRows} {
		got, err := ParseCropMode(in)
		if err != nil || got != want {
			t.Errorf("ParseCropMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCropMode("diagonal"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
