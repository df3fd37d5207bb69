package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"facecam/video/frame"
)

// Pane is a titled image slot. Update must be called on the fyne thread.
type Pane struct {
	widget.BaseWidget

	title  *canvas.Text
	image  *canvas.Image
	width  int
	height int
}

// NewPane creates a pane that shows frames scaled to width x height.
func NewPane(title string, width, height int) *Pane {
	p := &Pane{
		title:  canvas.NewText(title, color.White),
		image:  canvas.NewImageFromImage(nil),
		width:  width,
		height: height,
	}
	p.ExtendBaseWidget(p)

	p.title.Alignment = fyne.TextAlignCenter
	p.image.FillMode = canvas.ImageFillContain
	p.image.SetMinSize(fyne.NewSize(float32(width), float32(height)))
	return p
}

// Update implements pipeline.Slot.
func (p *Pane) Update(f frame.Frame) {
	p.image.Image = Fit(f, p.width, p.height)
	p.image.Refresh()
}

// CreateRenderer implements [fyne.Widget].
func (p *Pane) CreateRenderer() fyne.WidgetRenderer {
	header := container.NewStack(canvas.NewRectangle(color.Black), p.title)
	return widget.NewSimpleRenderer(container.NewPadded(container.NewBorder(header, nil, nil, nil, p.image)))
}
