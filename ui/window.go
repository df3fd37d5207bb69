// Package ui is the two-pane desktop window.
package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
)

// Scheduler runs callbacks on the fyne thread after a delay.
type Scheduler struct{}

// AfterFunc implements pipeline.Scheduler.
func (Scheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, func() { fyne.Do(f) })
}

// Window shows the webcam feed on the left and the face crop on the right.
type Window struct {
	Webcam *Pane
	Face   *Pane

	app    fyne.App
	win    fyne.Window
	closed bool
}

func NewWindow(paneWidth, paneHeight int) *Window {
	a := app.New()
	win := a.NewWindow("Face Detection")

	w := &Window{
		Webcam: NewPane("Webcam Output", paneWidth, paneHeight),
		Face:   NewPane("Face detection Output", paneWidth, paneHeight),
		app:    a,
		win:    win,
	}
	win.SetContent(container.NewGridWithColumns(2, w.Webcam, w.Face))
	win.SetOnClosed(func() { w.closed = true })
	return w
}

// OnClose replaces the default close behavior. f must end with Teardown.
func (w *Window) OnClose(f func()) {
	w.win.SetCloseIntercept(f)
}

// Teardown closes the window and quits the app. It does nothing once the
// window is gone.
func (w *Window) Teardown() {
	if w.closed {
		return
	}
	w.win.Close()
	w.app.Quit()
}

// Do runs f on the fyne thread.
func (w *Window) Do(f func()) {
	fyne.Do(f)
}

// ShowAndRun blocks until the app quits.
func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}
