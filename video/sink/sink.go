// Package sink mirrors the display panes to places other than the window.
//
// Every sink here satisfies pipeline.Slot: Update is called on the UI thread
// and must return immediately, so encoding happens on the sink's own
// goroutine and frames are skipped while it is busy.
package sink
