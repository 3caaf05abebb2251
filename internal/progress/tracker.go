package progress

import (
	"context"
	"errors"
	"io"

	"github.com/orbit-drive/orbit/internal/events"
)

var errCancelled = errors.New("cancelled")

// loadingText maps loading reasons to spinner text.
var loadingText = map[string]string{
	"login":    "Signing in",
	"navigate": "Opening folder",
}

// Tracker follows the event bus and draws the spinner and upload bars.
type Tracker struct {
	spinner *Spinner
	uploads *UploadUI
	out     io.Writer
}

// NewTracker creates a tracker writing to out.
func NewTracker(out io.Writer) *Tracker {
	return &Tracker{
		spinner: NewSpinner(out),
		uploads: NewUploadUI(out),
		out:     out,
	}
}

// Uploads returns the upload UI.
func (t *Tracker) Uploads() *UploadUI {
	return t.uploads
}

// Run consumes bus events until ctx is done or the bus closes.
func (t *Tracker) Run(ctx context.Context, bus *events.EventBus) {
	ch := bus.SubscribeAll()
	defer bus.UnsubscribeAll(ch)

	for {
		select {
		case <-ctx.Done():
			t.spinner.Stop()
			return
		case ev, ok := <-ch:
			if !ok {
				t.spinner.Stop()
				return
			}
			t.Handle(ev)
		}
	}
}

// Handle applies one event.
func (t *Tracker) Handle(ev events.Event) {
	switch e := ev.(type) {
	case *events.LoadingChangedEvent:
		if e.Loading {
			text, ok := loadingText[e.Reason]
			if !ok {
				text = "Loading"
			}
			t.spinner.Start(text)
		} else {
			t.spinner.Stop()
		}

	case *events.UploadEvent:
		switch e.Type() {
		case events.EventUploadStarted:
			t.uploads.AddBar(e.UploadID, e.Name, e.Size)
		case events.EventUploadProgress:
			if bar, ok := t.uploads.Bar(e.UploadID); ok {
				bar.UpdateProgress(e.Progress)
			}
		case events.EventUploadCompleted:
			if bar, ok := t.uploads.Bar(e.UploadID); ok {
				bar.Complete(nil)
			}
		case events.EventUploadFailed, events.EventUploadCancelled:
			if bar, ok := t.uploads.Bar(e.UploadID); ok {
				err := e.Error
				if err == nil {
					err = errCancelled
				}
				bar.Complete(err)
			}
		}
	}
}
