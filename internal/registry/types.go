// Package registry holds the file listings, partitioned by folder id.
// It publishes file_list_changed on every mutation so any frontend can
// observe the active listing.
package registry

import (
	"github.com/orbit-drive/orbit/internal/events"
)

// Change reasons carried by FileListChangedEvent.
const (
	ReasonLoad     = "load"
	ReasonInsert   = "insert"
	ReasonActivate = "activate"
	ReasonClear    = "clear"
)

// FileListChangedEvent is published when the active listing changes.
type FileListChangedEvent struct {
	events.BaseEvent
	FolderID string
	Count    int
	Reason   string
}

// NewFileListChangedEvent creates a new FileListChangedEvent.
func NewFileListChangedEvent(folderID string, count int, reason string) *FileListChangedEvent {
	return &FileListChangedEvent{
		BaseEvent: events.NewBase(events.EventFileListChanged),
		FolderID:  folderID,
		Count:     count,
		Reason:    reason,
	}
}
