package models

import (
	"fmt"
	"time"
)

// FileKind is a coarse media classification derived from a MIME-like type string.
type FileKind string

const (
	KindFolder   FileKind = "folder"
	KindImage    FileKind = "image"
	KindPDF      FileKind = "pdf"
	KindAudio    FileKind = "audio"
	KindVideo    FileKind = "video"
	KindDocument FileKind = "document"
)

// FolderMimeType is the type string carried by folder entries.
const FolderMimeType = "folder"

// FileEntry is a file or folder in a listing.
// IDs are unique within one listing snapshot, not globally.
type FileEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MimeType  string    `json:"type"`
	Kind      FileKind  `json:"kind"`
	SizeBytes *uint64   `json:"sizeBytes,omitempty"` // nil for folders and unknown sizes
	SizeLabel string    `json:"size"`                // human readable, "-" for folders
	Modified  time.Time `json:"modified"`            // date portion only
}

// IsFolder reports whether the entry is a folder.
func (e FileEntry) IsFolder() bool {
	return e.Kind == KindFolder
}

// ModifiedDate returns the modified date formatted as YYYY-MM-DD.
func (e FileEntry) ModifiedDate() string {
	if e.Modified.IsZero() {
		return ""
	}
	return e.Modified.Format("2006-01-02")
}

// FolderRef identifies a folder in the navigation history.
type FolderRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FileDescriptor is what a file-selection surface hands to the upload pipeline.
type FileDescriptor struct {
	Name         string
	DeclaredType string // optional MIME type
	SizeBytes    uint64
	LocalPath    string // optional; live providers stream the content from here
}

// FormatMegabytes renders a byte count as megabytes with two decimals, e.g. "2.40 MB".
func FormatMegabytes(size uint64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/1024/1024)
}

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Uint64Ptr returns a pointer to v.
func Uint64Ptr(v uint64) *uint64 {
	return &v
}
