package session

import (
	"time"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/registry"
)

// DemoUser is the identity shown in demo mode.
var DemoUser = models.UserIdentity{
	DisplayName: constants.DemoUserName,
	Email:       constants.DemoUserEmail,
}

type demoRow struct {
	id, name, mimeType, size, modified string
	bytes                              uint64
}

var demoRows = []demoRow{
	{"1", "Project Proposals", models.FolderMimeType, "-", "2023-10-24", 0},
	{"2", "Orbit Design Assets", models.FolderMimeType, "-", "2023-11-02", 0},
	{"3", "Q4 Financial Report.pdf", "application/pdf", "2.4 MB", "2023-11-10", 2516582},
	{"4", "Launch_Campaign.jpg", "image/jpeg", "4.1 MB", "2023-11-12", 4299162},
	{"5", "Meeting_Notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "14 KB", "2023-11-15", 14336},
	{"6", "main_theme.mp3", "audio/mpeg", "8.2 MB", "2023-11-01", 8598323},
}

// DemoListing returns a fresh copy of the canned root listing.
func DemoListing() []models.FileEntry {
	out := make([]models.FileEntry, 0, len(demoRows))
	for _, r := range demoRows {
		modified, _ := time.Parse(constants.DateLayout, r.modified)
		e := models.FileEntry{
			ID:        r.id,
			Name:      r.name,
			MimeType:  r.mimeType,
			Kind:      registry.Classify(r.mimeType),
			SizeLabel: r.size,
			Modified:  modified,
		}
		if r.bytes > 0 {
			e.SizeBytes = models.Uint64Ptr(r.bytes)
		}
		out = append(out, e)
	}
	return out
}
