// Package view projects the core's state into renderable rows. It holds no
// state of its own; frontends call Project after every change event.
package view

import (
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/registry"
)

// ViewMode selects the grid or list layout.
type ViewMode string

const (
	ModeGrid ViewMode = "grid"
	ModeList ViewMode = "list"
)

// ParseViewMode maps a config value to a ViewMode. Unknown values are grid.
func ParseViewMode(s string) ViewMode {
	if s == string(ModeList) {
		return ModeList
	}
	return ModeGrid
}

// EmptyMessage is shown when the filtered listing has no rows.
const EmptyMessage = "No files found"

// Icon names a glyph and its tint. Rendering is the frontend's business.
type Icon struct {
	Name  string
	Color string
}

var icons = map[models.FileKind]Icon{
	models.KindFolder:   {Name: "folder", Color: "blue"},
	models.KindImage:    {Name: "image", Color: "purple"},
	models.KindPDF:      {Name: "file-text", Color: "red"},
	models.KindAudio:    {Name: "music", Color: "pink"},
	models.KindVideo:    {Name: "video", Color: "orange"},
	models.KindDocument: {Name: "file-text", Color: "gray"},
}

// IconFor returns the icon for a type string.
func IconFor(mimeType string) Icon {
	return icons[registry.Classify(mimeType)]
}

// Row is one renderable entry.
type Row struct {
	ID        string
	Name      string
	Kind      models.FileKind
	Icon      Icon
	SizeText  string
	Modified  string
	Navigable bool // folders open on activation
}

// Page is everything a frontend needs to draw the signed-in screen.
type Page struct {
	Title       string
	Breadcrumbs []models.FolderRef
	CanGoBack   bool
	Rows        []Row
	Empty       bool
	EmptyText   string
	Search      string
	Mode        ViewMode
	Uploading   bool
	Loading     bool
	UserInitial string
	AvatarRef   string
}

// Input is the state a Page is derived from.
type Input struct {
	History   []models.FolderRef
	Entries   []models.FileEntry // active partition, unfiltered
	Search    string
	Mode      ViewMode
	Uploading bool
	Loading   bool
	User      *models.UserIdentity
}

// Project derives a Page from in. Rows are the entries whose name contains
// the search term, in listing order.
func Project(in Input) Page {
	mode := in.Mode
	if mode == "" {
		mode = ModeGrid
	}

	page := Page{
		Breadcrumbs: append([]models.FolderRef(nil), in.History...),
		CanGoBack:   len(in.History) > 1,
		Search:      in.Search,
		Mode:        mode,
		Uploading:   in.Uploading,
		Loading:     in.Loading,
	}
	if n := len(in.History); n > 0 {
		page.Title = in.History[n-1].Name
	}
	if in.User != nil {
		page.UserInitial = in.User.Initial()
		page.AvatarRef = in.User.AvatarRef
	}

	filtered := registry.Filter(in.Entries, in.Search)
	page.Rows = make([]Row, 0, len(filtered))
	for _, e := range filtered {
		page.Rows = append(page.Rows, NewRow(e, mode))
	}
	if len(page.Rows) == 0 {
		page.Empty = true
		page.EmptyText = EmptyMessage
	}
	return page
}

// NewRow projects one entry.
func NewRow(e models.FileEntry, mode ViewMode) Row {
	kind := e.Kind
	if kind == "" {
		kind = registry.Classify(e.MimeType)
	}

	size := e.SizeLabel
	if size == "" {
		size = "-"
	}
	if mode == ModeGrid && size == "-" {
		size = "Folder"
	}

	return Row{
		ID:        e.ID,
		Name:      e.Name,
		Kind:      kind,
		Icon:      icons[kind],
		SizeText:  size,
		Modified:  e.ModifiedDate(),
		Navigable: kind == models.KindFolder,
	}
}
