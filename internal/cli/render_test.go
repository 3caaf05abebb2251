package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/session"
	"github.com/orbit-drive/orbit/internal/view"
)

func TestRenderPage_Grid(t *testing.T) {
	page := view.Project(view.Input{
		History: []models.FolderRef{{ID: "root", Name: "My Drive"}},
		Entries: session.DemoListing(),
		Mode:    view.ModeGrid,
	})

	var buf bytes.Buffer
	renderPage(&buf, page)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if lines[0] != "My Drive" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 7 {
		t.Fatalf("got %d lines, want 7:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "  [D] Project Proposals") || !strings.HasSuffix(lines[1], "Folder") {
		t.Errorf("folder row = %q", lines[1])
	}
	if !strings.HasPrefix(lines[4], "  [I] Launch_Campaign.jpg") {
		t.Errorf("image row = %q", lines[4])
	}
	if !strings.HasPrefix(lines[6], "  [A] main_theme.mp3") {
		t.Errorf("audio row = %q", lines[6])
	}
}

func TestRenderPage_ListAndBreadcrumbs(t *testing.T) {
	page := view.Project(view.Input{
		History: []models.FolderRef{
			{ID: "root", Name: "My Drive"},
			{ID: "1", Name: "Project Proposals"},
		},
		Entries:   session.DemoListing(),
		Search:    "report",
		Mode:      view.ModeList,
		Uploading: true,
	})

	var buf bytes.Buffer
	renderPage(&buf, page)
	got := buf.String()

	if !strings.HasPrefix(got, `My Drive / Project Proposals  (search: "report")`) {
		t.Errorf("header wrong:\n%s", got)
	}
	if !strings.Contains(got, "Uploading your file to Orbit...") {
		t.Error("missing upload banner")
	}
	if !strings.Contains(got, "2023-11-10") || !strings.HasSuffix(strings.TrimSpace(got), "3") {
		t.Errorf("list row should carry date and id:\n%s", got)
	}
}

func TestRenderPage_EmptyAndLongNames(t *testing.T) {
	var buf bytes.Buffer
	renderPage(&buf, view.Project(view.Input{
		History: []models.FolderRef{{ID: "root", Name: "My Drive"}},
		Search:  "nothing",
	}))
	if !strings.Contains(buf.String(), view.EmptyMessage) {
		t.Errorf("empty page = %q", buf.String())
	}

	buf.Reset()
	long := strings.Repeat("a", 80) + ".txt"
	renderPage(&buf, view.Project(view.Input{
		History: []models.FolderRef{{ID: "root", Name: "My Drive"}},
		Entries: []models.FileEntry{{ID: "x", Name: long, MimeType: "text/plain", Kind: models.KindDocument, SizeLabel: "1 KB"}},
	}))
	if strings.Contains(buf.String(), long) || !strings.Contains(buf.String(), "…") {
		t.Errorf("long name not truncated:\n%s", buf.String())
	}
}
