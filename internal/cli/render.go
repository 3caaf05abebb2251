package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/orbit-drive/orbit/internal/view"
)

// nameWidth is the display width of the name column.
const nameWidth = 36

// glyphs are the text stand-ins for view icons.
var glyphs = map[string]string{
	"folder":    "[D]",
	"image":     "[I]",
	"file-text": "[F]",
	"music":     "[A]",
	"video":     "[V]",
}

// renderPage writes the page as a listing. Grid mode prints name and size;
// list mode adds the id and modified date.
func renderPage(w io.Writer, page view.Page) {
	header := page.Title
	if len(page.Breadcrumbs) > 1 {
		names := make([]string, len(page.Breadcrumbs))
		for i, b := range page.Breadcrumbs {
			names[i] = b.Name
		}
		header = strings.Join(names, " / ")
	}
	if page.Search != "" {
		header += fmt.Sprintf("  (search: %q)", page.Search)
	}
	fmt.Fprintln(w, header)

	if page.Uploading {
		fmt.Fprintln(w, "Uploading your file to Orbit...")
	}

	if page.Empty {
		fmt.Fprintln(w, "  "+page.EmptyText)
		return
	}

	for _, row := range page.Rows {
		glyph := glyphs[row.Icon.Name]
		if glyph == "" {
			glyph = "[F]"
		}
		name := runewidth.FillRight(runewidth.Truncate(row.Name, nameWidth, "…"), nameWidth)

		if page.Mode == view.ModeList {
			fmt.Fprintf(w, "  %s %s  %-10s  %-10s  %s\n", glyph, name, row.SizeText, row.Modified, row.ID)
		} else {
			fmt.Fprintf(w, "  %s %s  %s\n", glyph, name, row.SizeText)
		}
	}
}
