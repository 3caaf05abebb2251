// Package progress renders the core's loading and upload events on a
// terminal: a spinner while a login or folder switch settles, and one bar per
// upload transaction. Off a terminal both degrade to plain status lines.
package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
