package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// UploadUI draws one bar per upload transaction using mpb.
// Off a terminal it prints a line when an upload starts and finishes.
type UploadUI struct {
	progress *mpb.Progress
	out      io.Writer
	terminal bool

	bars sync.Map // upload id -> *UploadBar
}

// UploadBar is the bar for a single upload.
type UploadBar struct {
	bar       *mpb.Bar
	ui        *UploadUI
	name      string
	size      int64
	startTime time.Time

	mu        sync.Mutex
	lastBytes int64
	done      bool
}

// barScale is the bar total when the upload size is unknown.
const barScale = 1000

// NewUploadUI creates an upload UI writing to out.
func NewUploadUI(out io.Writer) *UploadUI {
	terminal := IsTerminal(out)

	var p *mpb.Progress
	if terminal {
		if f, ok := out.(*os.File); ok {
			enableWindowsANSI(f)
		}
		p = mpb.New(
			mpb.WithOutput(out),
			mpb.WithRefreshRate(150*time.Millisecond),
			mpb.WithWidth(80),
		)
	}

	return &UploadUI{progress: p, out: out, terminal: terminal}
}

// AddBar creates the bar for upload id.
func (u *UploadUI) AddBar(id, name string, size uint64) *UploadBar {
	total := int64(size)
	if total <= 0 {
		total = barScale
	}

	ub := &UploadBar{ui: u, name: name, size: total, startTime: time.Now()}

	if u.terminal {
		ub.bar = u.progress.New(total,
			mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
			mpb.PrependDecorators(
				decor.Name(fmt.Sprintf("%s (%.1f MiB)", truncatePath(name, 2), float64(size)/(1024*1024)), decor.WCSyncSpace),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WCSyncSpace),
				decor.Name("  "),
				decor.Elapsed(decor.ET_STYLE_GO, decor.WCSyncSpace),
			),
			mpb.BarRemoveOnComplete(),
		)
	} else {
		fmt.Fprintf(u.out, "Uploading %s (%.1f MiB)\n", truncatePath(name, 2), float64(size)/(1024*1024))
	}

	u.bars.Store(id, ub)
	return ub
}

// Bar returns the bar for upload id, if any.
func (u *UploadUI) Bar(id string) (*UploadBar, bool) {
	v, ok := u.bars.Load(id)
	if !ok {
		return nil, false
	}
	return v.(*UploadBar), true
}

// UpdateProgress moves the bar to fraction (0.0 to 1.0).
func (b *UploadBar) UpdateProgress(fraction float64) {
	if fraction > 1 {
		fraction = 1
	}
	current := int64(fraction * float64(b.size))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done || current <= b.lastBytes {
		return
	}
	if b.bar != nil {
		b.bar.SetCurrent(current)
	}
	b.lastBytes = current
}

// Complete finishes the bar and prints a summary line. Calling it again is a no-op.
func (b *UploadBar) Complete(err error) {
	b.mu.Lock()
	if b.done {
		b.mu.Unlock()
		return
	}
	b.done = true
	b.mu.Unlock()

	elapsed := time.Since(b.startTime).Round(time.Millisecond)

	var msg string
	if err == nil {
		if b.bar != nil {
			b.bar.SetCurrent(b.size)
			b.bar.SetTotal(b.size, true)
		}
		msg = fmt.Sprintf("✓ %s (%s)\n", truncatePath(b.name, 2), elapsed)
	} else {
		if b.bar != nil {
			b.bar.Abort(false)
		}
		msg = fmt.Sprintf("✗ %s: %v\n", truncatePath(b.name, 2), err)
	}

	b.ui.Writer().Write([]byte(msg))
}

// Done reports whether Complete has been called.
func (b *UploadBar) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}

// Wait blocks until every bar has completed.
func (u *UploadUI) Wait() {
	if u.progress != nil {
		u.progress.Wait()
	}
}

// Writer returns a writer that prints above the bars on a terminal.
func (u *UploadUI) Writer() io.Writer {
	if u.progress != nil {
		return u.progress
	}
	return u.out
}

// IsTerminal reports whether bars are drawn.
func (u *UploadUI) IsTerminal() bool {
	return u.terminal
}

// truncatePath keeps the last maxComponents path elements.
// Example: truncatePath("/a/b/c/d/file.txt", 3) → "…/c/d/file.txt"
func truncatePath(path string, maxComponents int) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= maxComponents {
		return filepath.Base(path)
	}
	return "…/" + strings.Join(parts[len(parts)-maxComponents:], "/")
}
