package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Spinner shows an indeterminate spinner while the core is loading.
type Spinner struct {
	out      io.Writer
	terminal bool

	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer) *Spinner {
	return &Spinner{out: out, terminal: IsTerminal(out)}
}

// Start begins spinning with description. A running spinner is re-described.
func (s *Spinner) Start(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		s.bar.Describe(description)
		return
	}

	if !s.terminal {
		fmt.Fprintf(s.out, "%s...\n", description)
		return
	}

	s.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(s.out),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Stop clears the spinner.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bar != nil {
		_ = s.bar.Finish()
		s.bar = nil
	}
}

// Active reports whether the spinner is showing.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bar != nil
}
