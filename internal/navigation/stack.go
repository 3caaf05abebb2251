// Package navigation tracks the folder history from the drive root to the
// current folder.
package navigation

import (
	"errors"
	"strings"
	"sync"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/models"
)

// ErrInvalidDescend is returned when a descend has no folder name.
var ErrInvalidDescend = errors.New("cannot open folder without a name")

// Root is the first element of every history.
var Root = models.FolderRef{ID: constants.RootFolderID, Name: constants.RootFolderName}

// Stack is the folder history. It is never empty and its last element is the
// current folder.
type Stack struct {
	mu      sync.RWMutex
	history []models.FolderRef
}

// NewStack returns a stack positioned at the root.
func NewStack() *Stack {
	return &Stack{history: []models.FolderRef{Root}}
}

// Descend pushes a folder. An empty name leaves the stack unchanged.
func (s *Stack) Descend(id, name string) error {
	if name == "" {
		return ErrInvalidDescend
	}

	s.mu.Lock()
	s.history = append(s.history, models.FolderRef{ID: id, Name: name})
	s.mu.Unlock()
	return nil
}

// Ascend pops the current folder. At the root it returns false and does nothing.
func (s *Stack) Ascend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) <= 1 {
		return false
	}
	s.history = s.history[:len(s.history)-1]
	return true
}

// Current returns the folder at the top of the stack.
func (s *Stack) Current() models.FolderRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history[len(s.history)-1]
}

// History returns a copy of the breadcrumb trail, root first.
func (s *Stack) History() []models.FolderRef {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.FolderRef, len(s.history))
	copy(out, s.history)
	return out
}

// Depth returns the number of folders in the history, including the root.
func (s *Stack) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// CanAscend reports whether Ascend would change the stack.
func (s *Stack) CanAscend() bool {
	return s.Depth() > 1
}

// Reset returns to the root.
func (s *Stack) Reset() {
	s.mu.Lock()
	s.history = []models.FolderRef{Root}
	s.mu.Unlock()
}

// Path renders the history as "My Drive / Design / Logos".
func (s *Stack) Path() string {
	history := s.History()
	names := make([]string, len(history))
	for i, f := range history {
		names[i] = f.Name
	}
	return strings.Join(names, " / ")
}
