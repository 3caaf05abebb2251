// Package upload implements the single-slot upload pipeline.
//
// At most one transaction holds the slot. Under the "reject" policy a second
// Begin fails with ErrUploadBusy; under "queue" it waits in FIFO order.
package upload

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbit-drive/orbit/internal/models"
)

// State represents the current state of an upload transaction.
type State string

const (
	StateQueued    State = "queued"    // Waiting for the slot
	StateActive    State = "active"    // Holds the slot
	StateCompleted State = "completed" // Entry synthesized and returned
	StateFailed    State = "failed"    // Transfer error
	StateCancelled State = "cancelled" // Cancelled by logout or caller
)

// IsTerminal reports whether the state is final.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// Transaction is one upload from Begin to completion.
// Thread-safe: Use the provided methods to read state.
type Transaction struct {
	ID         string
	Descriptor models.FileDescriptor
	Target     Target

	state       State
	progress    float64
	err         error
	createdAt   time.Time
	startedAt   time.Time
	completedAt time.Time

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  chan struct{} // closed when the transaction gets the slot
}

func newTransaction(desc models.FileDescriptor, target Target) *Transaction {
	ctx, cancel := context.WithCancel(context.Background())
	return &Transaction{
		ID:         uuid.New().String(),
		Descriptor: desc,
		Target:     target,
		state:      StateQueued,
		createdAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
		ready:      make(chan struct{}),
	}
}

// State returns the current state.
func (t *Transaction) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Progress returns progress from 0.0 to 1.0.
func (t *Transaction) Progress() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.progress
}

// Err returns the failure, if any.
func (t *Transaction) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

func (t *Transaction) setState(state State, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	if err != nil {
		t.err = err
	}
	switch {
	case state == StateActive && t.startedAt.IsZero():
		t.startedAt = time.Now()
	case state.IsTerminal():
		t.completedAt = time.Now()
	}
}

func (t *Transaction) setProgress(p float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p > t.progress {
		t.progress = p
	}
}

// Info is a point-in-time copy of a transaction.
type Info struct {
	ID          string
	Name        string
	SizeBytes   uint64
	State       State
	Progress    float64
	Err         error
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// Info returns a snapshot of the transaction.
func (t *Transaction) Info() Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Info{
		ID:          t.ID,
		Name:        t.Descriptor.Name,
		SizeBytes:   t.Descriptor.SizeBytes,
		State:       t.state,
		Progress:    t.progress,
		Err:         t.err,
		CreatedAt:   t.createdAt,
		StartedAt:   t.startedAt,
		CompletedAt: t.completedAt,
	}
}

// Handle is returned by Begin and passed to Complete.
type Handle struct {
	tx *Transaction
}

// ID returns the transaction id.
func (h *Handle) ID() string { return h.tx.ID }

// State returns the transaction's current state.
func (h *Handle) State() State { return h.tx.State() }

// Descriptor returns the descriptor the upload was started with.
func (h *Handle) Descriptor() models.FileDescriptor { return h.tx.Descriptor }
