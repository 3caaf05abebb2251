package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/metrics"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/registry"
)

// Pipeline errors
var (
	ErrUploadWithoutDescriptor = errors.New("upload requires a file descriptor")
	ErrUploadBusy              = errors.New("another upload is in progress")
	ErrUploadCancelled         = errors.New("upload cancelled")
	ErrAlreadyFinished         = errors.New("upload already finished")
)

// maxHistory bounds the finished transactions kept for Transactions().
const maxHistory = 100

// Target says where the bytes go. The zero Target simulates the transfer.
type Target struct {
	FolderID string
	Uploader cloud.Uploader // nil in demo mode
}

// Options configures a Pipeline.
type Options struct {
	Latency  time.Duration // simulated transfer time, split into progress ticks
	Steps    int           // progress ticks per simulated transfer
	Policy   string        // constants.UploadPolicyReject or constants.UploadPolicyQueue
	EventBus *events.EventBus
	Logger   *logging.Logger
	Metrics  *metrics.Metrics

	// Now is replaced in tests.
	Now func() time.Time
}

// Pipeline runs upload transactions one at a time.
// Thread-safe for concurrent access.
type Pipeline struct {
	opts   Options
	logger *logging.Logger

	mu      sync.Mutex
	active  *Transaction
	waiting []*Transaction
	history []*Transaction
}

// NewPipeline creates a pipeline with an empty slot.
func NewPipeline(opts Options) *Pipeline {
	if opts.Steps <= 0 {
		opts.Steps = constants.UploadProgressSteps
	}
	if opts.Policy == "" {
		opts.Policy = constants.UploadPolicyReject
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Policy returns the single-slot policy in effect.
func (p *Pipeline) Policy() string {
	return p.opts.Policy
}

// Begin starts a simulated upload of desc.
func (p *Pipeline) Begin(desc *models.FileDescriptor) (*Handle, error) {
	return p.BeginTo(desc, Target{})
}

// BeginTo starts an upload of desc to target. A nil descriptor fails with
// ErrUploadWithoutDescriptor and changes nothing. When the slot is taken the
// policy decides between ErrUploadBusy and queueing.
func (p *Pipeline) BeginTo(desc *models.FileDescriptor, target Target) (*Handle, error) {
	if desc == nil {
		return nil, ErrUploadWithoutDescriptor
	}

	tx := newTransaction(*desc, target)

	p.mu.Lock()
	if p.active != nil {
		if p.opts.Policy != constants.UploadPolicyQueue {
			p.mu.Unlock()
			p.opts.Metrics.RecordUpload("rejected")
			p.logger.Debug().Str("name", desc.Name).Msg("upload rejected, slot busy")
			return nil, ErrUploadBusy
		}
		p.waiting = append(p.waiting, tx)
		p.remember(tx)
		p.mu.Unlock()

		p.publish(events.EventUploadQueued, tx)
		p.logger.Info().Str("upload_id", tx.ID).Str("name", desc.Name).Msg("upload queued")
		return &Handle{tx: tx}, nil
	}

	p.remember(tx)
	p.activateLocked(tx)
	p.mu.Unlock()

	p.publish(events.EventUploadQueued, tx)
	p.publish(events.EventUploadStarted, tx)
	p.logger.Info().Str("upload_id", tx.ID).Str("name", desc.Name).Uint64("size", desc.SizeBytes).Msg("upload started")
	return &Handle{tx: tx}, nil
}

// Complete waits for the slot if the transaction is queued, performs the
// transfer and returns the synthesized entry. The slot is released whatever
// the outcome. Cancelling ctx cancels this transaction only.
func (p *Pipeline) Complete(ctx context.Context, h *Handle) (models.FileEntry, error) {
	if h == nil || h.tx == nil {
		return models.FileEntry{}, ErrUploadWithoutDescriptor
	}
	tx := h.tx

	if tx.State().IsTerminal() {
		if tx.State() == StateCancelled {
			return models.FileEntry{}, ErrUploadCancelled
		}
		return models.FileEntry{}, ErrAlreadyFinished
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(tx.ctx, cancel)
	defer stop()

	// Wait for the slot.
	select {
	case <-tx.ready:
	case <-runCtx.Done():
		p.finish(tx, StateCancelled, ErrUploadCancelled)
		return models.FileEntry{}, ErrUploadCancelled
	}

	entry, err := p.transfer(runCtx, tx)
	if err != nil {
		if runCtx.Err() != nil {
			p.finish(tx, StateCancelled, ErrUploadCancelled)
			return models.FileEntry{}, ErrUploadCancelled
		}
		p.finish(tx, StateFailed, err)
		return models.FileEntry{}, fmt.Errorf("upload %s: %w", tx.Descriptor.Name, err)
	}

	if !p.finish(tx, StateCompleted, nil) {
		// Cancelled between the last tick and now.
		return models.FileEntry{}, ErrUploadCancelled
	}
	return entry, nil
}

// Cancel cancels one transaction, queued or active.
func (p *Pipeline) Cancel(h *Handle) {
	if h == nil || h.tx == nil {
		return
	}
	p.finish(h.tx, StateCancelled, ErrUploadCancelled)
}

// CancelAll cancels the active transaction and everything queued behind it.
func (p *Pipeline) CancelAll() int {
	p.mu.Lock()
	var victims []*Transaction
	if p.active != nil {
		victims = append(victims, p.active)
	}
	victims = append(victims, p.waiting...)
	p.mu.Unlock()

	for _, tx := range victims {
		p.finish(tx, StateCancelled, ErrUploadCancelled)
	}
	return len(victims)
}

// InFlight reports whether a transaction holds the slot.
func (p *Pipeline) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}

// Active returns a snapshot of the transaction holding the slot.
func (p *Pipeline) Active() (Info, bool) {
	p.mu.Lock()
	tx := p.active
	p.mu.Unlock()
	if tx == nil {
		return Info{}, false
	}
	return tx.Info(), true
}

// Queued returns the number of transactions waiting for the slot.
func (p *Pipeline) Queued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.waiting)
}

// Transactions returns snapshots of recent transactions, oldest first.
func (p *Pipeline) Transactions() []Info {
	p.mu.Lock()
	txs := make([]*Transaction, len(p.history))
	copy(txs, p.history)
	p.mu.Unlock()

	out := make([]Info, len(txs))
	for i, tx := range txs {
		out[i] = tx.Info()
	}
	return out
}

// NewEntry synthesizes the listing entry for an uploaded descriptor: a random
// id, the declared type or the generic binary type, the size in megabytes and
// today's date.
func NewEntry(desc models.FileDescriptor, now time.Time) models.FileEntry {
	mimeType := desc.DeclaredType
	if mimeType == "" {
		mimeType = constants.FallbackMimeType
	}
	return models.FileEntry{
		ID:        uuid.New().String(),
		Name:      desc.Name,
		MimeType:  mimeType,
		Kind:      registry.Classify(mimeType),
		SizeBytes: models.Uint64Ptr(desc.SizeBytes),
		SizeLabel: models.FormatMegabytes(desc.SizeBytes),
		Modified:  models.DateOnly(now),
	}
}

func (p *Pipeline) transfer(ctx context.Context, tx *Transaction) (models.FileEntry, error) {
	if tx.Target.Uploader != nil && tx.Descriptor.LocalPath != "" {
		return p.transferRemote(ctx, tx)
	}
	if err := p.simulate(ctx, tx); err != nil {
		return models.FileEntry{}, err
	}
	return NewEntry(tx.Descriptor, p.opts.Now()), nil
}

// simulate spreads the configured latency over progress ticks.
func (p *Pipeline) simulate(ctx context.Context, tx *Transaction) error {
	steps := p.opts.Steps
	interval := p.opts.Latency / time.Duration(steps)

	for i := 1; i <= steps; i++ {
		if interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		p.progress(tx, float64(i)/float64(steps))
	}
	return nil
}

func (p *Pipeline) transferRemote(ctx context.Context, tx *Transaction) (models.FileEntry, error) {
	f, err := os.Open(tx.Descriptor.LocalPath)
	if err != nil {
		return models.FileEntry{}, fmt.Errorf("failed to open %s: %w", tx.Descriptor.LocalPath, err)
	}
	defer f.Close()

	reader := newProgressReader(f, tx.Descriptor.SizeBytes, func(frac float64) {
		p.progress(tx, frac)
	})

	entry, err := tx.Target.Uploader.Upload(ctx, tx.Target.FolderID, tx.Descriptor, reader)
	if err != nil {
		return models.FileEntry{}, err
	}
	if entry.Kind == "" {
		entry.Kind = registry.Classify(entry.MimeType)
	}
	p.progress(tx, 1)
	return entry, nil
}

func (p *Pipeline) progress(tx *Transaction, frac float64) {
	tx.setProgress(frac)
	p.publish(events.EventUploadProgress, tx)
}

// activateLocked gives tx the slot. Caller holds p.mu.
func (p *Pipeline) activateLocked(tx *Transaction) {
	p.active = tx
	tx.setState(StateActive, nil)
	close(tx.ready)
	p.opts.Metrics.SetUploadInFlight(true)
}

// remember records tx in the bounded history. Caller holds p.mu.
func (p *Pipeline) remember(tx *Transaction) {
	p.history = append(p.history, tx)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

// finish moves tx to a terminal state, releases the slot if tx held it and
// hands the slot to the next queued transaction. Returns false if tx had
// already finished.
func (p *Pipeline) finish(tx *Transaction, state State, err error) bool {
	p.mu.Lock()
	if tx.State().IsTerminal() {
		p.mu.Unlock()
		return false
	}
	tx.setState(state, err)
	tx.cancel()

	var next *Transaction
	if p.active == tx {
		p.active = nil
		p.opts.Metrics.SetUploadInFlight(false)
		if len(p.waiting) > 0 {
			next = p.waiting[0]
			p.waiting = p.waiting[1:]
			p.activateLocked(next)
		}
	} else {
		for i, w := range p.waiting {
			if w == tx {
				p.waiting = append(p.waiting[:i], p.waiting[i+1:]...)
				break
			}
		}
	}
	p.mu.Unlock()

	switch state {
	case StateCompleted:
		p.opts.Metrics.RecordUpload("completed")
		p.publish(events.EventUploadCompleted, tx)
		p.logger.Info().Str("upload_id", tx.ID).Str("name", tx.Descriptor.Name).Msg("upload completed")
	case StateFailed:
		p.opts.Metrics.RecordUpload("failed")
		p.publish(events.EventUploadFailed, tx)
		p.logger.Error().Err(err).Str("upload_id", tx.ID).Str("name", tx.Descriptor.Name).Msg("upload failed")
	case StateCancelled:
		p.opts.Metrics.RecordUpload("cancelled")
		p.publish(events.EventUploadCancelled, tx)
		p.logger.Info().Str("upload_id", tx.ID).Str("name", tx.Descriptor.Name).Msg("upload cancelled")
	}

	if next != nil {
		p.publish(events.EventUploadStarted, next)
		p.logger.Info().Str("upload_id", next.ID).Str("name", next.Descriptor.Name).Msg("upload started")
	}
	return true
}

func (p *Pipeline) publish(t events.EventType, tx *Transaction) {
	if p.opts.EventBus == nil {
		return
	}
	info := tx.Info()
	p.opts.EventBus.Publish(&events.UploadEvent{
		BaseEvent: events.NewBase(t),
		UploadID:  info.ID,
		Name:      info.Name,
		Size:      info.SizeBytes,
		Progress:  info.Progress,
		Error:     info.Err,
	})
}
