// Package core contains the Engine that owns and coordinates the session,
// navigation, registry and upload state of one Orbit client.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/metrics"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/navigation"
	"github.com/orbit-drive/orbit/internal/registry"
	"github.com/orbit-drive/orbit/internal/session"
	"github.com/orbit-drive/orbit/internal/settings"
	"github.com/orbit-drive/orbit/internal/upload"
	"github.com/orbit-drive/orbit/internal/view"
)

// Engine errors
var (
	ErrNotSignedIn   = errors.New("not signed in")
	ErrNotFolder     = errors.New("entry is not a folder")
	ErrEntryNotFound = errors.New("entry not found in the current listing")
)

// Loading reasons carried by loading_changed events.
const (
	LoadingLogin    = "login"
	LoadingNavigate = "navigate"
)

// Options configures an Engine. Zero values get working defaults.
type Options struct {
	Config   *config.AppConfig
	Settings *settings.Settings // nil means an in-memory store

	// Credentials overrides the stored record for this engine only.
	Credentials models.Credentials

	Storage  cloud.RemoteStorage // nil means cloud.Unavailable
	EventBus *events.EventBus
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
}

// Engine is the main orchestrator for a drive session.
//
// Every transition is serialized by mu. Simulated latencies and remote calls
// run outside the lock; their results are applied only if the session
// generation they started in is still current, so a completion that lands
// after a logout is dropped.
type Engine struct {
	cfg      *config.AppConfig
	settings *settings.Settings
	session  *session.Manager
	nav      *navigation.Stack
	registry *registry.Registry
	uploads  *upload.Pipeline
	eventBus *events.EventBus
	logger   *logging.Logger
	metrics  *metrics.Metrics

	mu            sync.Mutex
	creds         models.Credentials
	search        string
	viewMode      view.ViewMode
	generation    uint64
	loading       bool
	loadingReason string
	loadingToken  uint64
	uploadGen     map[string]pendingUpload
}

// pendingUpload remembers where and when an upload was started.
type pendingUpload struct {
	generation uint64
	folderID   string
}

// NewEngine creates an engine and loads the connection record once.
func NewEngine(ctx context.Context, opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewAppConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	bus := opts.EventBus
	if bus == nil {
		bus = events.NewEventBus(constants.EventBusDefaultBuffer)
	}
	store := opts.Settings
	if store == nil {
		store = settings.New(settings.NewMemoryStore(), logger)
	}

	stored, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	creds, source := config.ResolveCredentials(opts.Credentials, stored)

	e := &Engine{
		cfg:      cfg,
		settings: store,
		session: session.NewManager(session.Options{
			Storage:  opts.Storage,
			Latency:  cfg.Latency.Login,
			EventBus: bus,
			Logger:   logger.Named("session"),
			Metrics:  opts.Metrics,
		}),
		nav:      navigation.NewStack(),
		registry: registry.New(bus),
		uploads: upload.NewPipeline(upload.Options{
			Latency:  cfg.Latency.Upload,
			Steps:    constants.UploadProgressSteps,
			Policy:   cfg.Upload.Policy,
			EventBus: bus,
			Logger:   logger.Named("upload"),
			Metrics:  opts.Metrics,
		}),
		eventBus:  bus,
		logger:    logger,
		metrics:   opts.Metrics,
		creds:     creds,
		viewMode:  view.ParseViewMode(cfg.ViewMode),
		uploadGen: make(map[string]pendingUpload),
	}

	logger.Debug().
		Str("credentials", source).
		Str("client_id", creds.ClientID).
		Bool("has_key", creds.APIKey != "").
		Str("policy", cfg.Upload.Policy).
		Msg("engine ready")
	return e, nil
}

// Events returns the event bus.
func (e *Engine) Events() *events.EventBus {
	return e.eventBus
}

// Close releases the settings store. The event bus is left to its owner.
func (e *Engine) Close() error {
	e.uploads.CancelAll()
	return e.settings.Close()
}

// Config returns the current connection record.
func (e *Engine) Config() models.Credentials {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.creds
}

// SaveConfig persists creds, overwriting the previous record. It takes effect
// at the next login.
func (e *Engine) SaveConfig(ctx context.Context, creds models.Credentials) error {
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.APIKey = strings.TrimSpace(creds.APIKey)

	if err := e.settings.Save(ctx, creds); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	e.mu.Lock()
	e.creds = creds
	e.mu.Unlock()

	e.eventBus.Publish(&events.ConfigChangedEvent{
		BaseEvent: events.NewBase(events.EventConfigChanged),
		ClientID:  creds.ClientID,
		HasKey:    creds.APIKey != "",
	})
	return nil
}

// Login signs in with the saved connection record. It is the only operation
// that populates the registry from scratch.
func (e *Engine) Login(ctx context.Context) (session.Result, error) {
	e.mu.Lock()
	switch e.session.State() {
	case session.StateAuthenticating:
		e.mu.Unlock()
		return session.Result{}, session.ErrLoginInProgress
	case session.StateSignedIn:
		e.mu.Unlock()
		return session.Result{}, session.ErrAlreadySignedIn
	}
	creds := e.creds
	gen := e.generation
	token := e.startLoadingLocked(LoadingLogin)
	e.mu.Unlock()

	res, err := e.session.Login(ctx, creds)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoadingLocked(token)

	if err != nil {
		return session.Result{}, err
	}
	if gen != e.generation {
		// Logged out while signing in.
		return session.Result{}, session.ErrLoginAborted
	}

	e.nav.Reset()
	e.registry.Clear()
	e.registry.Load(constants.RootFolderID, res.Files)
	e.search = ""
	e.metrics.SetListingEntries(e.registry.Count())

	return res, nil
}

// Logout ends the session unconditionally: the registry is cleared,
// navigation goes back to root, uploads are cancelled and the search is reset.
func (e *Engine) Logout() {
	e.mu.Lock()
	e.generation++
	e.session.Logout()
	cancelled := e.uploads.CancelAll()
	e.uploadGen = make(map[string]pendingUpload)
	e.registry.Clear()
	e.nav.Reset()
	e.search = ""
	if e.loading {
		e.loadingToken++
		e.loading = false
		e.eventBus.PublishLoading(false, e.loadingReason)
	}
	e.metrics.SetListingEntries(0)
	e.mu.Unlock()

	if cancelled > 0 {
		e.logger.Info().Int("uploads", cancelled).Msg("cancelled uploads on logout")
	}
}

// Authenticated reports whether the session is signed in.
func (e *Engine) Authenticated() bool {
	return e.session.Authenticated()
}

// User returns the signed-in identity, or nil.
func (e *Engine) User() *models.UserIdentity {
	return e.session.User()
}

// Mode returns the session mode, empty when signed out.
func (e *Engine) Mode() session.Mode {
	return e.session.Mode()
}

// History returns the folder path from root to the current folder.
func (e *Engine) History() []models.FolderRef {
	return e.nav.History()
}

// Path returns the breadcrumb string, e.g. "My Drive / Orbit Design Assets".
func (e *Engine) Path() string {
	return e.nav.Path()
}

// Descend opens folder id and refreshes the listing.
func (e *Engine) Descend(ctx context.Context, id, name string) error {
	e.mu.Lock()
	if !e.session.Authenticated() {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	if err := e.nav.Descend(id, name); err != nil {
		e.mu.Unlock()
		return err
	}
	e.metrics.RecordNavigation("down")
	e.publishFolderLocked()
	e.mu.Unlock()

	return e.refresh(ctx, id)
}

// Ascend goes to the parent folder. At root it returns false and does nothing.
func (e *Engine) Ascend(ctx context.Context) (bool, error) {
	e.mu.Lock()
	if !e.session.Authenticated() {
		e.mu.Unlock()
		return false, ErrNotSignedIn
	}
	if !e.nav.Ascend() {
		e.mu.Unlock()
		return false, nil
	}
	e.metrics.RecordNavigation("up")
	e.publishFolderLocked()
	parent := e.nav.Current().ID
	e.mu.Unlock()

	return true, e.refresh(ctx, parent)
}

// Open descends into the folder entry with id in the current listing.
func (e *Engine) Open(ctx context.Context, entryID string) error {
	e.mu.Lock()
	if !e.session.Authenticated() {
		e.mu.Unlock()
		return ErrNotSignedIn
	}
	entry, ok := e.registry.FindByID(entryID)
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	if !entry.IsFolder() {
		return fmt.Errorf("%w: %s", ErrNotFolder, entry.Name)
	}
	return e.Descend(ctx, entry.ID, entry.Name)
}

// refresh waits out the navigation latency (demo) or lists the folder (live,
// unless already loaded) with loading raised, then activates the folder's listing.
func (e *Engine) refresh(ctx context.Context, folderID string) error {
	e.mu.Lock()
	gen := e.generation
	live := e.session.Mode() == session.ModeLive
	cached := e.registry.HasPartition(folderID)
	token := e.startLoadingLocked(LoadingNavigate)
	e.mu.Unlock()

	var (
		files   []models.FileEntry
		listErr error
	)
	timer := cloud.StartTimer(e.logger, "refresh "+folderID)
	switch {
	case !live:
		listErr = sleep(ctx, e.cfg.Latency.Navigation)
	case !cached:
		files, listErr = e.session.Storage().ListFolder(ctx, folderID)
	}
	timer.StopWithCount(len(files))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoadingLocked(token)

	if gen != e.generation {
		return nil
	}
	if listErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.Error().Err(listErr).Str("folder", folderID).Msg("failed to list folder")
		return fmt.Errorf("failed to list %s: %w", folderID, listErr)
	}
	if !live {
		// Demo mode keeps one flat working set.
		return nil
	}
	if !cached {
		e.registry.Load(folderID, files)
	}
	// A later navigation may have moved on already.
	if e.nav.Current().ID == folderID {
		e.registry.SetActive(folderID)
		e.metrics.SetListingEntries(e.registry.Count())
	}
	return nil
}

// Search sets the filter applied to the listing.
func (e *Engine) Search(term string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.Authenticated() {
		return ErrNotSignedIn
	}
	if term == e.search {
		return nil
	}
	e.search = term
	e.eventBus.Publish(&events.SearchChangedEvent{
		BaseEvent: events.NewBase(events.EventSearchChanged),
		Term:      term,
	})
	return nil
}

// SearchTerm returns the current filter.
func (e *Engine) SearchTerm() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.search
}

// List returns the filtered active listing.
func (e *Engine) List() []models.FileEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.List(e.search)
}

// SetViewMode switches between grid and list.
func (e *Engine) SetViewMode(mode view.ViewMode) error {
	if mode != view.ModeGrid && mode != view.ModeList {
		return config.ErrInvalidViewMode
	}
	e.mu.Lock()
	e.viewMode = mode
	e.mu.Unlock()
	return nil
}

// ViewMode returns the current layout.
func (e *Engine) ViewMode() view.ViewMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewMode
}

// Loading reports whether a login or folder switch is settling.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// Uploading reports whether an upload holds the slot.
func (e *Engine) Uploading() bool {
	return e.uploads.InFlight()
}

// Uploads returns snapshots of recent upload transactions.
func (e *Engine) Uploads() []upload.Info {
	return e.uploads.Transactions()
}

// Page projects the current state for rendering.
func (e *Engine) Page() view.Page {
	e.mu.Lock()
	in := view.Input{
		History:   e.nav.History(),
		Entries:   e.registry.Entries(),
		Search:    e.search,
		Mode:      e.viewMode,
		Uploading: e.uploads.InFlight(),
		Loading:   e.loading,
		User:      e.session.User(),
	}
	e.mu.Unlock()

	return view.Project(in)
}

// BeginUpload starts an upload into the current folder. Every handle must be
// finished with CompleteUpload or released with CancelUpload; until then it
// holds its place in the upload queue.
func (e *Engine) BeginUpload(desc *models.FileDescriptor) (*upload.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.session.Authenticated() {
		return nil, ErrNotSignedIn
	}

	target := upload.Target{}
	folderID := constants.RootFolderID
	if e.session.Mode() == session.ModeLive {
		folderID = e.nav.Current().ID
		if up, ok := e.session.Storage().(cloud.Uploader); ok {
			target = upload.Target{FolderID: folderID, Uploader: up}
		}
	}

	h, err := e.uploads.BeginTo(desc, target)
	if err != nil {
		return nil, err
	}
	e.uploadGen[h.ID()] = pendingUpload{generation: e.generation, folderID: folderID}
	return h, nil
}

// CompleteUpload finishes an upload and inserts its entry at the top of the
// listing it was started from. A completion from an earlier session is
// dropped with ErrNotSignedIn.
func (e *Engine) CompleteUpload(ctx context.Context, h *upload.Handle) (models.FileEntry, error) {
	if h == nil {
		return models.FileEntry{}, upload.ErrUploadWithoutDescriptor
	}

	entry, err := e.uploads.Complete(ctx, h)

	e.mu.Lock()
	defer e.mu.Unlock()

	pending, ok := e.uploadGen[h.ID()]
	delete(e.uploadGen, h.ID())

	if err != nil {
		return models.FileEntry{}, err
	}
	if !ok || pending.generation != e.generation {
		e.logger.Info().Str("name", entry.Name).Msg("dropping upload completed after logout")
		return models.FileEntry{}, ErrNotSignedIn
	}

	e.registry.InsertInto(pending.folderID, entry)
	e.metrics.SetListingEntries(e.registry.Count())
	return entry, nil
}

// CancelUpload releases a handle that will not be completed. A queued upload
// leaves the queue; an active one frees the slot for the next.
func (e *Engine) CancelUpload(h *upload.Handle) {
	if h == nil {
		return
	}
	e.uploads.Cancel(h)

	e.mu.Lock()
	delete(e.uploadGen, h.ID())
	e.mu.Unlock()
}

// Upload is BeginUpload followed by CompleteUpload.
func (e *Engine) Upload(ctx context.Context, desc *models.FileDescriptor) (models.FileEntry, error) {
	h, err := e.BeginUpload(desc)
	if err != nil {
		return models.FileEntry{}, err
	}
	return e.CompleteUpload(ctx, h)
}

func (e *Engine) publishFolderLocked() {
	current := e.nav.Current()
	e.eventBus.Publish(&events.FolderChangedEvent{
		BaseEvent: events.NewBase(events.EventFolderChanged),
		FolderID:  current.ID,
		Name:      current.Name,
		Depth:     e.nav.Depth(),
	})
}

// startLoadingLocked raises loading and returns a token that only the
// matching stopLoadingLocked can clear.
func (e *Engine) startLoadingLocked(reason string) uint64 {
	e.loadingToken++
	if !e.loading || e.loadingReason != reason {
		e.loading = true
		e.loadingReason = reason
		e.eventBus.PublishLoading(true, reason)
	}
	return e.loadingToken
}

func (e *Engine) stopLoadingLocked(token uint64) {
	if token != e.loadingToken || !e.loading {
		return
	}
	e.loading = false
	e.eventBus.PublishLoading(false, e.loadingReason)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
