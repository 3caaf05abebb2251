// Package session owns authentication state and the signed-in identity.
//
// A session moves signed_out -> authenticating -> signed_in and back to
// signed_out on logout. Empty credentials select the demo path; anything
// else goes to the configured RemoteStorage, falling back to demo with an
// advisory when the live backend cannot serve the login.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/metrics"
	"github.com/orbit-drive/orbit/internal/models"
)

// State is the authentication state.
type State string

const (
	StateSignedOut      State = "signed_out"
	StateAuthenticating State = "authenticating"
	StateSignedIn       State = "signed_in"
)

// Mode says where the session's data comes from.
type Mode string

const (
	ModeDemo Mode = "demo"
	ModeLive Mode = "live"
)

// Session errors
var (
	ErrLoginInProgress = errors.New("login already in progress")
	ErrAlreadySignedIn = errors.New("already signed in")
	ErrLoginAborted    = errors.New("login aborted by logout")
)

// Result is what a successful login hands to the caller.
type Result struct {
	User     models.UserIdentity
	Files    []models.FileEntry
	Mode     Mode
	Advisory string // set when a live login fell back to demo
}

// Options configures a Manager.
type Options struct {
	Storage  cloud.RemoteStorage // nil means cloud.Unavailable
	Latency  time.Duration       // simulated demo login delay
	EventBus *events.EventBus
	Logger   *logging.Logger
	Metrics  *metrics.Metrics
}

// Manager is the session state machine.
// Thread-safe for concurrent access.
type Manager struct {
	storage  cloud.RemoteStorage
	latency  time.Duration
	eventBus *events.EventBus
	logger   *logging.Logger
	metrics  *metrics.Metrics

	state State
	mode  Mode
	user  *models.UserIdentity

	// attempt is bumped by every Login and Logout. A login applies its
	// result only while its attempt is still the latest.
	attempt uint64

	mu sync.RWMutex
}

// NewManager creates a signed-out Manager.
func NewManager(opts Options) *Manager {
	storage := opts.Storage
	if storage == nil {
		storage = cloud.Unavailable{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		storage:  storage,
		latency:  opts.Latency,
		eventBus: opts.EventBus,
		logger:   logger,
		metrics:  opts.Metrics,
		state:    StateSignedOut,
	}
}

// Storage returns the remote storage used for live logins.
func (m *Manager) Storage() cloud.RemoteStorage {
	return m.storage
}

// Login authenticates creds. Empty creds take the demo path. A live failure
// of any kind publishes the advisory and continues as demo, so the session is
// never left authenticating. Cancelling ctx restores signed_out.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (Result, error) {
	m.mu.Lock()
	switch m.state {
	case StateAuthenticating:
		m.mu.Unlock()
		return Result{}, ErrLoginInProgress
	case StateSignedIn:
		m.mu.Unlock()
		return Result{}, ErrAlreadySignedIn
	}
	m.attempt++
	attempt := m.attempt
	m.state = StateAuthenticating
	m.mu.Unlock()
	m.publish(StateSignedOut, StateAuthenticating, "", "")

	res, err := m.authenticate(ctx, creds)
	if err != nil {
		m.mu.Lock()
		current := m.attempt == attempt
		if current {
			m.state = StateSignedOut
		}
		m.mu.Unlock()
		if current {
			m.publish(StateAuthenticating, StateSignedOut, "", "")
		}
		m.logger.Info().Err(err).Msg("login cancelled")
		return Result{}, err
	}

	m.mu.Lock()
	if m.attempt != attempt {
		// Logout ran while we were waiting, possibly followed by a new login.
		m.mu.Unlock()
		return Result{}, ErrLoginAborted
	}
	user := res.User
	m.state = StateSignedIn
	m.mode = res.Mode
	m.user = &user
	m.mu.Unlock()

	m.publish(StateAuthenticating, StateSignedIn, res.Mode, user.Email)
	m.metrics.RecordLogin(string(res.Mode))
	m.logger.Info().
		Str("mode", string(res.Mode)).
		Str("email", user.Email).
		Int("entries", len(res.Files)).
		Msg("signed in")
	return res, nil
}

// Logout is unconditional: the session becomes signed_out and the user is cleared.
func (m *Manager) Logout() {
	m.mu.Lock()
	old := m.state
	m.attempt++
	m.state = StateSignedOut
	m.mode = ""
	m.user = nil
	m.mu.Unlock()

	if old != StateSignedOut {
		m.publish(old, StateSignedOut, "", "")
		m.logger.Info().Msg("signed out")
	}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Authenticated reports whether the session is signed in.
func (m *Manager) Authenticated() bool {
	return m.State() == StateSignedIn
}

// Mode returns the session mode, empty when not signed in.
func (m *Manager) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// User returns a copy of the signed-in identity, or nil.
func (m *Manager) User() *models.UserIdentity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) authenticate(ctx context.Context, creds models.Credentials) (Result, error) {
	if creds.IsEmpty() {
		return m.demo(ctx, "")
	}

	provider := cloud.ProviderName(m.storage)
	user, err := m.storage.Authenticate(ctx, creds)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return m.fallback(ctx, provider, err)
	}

	files, err := m.storage.ListFolder(ctx, constants.RootFolderID)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return m.fallback(ctx, provider, fmt.Errorf("initial listing: %w", err))
	}

	return Result{User: user, Files: files, Mode: ModeLive}, nil
}

func (m *Manager) fallback(ctx context.Context, provider string, cause error) (Result, error) {
	m.logger.Warn().Err(cause).Str("provider", provider).Msg("live login unavailable, loading demo mode")
	m.metrics.RecordLiveFallback()
	m.eventBus.PublishAdvisory(constants.LiveUnavailableAdvisory, cause)
	return m.demo(ctx, constants.LiveUnavailableAdvisory)
}

func (m *Manager) demo(ctx context.Context, advisory string) (Result, error) {
	if err := sleep(ctx, m.latency); err != nil {
		return Result{}, err
	}
	return Result{
		User:     DemoUser,
		Files:    DemoListing(),
		Mode:     ModeDemo,
		Advisory: advisory,
	}, nil
}

func (m *Manager) publish(oldState, newState State, mode Mode, email string) {
	m.eventBus.Publish(&events.SessionChangedEvent{
		BaseEvent: events.NewBase(events.EventSessionChanged),
		OldState:  string(oldState),
		NewState:  string(newState),
		Mode:      string(mode),
		Email:     email,
	})
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
