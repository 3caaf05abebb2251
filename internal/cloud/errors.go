package cloud

import (
	"errors"
	"fmt"

	orbithttp "github.com/orbit-drive/orbit/internal/http"
)

// ErrLiveConnectionUnavailable means no live backend can be reached from this
// environment. Callers fall back to demo mode.
var ErrLiveConnectionUnavailable = errors.New("live connection unavailable in this environment")

// AuthError reports rejected credentials.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StorageError reports a failed storage operation.
type StorageError struct {
	Provider string
	Op       string // "list", "upload", "probe"
	Path     string
	Err      error
}

func (e *StorageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Provider, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the operation may succeed.
func (e *StorageError) Temporary() bool {
	switch orbithttp.ClassifyError(e.Err) {
	case orbithttp.ErrorTypeNetwork, orbithttp.ErrorTypeRetryable:
		return true
	default:
		return false
	}
}

// WrapError converts an SDK error into *AuthError or *StorageError.
// Credential failures become *AuthError whatever the operation.
func WrapError(provider, op, path string, err error) error {
	if err == nil {
		return nil
	}
	var authErr *AuthError
	var storageErr *StorageError
	if errors.As(err, &authErr) || errors.As(err, &storageErr) {
		return err
	}
	if orbithttp.ClassifyError(err) == orbithttp.ErrorTypeCredential {
		return &AuthError{Provider: provider, Err: err}
	}
	return &StorageError{Provider: provider, Op: op, Path: path, Err: err}
}

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
