// Package cloud defines the remote storage collaborator used for live
// sessions, and the stub used when no live backend is reachable.
package cloud

import (
	"context"
	"io"

	"github.com/orbit-drive/orbit/internal/models"
)

// RemoteStorage authenticates a connection record and lists folders.
// Folder ids are provider specific; "root" always names the top level.
type RemoteStorage interface {
	// Authenticate verifies creds and returns the identity to show for the session.
	// Failures are *AuthError, *StorageError or ErrLiveConnectionUnavailable.
	Authenticate(ctx context.Context, creds models.Credentials) (models.UserIdentity, error)

	// ListFolder returns the entries directly inside folderID.
	ListFolder(ctx context.Context, folderID string) ([]models.FileEntry, error)
}

// Uploader is implemented by storages that accept file content.
type Uploader interface {
	// Upload stores content as desc.Name inside folderID and returns the new entry.
	Upload(ctx context.Context, folderID string, desc models.FileDescriptor, content io.Reader) (models.FileEntry, error)
}

// Named is implemented by storages that report a provider name for logs and metrics.
type Named interface {
	Name() string
}

// ProviderName returns the storage's name, or "unknown".
func ProviderName(s RemoteStorage) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "unknown"
}
