package cloud

import (
	"context"

	"github.com/orbit-drive/orbit/internal/models"
)

// Unavailable is the RemoteStorage used when no live provider is configured.
// Every call fails with ErrLiveConnectionUnavailable.
type Unavailable struct{}

func (Unavailable) Authenticate(context.Context, models.Credentials) (models.UserIdentity, error) {
	return models.UserIdentity{}, ErrLiveConnectionUnavailable
}

func (Unavailable) ListFolder(context.Context, string) ([]models.FileEntry, error) {
	return nil, ErrLiveConnectionUnavailable
}

func (Unavailable) Name() string { return "unavailable" }
