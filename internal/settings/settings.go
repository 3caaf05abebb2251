package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/models"
)

// Settings reads and writes the connection record under a fixed key.
type Settings struct {
	store  Store
	logger *logging.Logger
}

// New creates Settings over store. A nil logger discards output.
func New(store Store, logger *logging.Logger) *Settings {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Settings{store: store, logger: logger}
}

// Load returns the stored connection record. A missing record yields the
// empty record, which selects demo mode.
func (s *Settings) Load(ctx context.Context) (models.Credentials, error) {
	raw, found, err := s.store.Get(ctx, constants.SettingsKey)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to load connection settings: %w", err)
	}
	if !found {
		s.logger.Debug().Msg("no stored connection settings")
		return models.Credentials{}, nil
	}

	var creds models.Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return models.Credentials{}, fmt.Errorf("failed to decode connection settings: %w", err)
	}

	s.logger.Debug().Str("client_id", creds.ClientID).Msg("loaded connection settings")
	return creds, nil
}

// Save overwrites the stored record wholesale.
func (s *Settings) Save(ctx context.Context, creds models.Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode connection settings: %w", err)
	}
	if err := s.store.Set(ctx, constants.SettingsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save connection settings: %w", err)
	}

	s.logger.Info().Str("client_id", creds.ClientID).Bool("api_key_set", creds.APIKey != "").Msg("connection settings saved")
	return nil
}

// Close releases the underlying store.
func (s *Settings) Close() error {
	return s.store.Close()
}
