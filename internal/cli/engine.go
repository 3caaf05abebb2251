package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/orbit-drive/orbit/internal/cloud/providers"
	"github.com/orbit-drive/orbit/internal/config"
	"github.com/orbit-drive/orbit/internal/core"
	"github.com/orbit-drive/orbit/internal/events"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/metrics"
	"github.com/orbit-drive/orbit/internal/models"
	"github.com/orbit-drive/orbit/internal/settings"
)

// newEngine wires an Engine from the app config: settings backend, live
// provider and metrics. The caller closes the engine.
func newEngine(ctx context.Context, cfg *config.AppConfig, bus *events.EventBus, log *logging.Logger) (*core.Engine, *metrics.Metrics, error) {
	store, err := settings.OpenStore(cfg.Settings)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	storage, err := providers.NewFactory(nil, log.Named("storage")).New(cfg.Live)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	m := metrics.New(prometheus.NewRegistry())

	engine, err := core.NewEngine(ctx, core.Options{
		Config:      cfg,
		Settings:    settings.New(store, log.Named("settings")),
		Credentials: models.Credentials{ClientID: clientID, APIKey: apiKey},
		Storage:     storage,
		EventBus:    bus,
		Logger:      log.Named("core"),
		Metrics:     m,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return engine, m, nil
}
