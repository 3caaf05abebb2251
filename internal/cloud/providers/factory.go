// Package providers creates the RemoteStorage selected by the [orbit.live]
// configuration section.
package providers

import (
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/cloud/providers/azure"
	"github.com/orbit-drive/orbit/internal/cloud/providers/s3"
	"github.com/orbit-drive/orbit/internal/config"
	orbithttp "github.com/orbit-drive/orbit/internal/http"
	"github.com/orbit-drive/orbit/internal/logging"
)

// Factory creates providers based on the configured provider name.
type Factory struct {
	httpClient *nethttp.Client
	logger     *logging.Logger
}

// NewFactory creates a new provider factory. A nil httpClient gets the
// shared retrying client.
func NewFactory(httpClient *nethttp.Client, logger *logging.Logger) *Factory {
	if logger == nil {
		logger = logging.Nop()
	}
	if httpClient == nil {
		httpClient = orbithttp.NewClient(logger.Named("http"))
	}
	return &Factory{httpClient: httpClient, logger: logger}
}

// New returns the storage for cfg. An empty provider yields cloud.Unavailable.
func (f *Factory) New(cfg config.LiveConfig) (cloud.RemoteStorage, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return cloud.Unavailable{}, nil
	case "s3":
		return s3.NewProvider(s3.Config{
			Region:     cfg.Region,
			Bucket:     cfg.Bucket,
			Endpoint:   cfg.Endpoint,
			HTTPClient: f.httpClient,
			Logger:     f.logger.Named("s3"),
		})
	case "azure":
		return azure.NewProvider(azure.Config{
			Container:  cfg.Container,
			AccountURL: cfg.AccountURL,
			HTTPClient: f.httpClient,
			Logger:     f.logger.Named("azure"),
		})
	default:
		return nil, fmt.Errorf("unsupported live provider: %s", cfg.Provider)
	}
}
