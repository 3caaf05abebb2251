// Package azure provides an Azure Blob implementation of cloud.RemoteStorage.
// Folders are "/"-delimited blob name prefixes inside one container.
package azure

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/models"
)

const providerName = "azure"

var errNotAuthenticated = errors.New("not authenticated")

// Config describes the container to browse.
type Config struct {
	Container  string
	AccountURL string // optional; defaults to https://<account>.blob.core.windows.net/

	HTTPClient *nethttp.Client
	Logger     *logging.Logger
}

// Provider browses one container with a shared key supplied at login.
//
// Thread-safe: All operations are safe for concurrent use.
type Provider struct {
	cfg      Config
	logger   *logging.Logger
	clientMu sync.Mutex
	client   *azblob.Client
}

// NewProvider validates cfg. No network call is made until Authenticate.
func NewProvider(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.Container) == "" {
		return nil, fmt.Errorf("container is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Provider{cfg: cfg, logger: logger}, nil
}

func (p *Provider) Name() string { return providerName }

// ServiceURL returns the blob endpoint for account.
func (p *Provider) ServiceURL(account string) string {
	if p.cfg.AccountURL != "" {
		return p.cfg.AccountURL
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/", account)
}

// Authenticate builds a shared-key client from creds (account name, account
// key) and checks that the container is reachable with it.
func (p *Provider) Authenticate(ctx context.Context, creds models.Credentials) (models.UserIdentity, error) {
	if creds.ClientID == "" || creds.APIKey == "" {
		return models.UserIdentity{}, &cloud.AuthError{Provider: providerName, Err: errors.New("account name and account key are both required")}
	}

	sharedKey, err := azblob.NewSharedKeyCredential(creds.ClientID, creds.APIKey)
	if err != nil {
		return models.UserIdentity{}, &cloud.AuthError{Provider: providerName, Err: fmt.Errorf("invalid account key: %w", err)}
	}

	opts := &azblob.ClientOptions{}
	if p.cfg.HTTPClient != nil {
		opts.ClientOptions = azcore.ClientOptions{
			Transport: p.cfg.HTTPClient,
		}
	}

	client, err := azblob.NewClientWithSharedKeyCredential(p.ServiceURL(creds.ClientID), sharedKey, opts)
	if err != nil {
		return models.UserIdentity{}, &cloud.StorageError{Provider: providerName, Op: "configure", Err: fmt.Errorf("failed to create Azure client: %w", err)}
	}

	timer := cloud.StartTimer(p.logger, "azure container properties")
	_, err = client.ServiceClient().NewContainerClient(p.cfg.Container).GetProperties(ctx, nil)
	timer.Stop()
	if err != nil {
		return models.UserIdentity{}, cloud.WrapError(providerName, "probe", p.cfg.Container, err)
	}

	p.clientMu.Lock()
	p.client = client
	p.clientMu.Unlock()

	p.logger.Info().Str("account", creds.ClientID).Str("container", p.cfg.Container).Msg("connected to Azure container")

	return models.UserIdentity{
		DisplayName: creds.ClientID,
		Email:       fmt.Sprintf("%s/%s", strings.TrimSuffix(p.ServiceURL(creds.ClientID), "/"), p.cfg.Container),
	}, nil
}

func (p *Provider) getClient() (*azblob.Client, error) {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	if p.client == nil {
		return nil, errNotAuthenticated
	}
	return p.client, nil
}

// ListFolder lists the immediate children of folderID: virtual directories
// first, then blobs.
func (p *Provider) ListFolder(ctx context.Context, folderID string) ([]models.FileEntry, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, &cloud.StorageError{Provider: providerName, Op: "list", Path: folderID, Err: err}
	}

	prefix := cloud.FolderPrefix(folderID)
	opts := &container.ListBlobsHierarchyOptions{
		MaxResults: to32(constants.MaxListKeys),
	}
	if prefix != "" {
		opts.Prefix = &prefix
	}

	timer := cloud.StartTimer(p.logger, "azure list "+prefix)

	var folders, files []models.FileEntry
	pager := client.ServiceClient().NewContainerClient(p.cfg.Container).NewListBlobsHierarchyPager("/", opts)
	for pages := 0; pager.More() && pages < constants.MaxPaginationPages; pages++ {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, cloud.WrapError(providerName, "list", prefix, err)
		}
		if resp.Segment == nil {
			continue
		}
		for _, bp := range resp.Segment.BlobPrefixes {
			if bp.Name != nil {
				folders = append(folders, cloud.FolderEntry(*bp.Name))
			}
		}
		for _, item := range resp.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			var size int64
			var modified time.Time
			var contentType string
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					size = *props.ContentLength
				}
				if props.LastModified != nil {
					modified = *props.LastModified
				}
				if props.ContentType != nil {
					contentType = *props.ContentType
				}
			}
			files = append(files, cloud.ObjectEntry(*item.Name, size, modified, contentType))
		}
	}

	entries := append(folders, files...)
	timer.StopWithCount(len(entries))
	return entries, nil
}

// Upload streams content into a block blob under the folder's prefix.
func (p *Provider) Upload(ctx context.Context, folderID string, desc models.FileDescriptor, content io.Reader) (models.FileEntry, error) {
	client, err := p.getClient()
	if err != nil {
		return models.FileEntry{}, &cloud.StorageError{Provider: providerName, Op: "upload", Path: desc.Name, Err: err}
	}

	name := cloud.ObjectKey(folderID, desc.Name)
	contentType := cloud.ContentType(desc)

	timer := cloud.StartTimer(p.logger, "azure upload "+name)
	_, err = client.UploadStream(ctx, p.cfg.Container, name, content, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	timer.Stop()
	if err != nil {
		return models.FileEntry{}, cloud.WrapError(providerName, "upload", name, err)
	}

	return cloud.ObjectEntry(name, int64(desc.SizeBytes), time.Now(), contentType), nil
}

func to32(v int32) *int32 { return &v }

// Compile-time interface verification
var (
	_ cloud.RemoteStorage = (*Provider)(nil)
	_ cloud.Uploader      = (*Provider)(nil)
	_ cloud.Named         = (*Provider)(nil)
)
