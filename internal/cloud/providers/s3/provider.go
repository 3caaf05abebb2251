// Package s3 provides an S3 implementation of cloud.RemoteStorage.
// Folders are "/"-delimited key prefixes inside one bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/orbit-drive/orbit/internal/cloud"
	"github.com/orbit-drive/orbit/internal/constants"
	"github.com/orbit-drive/orbit/internal/logging"
	"github.com/orbit-drive/orbit/internal/models"
)

const providerName = "s3"

var errNotAuthenticated = errors.New("not authenticated")

// Config describes the bucket to browse.
type Config struct {
	Region   string
	Bucket   string
	Endpoint string // optional S3-compatible endpoint (MinIO, R2); enables path-style addressing

	HTTPClient *nethttp.Client
	Logger     *logging.Logger
}

// Provider browses one bucket with static credentials supplied at login.
//
// Thread-safe: All operations are safe for concurrent use.
type Provider struct {
	cfg      Config
	logger   *logging.Logger
	clientMu sync.Mutex
	client   *s3.Client
}

// NewProvider validates cfg. No network call is made until Authenticate.
func NewProvider(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Provider{cfg: cfg, logger: logger}, nil
}

func (p *Provider) Name() string { return providerName }

// Authenticate builds a client from the access key pair in creds and checks
// that the bucket is reachable with it.
func (p *Provider) Authenticate(ctx context.Context, creds models.Credentials) (models.UserIdentity, error) {
	if creds.ClientID == "" || creds.APIKey == "" {
		return models.UserIdentity{}, &cloud.AuthError{Provider: providerName, Err: errors.New("access key id and secret key are both required")}
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(p.cfg.Region),
		config.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(creds.ClientID, creds.APIKey, "")),
	}
	if p.cfg.HTTPClient != nil {
		opts = append(opts, config.WithHTTPClient(p.cfg.HTTPClient))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return models.UserIdentity{}, &cloud.StorageError{Provider: providerName, Op: "configure", Err: fmt.Errorf("failed to load AWS config: %w", err)}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if p.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(p.cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	timer := cloud.StartTimer(p.logger, "s3 head bucket")
	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.cfg.Bucket)})
	timer.Stop()
	if err != nil {
		return models.UserIdentity{}, cloud.WrapError(providerName, "probe", p.cfg.Bucket, err)
	}

	p.clientMu.Lock()
	p.client = client
	p.clientMu.Unlock()

	p.logger.Info().Str("bucket", p.cfg.Bucket).Str("region", p.cfg.Region).Msg("connected to S3 bucket")

	return models.UserIdentity{
		DisplayName: creds.ClientID,
		Email:       "s3://" + p.cfg.Bucket,
	}, nil
}

func (p *Provider) getClient() (*s3.Client, error) {
	p.clientMu.Lock()
	defer p.clientMu.Unlock()
	if p.client == nil {
		return nil, errNotAuthenticated
	}
	return p.client, nil
}

// ListFolder lists the immediate children of folderID: sub-prefixes first,
// then objects, each in key order.
func (p *Provider) ListFolder(ctx context.Context, folderID string) ([]models.FileEntry, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, &cloud.StorageError{Provider: providerName, Op: "list", Path: folderID, Err: err}
	}

	prefix := cloud.FolderPrefix(folderID)
	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(p.cfg.Bucket),
		Delimiter: aws.String("/"),
		MaxKeys:   aws.Int32(constants.MaxListKeys),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	timer := cloud.StartTimer(p.logger, "s3 list "+prefix)

	var folders, files []models.FileEntry
	paginator := s3.NewListObjectsV2Paginator(client, input)
	for pages := 0; paginator.HasMorePages() && pages < constants.MaxPaginationPages; pages++ {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, cloud.WrapError(providerName, "list", prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			folders = append(folders, cloud.FolderEntry(aws.ToString(cp.Prefix)))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix || strings.HasSuffix(key, "/") {
				continue // folder marker object
			}
			files = append(files, cloud.ObjectEntry(key, aws.ToInt64(obj.Size), aws.ToTime(obj.LastModified), ""))
		}
	}

	entries := append(folders, files...)
	timer.StopWithCount(len(entries))
	return entries, nil
}

// Upload stores content under the folder's prefix.
func (p *Provider) Upload(ctx context.Context, folderID string, desc models.FileDescriptor, content io.Reader) (models.FileEntry, error) {
	client, err := p.getClient()
	if err != nil {
		return models.FileEntry{}, &cloud.StorageError{Provider: providerName, Op: "upload", Path: desc.Name, Err: err}
	}

	key := cloud.ObjectKey(folderID, desc.Name)
	contentType := cloud.ContentType(desc)

	timer := cloud.StartTimer(p.logger, "s3 put "+key)
	out, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.Bucket),
		Key:           aws.String(key),
		Body:          content,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(desc.SizeBytes)),
	})
	timer.Stop()
	if err != nil {
		return models.FileEntry{}, cloud.WrapError(providerName, "upload", key, err)
	}

	p.logger.Debug().Str("key", key).Str("etag", aws.ToString(out.ETag)).Msg("object stored")

	entry := cloud.ObjectEntry(key, int64(desc.SizeBytes), timeNow(), contentType)
	return entry, nil
}

// Compile-time interface verification
var (
	_ cloud.RemoteStorage = (*Provider)(nil)
	_ cloud.Uploader      = (*Provider)(nil)
	_ cloud.Named         = (*Provider)(nil)
)
