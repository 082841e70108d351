package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores listing photos in an S3-compatible bucket and returns the
// URL the catalog can serve to guests.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Client is the MinIO-backed Uploader. The photo bucket is created lazily on
// the first upload and opened for anonymous reads, since photo URLs are
// embedded directly in listing documents.
type Client struct {
	bucket     string
	publicBase string
	api        *minio.Client
	logger     *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	api, err := minio.New(hostOnly(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &Client{
		bucket:     bucket,
		publicBase: strings.TrimRight(base, "/"),
		api:        api,
		logger:     logger,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := c.api.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.publicBase, c.bucket, key)
	if c.logger != nil {
		c.logger.Info("photo uploaded", "bucket", c.bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() {
		exists, err := c.api.BucketExists(ctx, c.bucket)
		if err != nil {
			c.initErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.initErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.bucket)
		if err := c.api.SetBucketPolicy(ctx, c.bucket, policy); err != nil {
			c.initErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.initErr
}

// hostOnly strips the scheme; the minio client wants a bare host:port.
func hostOnly(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader rejects uploads when object storage is not configured.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3: uploader is not configured")
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
