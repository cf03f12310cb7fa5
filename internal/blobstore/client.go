// Package blobstore uploads published videos to S3-compatible object storage
// and returns the durable address recorded in the match document.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"matchvault/internal/config"
)

// Gateway is the blob store contract the pipeline consumes.
type Gateway interface {
	// Upload stores a local file under key and returns its durable address.
	Upload(ctx context.Context, localPath, key string) (string, error)
	// Exists reports whether an object is already stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Download fetches the object at key into localPath.
	Download(ctx context.Context, key, localPath string) error
	// URLFor returns the durable address an object at key would have.
	URLFor(key string) string
}

// Client implements Gateway using the MinIO SDK.
type Client struct {
	api           *minio.Client
	bucket        string
	publicBaseURL string
}

// New constructs a blob store client from configuration.
func New(cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.Blob.Bucket) == "" {
		return nil, errors.New("blob bucket required")
	}

	api, err := minio.New(cfg.Blob.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Blob.AccessKey, cfg.Blob.SecretKey, ""),
		Secure: cfg.Blob.UseSSL,
		Region: cfg.Blob.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init blob client: %w", err)
	}

	baseURL := cfg.Blob.PublicBaseURL
	if baseURL == "" {
		scheme := "https"
		if !cfg.Blob.UseSSL {
			scheme = "http"
		}
		baseURL = fmt.Sprintf("%s://%s.%s", scheme, cfg.Blob.Bucket, cfg.Blob.Endpoint)
	}

	return &Client{
		api:           api,
		bucket:        cfg.Blob.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload stores a local file under key and returns the durable address.
func (c *Client) Upload(ctx context.Context, localPath, key string) (string, error) {
	if strings.TrimSpace(localPath) == "" {
		return "", errors.New("local path required")
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("object key required")
	}

	_, err := c.api.FPutObject(ctx, c.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "video/mp4",
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return c.URLFor(key), nil
}

// Exists reports whether an object is already stored under key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.api.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if resp := minio.ToErrorResponse(err); resp.StatusCode == 404 {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", key, err)
}

// Download fetches the object at key into localPath.
func (c *Client) Download(ctx context.Context, key, localPath string) error {
	if err := c.api.FGetObject(ctx, c.bucket, key, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("download %s: %w", key, err)
	}
	return nil
}

// URLFor returns the durable address an object at key would have.
func (c *Client) URLFor(key string) string {
	return c.publicBaseURL + "/" + url.PathEscape(strings.TrimLeft(key, "/"))
}

var _ Gateway = (*Client)(nil)
