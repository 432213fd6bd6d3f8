package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

// gcsConnection implements Connection on a Google Cloud Storage bucket.
type gcsConnection struct {
	client     *gcs.Client
	bucket     string
	basePrefix string
}

var _ Connection = (*gcsConnection)(nil)

// NewGCSConnection creates a Connection backed by a GCS bucket. When a
// credentials file is configured it is used instead of application default
// credentials.
func NewGCSConnection(ctx context.Context, cfg *config.StorageConfig) (Connection, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs storage: bucket must be specified")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage: failed to create client: %w", err)
	}
	return &gcsConnection{
		client:     client,
		bucket:     cfg.Bucket,
		basePrefix: cfg.BasePath,
	}, nil
}

func (c *gcsConnection) Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error {
	w := c.client.Bucket(c.bucket).Object(c.objectPath(objectName)).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", objectName, err)
	}
	logger.Debugf("Uploaded object 'gs://%s/%s'.", c.bucket, c.objectPath(objectName))
	return nil
}

func (c *gcsConnection) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	r, err := c.client.Bucket(c.bucket).Object(c.objectPath(objectName)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object '%s': %w", objectName, err)
	}
	return r, nil
}

func (c *gcsConnection) ListObjects(ctx context.Context, prefix string, fn func(objectName string) error) error {
	it := c.client.Bucket(c.bucket).Objects(ctx, &gcs.Query{Prefix: c.objectPath(prefix)})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects with prefix '%s': %w", prefix, err)
		}
		name := attrs.Name
		if c.basePrefix != "" {
			name = name[len(c.basePrefix)+1:]
		}
		if err := fn(name); err != nil {
			return err
		}
	}
}

func (c *gcsConnection) DeleteObject(ctx context.Context, objectName string) error {
	err := c.client.Bucket(c.bucket).Object(c.objectPath(objectName)).Delete(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent object '%s' (gcs storage).", objectName)
			return nil
		}
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}

func (c *gcsConnection) Close() error {
	return c.client.Close()
}

func (c *gcsConnection) Type() string {
	return "gcs"
}

func (c *gcsConnection) objectPath(objectName string) string {
	if c.basePrefix == "" {
		return objectName
	}
	return path.Join(c.basePrefix, objectName)
}
