// Package storage abstracts the object storage backends used for snapshot
// exports. Local file system and Google Cloud Storage backends are provided.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/tigerroll/vacationspots/internal/config"
)

// Connection represents an object storage connection.
type Connection interface {
	// Upload writes data under objectName. Parent directories or prefixes
	// are created as needed.
	Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error
	// Download returns a reader for objectName. The caller must close it.
	Download(ctx context.Context, objectName string) (io.ReadCloser, error)
	// ListObjects calls fn for every object name under prefix.
	ListObjects(ctx context.Context, prefix string, fn func(objectName string) error) error
	// DeleteObject removes objectName. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, objectName string) error
	// Close releases the connection resources.
	Close() error
	// Type identifies the backend ("local" or "gcs").
	Type() string
}

// New creates a Connection for the configured provider.
func New(ctx context.Context, cfg *config.StorageConfig) (Connection, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalConnection(cfg.BasePath)
	case "gcs":
		return NewGCSConnection(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage provider: '%s'", cfg.Provider)
	}
}
