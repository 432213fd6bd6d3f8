package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tigerroll/vacationspots/internal/support/logger"
)

// localConnection implements Connection on the local file system.
type localConnection struct {
	baseDir string
}

var _ Connection = (*localConnection)(nil)

// NewLocalConnection creates a Connection rooted at baseDir, creating the
// directory if it does not exist.
func NewLocalConnection(baseDir string) (Connection, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage: base path must be specified")
	}
	info, err := os.Stat(baseDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, fmt.Errorf("local storage: failed to create base directory '%s': %w", baseDir, err)
		}
	case err != nil:
		return nil, fmt.Errorf("local storage: failed to stat base directory '%s': %w", baseDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("local storage: '%s' is not a directory", baseDir)
	}
	return &localConnection{baseDir: baseDir}, nil
}

func (c *localConnection) Upload(ctx context.Context, objectName string, data io.Reader, contentType string) error {
	fullPath, err := c.resolvePath(objectName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory '%s': %w", filepath.Dir(fullPath), err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, data); err != nil {
		return fmt.Errorf("failed to write data to file '%s': %w", fullPath, err)
	}
	logger.Debugf("Uploaded object to '%s' (local storage).", fullPath)
	return nil
}

func (c *localConnection) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	fullPath, err := c.resolvePath(objectName)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %w", fullPath, err)
	}
	return file, nil
}

func (c *localConnection) ListObjects(ctx context.Context, prefix string, fn func(objectName string) error) error {
	return filepath.WalkDir(c.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		objectName, err := filepath.Rel(c.baseDir, path)
		if err != nil {
			return err
		}
		objectName = filepath.ToSlash(objectName)
		if prefix != "" && !strings.HasPrefix(objectName, prefix) {
			return nil
		}
		return fn(objectName)
	})
}

func (c *localConnection) DeleteObject(ctx context.Context, objectName string) error {
	fullPath, err := c.resolvePath(objectName)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			logger.Warnf("Attempted to delete non-existent object '%s' (local storage).", fullPath)
			return nil
		}
		return fmt.Errorf("failed to delete file '%s': %w", fullPath, err)
	}
	return nil
}

func (c *localConnection) Close() error {
	return nil
}

func (c *localConnection) Type() string {
	return "local"
}

// resolvePath joins objectName under the base directory and rejects paths
// that escape it.
func (c *localConnection) resolvePath(objectName string) (string, error) {
	fullPath := filepath.Join(c.baseDir, filepath.FromSlash(objectName))

	absBase, err := filepath.Abs(c.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", c.baseDir, err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", fullPath, err)
	}
	// filepath.Rel rather than a string prefix check: a sibling directory
	// sharing the base as a name prefix must not pass.
	rel, err := filepath.Rel(absBase, absFull)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object path '%s' escapes the storage base directory", objectName)
	}
	return fullPath, nil
}
