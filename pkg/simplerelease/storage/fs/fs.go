// Package fs provides a filesystem implementation of the
// simplerelease.BlobStore interface.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// Backend stores artifacts as flat files under a base directory. Names are
// a random UUID plus the original extension, so concurrent writers never
// collide and a write never lands on an existing file.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files, created if missing
}

// New creates a new filesystem storage backend. The base directory is
// created here, once, not per write.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// Write stores the bytes from r under a generated name and returns the
// storage key. O_EXCL guarantees an existing file is never overwritten.
func (b *Backend) Write(ctx context.Context, r io.Reader, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	key := uuid.NewString() + ext
	filePath := filepath.Join(b.baseDir, key)

	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", &simplerelease.StorageError{Backend: "fs", Key: key, Op: "write", Err: err}
	}

	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		os.Remove(filePath)
		return "", &simplerelease.StorageError{Backend: "fs", Key: key, Op: "write", Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return "", &simplerelease.StorageError{Backend: "fs", Key: key, Op: "write", Err: err}
	}

	return key, nil
}

// Open returns a reader for a stored artifact.
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(b.baseDir, key))
	if err != nil {
		return nil, &simplerelease.StorageError{Backend: "fs", Key: key, Op: "open", Err: err}
	}
	return file, nil
}

// Delete removes a stored artifact. Deleting a key that does not exist is
// not an error, so rollback can run unconditionally.
func (b *Backend) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(b.baseDir, key))
	if err != nil && !os.IsNotExist(err) {
		return &simplerelease.StorageError{Backend: "fs", Key: key, Op: "delete", Err: err}
	}
	return nil
}

// BaseDir returns the configured storage root.
func (b *Backend) BaseDir() string {
	return b.baseDir
}
