// Package memory provides an in-memory simplerelease.BlobStore, intended
// for tests and local development.
package memory

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// Backend keeps artifact bytes in a map guarded by a RWMutex.
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// failWrites makes every Write fail; used to exercise storage-error
	// paths in tests.
	failWrites bool
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{objects: make(map[string][]byte)}
}

// FailWrites toggles forced write failures.
func (b *Backend) FailWrites(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites = fail
}

func (b *Backend) Write(ctx context.Context, r io.Reader, fileName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &simplerelease.StorageError{Backend: "memory", Op: "write", Err: err}
	}

	key := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failWrites {
		return "", &simplerelease.StorageError{Backend: "memory", Key: key, Op: "write", Err: os.ErrClosed}
	}
	b.objects[key] = data

	return key, nil
}

func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.objects[key]
	if !ok {
		return nil, &simplerelease.StorageError{Backend: "memory", Key: key, Op: "open", Err: os.ErrNotExist}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, key)
	return nil
}

// Exists reports whether a key is currently stored.
func (b *Backend) Exists(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.objects)
}
