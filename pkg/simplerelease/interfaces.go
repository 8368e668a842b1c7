package simplerelease

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for artifact storage backends.
//
// Write generates a collision-resistant key for every call and never
// overwrites an existing object. Delete is idempotent: deleting a key that
// does not exist is not an error, which lets rollback run unconditionally.
type BlobStore interface {
	// Write stores the bytes from r under a newly generated key derived
	// from fileName's extension and returns that key.
	Write(ctx context.Context, r io.Reader, fileName string) (string, error)

	// Open returns a reader for a previously written object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object. Missing keys are ignored.
	Delete(ctx context.Context, key string) error
}

// Repository defines the interface for release catalog persistence.
// Implementations provide single-row atomicity only; consistency with the
// blob store is sequenced by the service layer.
type Repository interface {
	CreateRelease(ctx context.Context, release *Release) error
	GetRelease(ctx context.Context, id uuid.UUID) (*Release, error)
	UpdateRelease(ctx context.Context, release *Release) error

	// ListByOwner returns an owner's releases, newest created-at first.
	ListByOwner(ctx context.Context, ownerID string) ([]*Release, error)

	// SearchReleases applies filter within scope, newest first.
	SearchReleases(ctx context.Context, scope SearchScope, filter SearchFilter) ([]*Release, error)

	// CountReleases returns the admin-wide release count.
	CountReleases(ctx context.Context) (int, error)

	// ListReleasesPaged returns one admin-wide page, newest first.
	// Offset/limit are already clamped by the caller.
	ListReleasesPaged(ctx context.Context, offset, limit int) ([]*Release, error)
}
