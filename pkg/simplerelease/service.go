package simplerelease

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease/urlresolver"
)

// Service is the release catalog: it owns ingestion, the review state
// machine, and all catalog queries.
type Service interface {
	// CreateRelease validates both artifacts, writes them to blob storage,
	// and persists a pending catalog row. Any failure after a partial
	// write deletes whatever was already written in this call.
	CreateRelease(ctx context.Context, req CreateReleaseRequest) (*Release, error)

	// GetRelease returns a single release owned by ownerID.
	GetRelease(ctx context.Context, ownerID string, id uuid.UUID) (*Release, error)

	// ListReleasesByOwner returns ownerID's releases, newest first.
	ListReleasesByOwner(ctx context.Context, ownerID string) ([]*Release, error)

	// SearchReleases applies filter within scope, newest first.
	SearchReleases(ctx context.Context, scope SearchScope, filter SearchFilter) ([]*Release, error)

	// ListReleasesPaged returns one admin-wide page. Page and pageSize
	// below 1 clamp to 1 and DefaultPageSize.
	ListReleasesPaged(ctx context.Context, page, pageSize int) (*PagedResult, error)

	// UpdateRelease applies an owner edit to a pending release. Metadata
	// is replaced in full; nil artifacts keep the stored ones.
	UpdateRelease(ctx context.Context, req UpdateReleaseRequest) error

	// SetReleaseStatus applies an admin review decision. It is the only
	// way status changes and is not blocked by terminal states.
	SetReleaseStatus(ctx context.Context, req SetStatusRequest) error
}

// UploadLimits bounds artifact uploads per kind.
type UploadLimits struct {
	MaxCoverArtSize        int64
	MaxAudioSize           int64
	AllowedImageExtensions []string
	AllowedAudioExtensions []string
}

// DefaultUploadLimits returns the stock limits: 5MB covers, 100MB audio.
func DefaultUploadLimits() UploadLimits {
	return UploadLimits{
		MaxCoverArtSize:        5 * 1024 * 1024,
		MaxAudioSize:           100 * 1024 * 1024,
		AllowedImageExtensions: []string{".jpg", ".jpeg", ".png"},
		AllowedAudioExtensions: []string{".mp3", ".wav", ".flac"},
	}
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the catalog repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob store used for one artifact kind
func WithBlobStore(kind ArtifactKind, store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[ArtifactKind]BlobStore)
		}
		s.blobStores[kind] = store
	}
}

// WithURLResolver sets the resolver used to translate storage keys on the
// way out
func WithURLResolver(kind ArtifactKind, r urlresolver.Resolver) Option {
	return func(s *service) {
		if s.resolvers == nil {
			s.resolvers = make(map[ArtifactKind]urlresolver.Resolver)
		}
		s.resolvers[kind] = r
	}
}

// WithUploadLimits overrides the default artifact limits
func WithUploadLimits(limits UploadLimits) Option {
	return func(s *service) {
		s.limits = limits
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[ArtifactKind]BlobStore),
		resolvers:  make(map[ArtifactKind]urlresolver.Resolver),
		limits:     DefaultUploadLimits(),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStores[ArtifactCoverArt] == nil || s.blobStores[ArtifactAudio] == nil {
		return nil, fmt.Errorf("blob stores for both artifact kinds are required")
	}

	return s, nil
}
