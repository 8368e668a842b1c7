// Package memory provides an in-memory simplerelease.Repository, intended
// for tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// Repository implements simplerelease.Repository using in-memory storage
type Repository struct {
	mu       sync.RWMutex
	releases map[uuid.UUID]*simplerelease.Release

	// failWrites makes persistence calls fail; used to exercise rollback
	// paths in tests.
	failWrites error
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{releases: make(map[uuid.UUID]*simplerelease.Release)}
}

// FailWrites makes CreateRelease and UpdateRelease return err until called
// again with nil.
func (r *Repository) FailWrites(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failWrites = err
}

func (r *Repository) CreateRelease(ctx context.Context, release *simplerelease.Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}

	// Store a copy to avoid external modifications
	releaseCopy := *release
	r.releases[release.ID] = &releaseCopy

	return nil
}

func (r *Repository) GetRelease(ctx context.Context, id uuid.UUID) (*simplerelease.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	release, exists := r.releases[id]
	if !exists {
		return nil, simplerelease.ErrReleaseNotFound
	}

	releaseCopy := *release
	return &releaseCopy, nil
}

func (r *Repository) UpdateRelease(ctx context.Context, release *simplerelease.Release) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}
	if _, exists := r.releases[release.ID]; !exists {
		return simplerelease.ErrReleaseNotFound
	}

	releaseCopy := *release
	r.releases[release.ID] = &releaseCopy

	return nil
}

func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*simplerelease.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplerelease.Release
	for _, release := range r.releases {
		if release.OwnerID == ownerID {
			releaseCopy := *release
			result = append(result, &releaseCopy)
		}
	}

	sortNewestFirst(result)
	return result, nil
}

func (r *Repository) SearchReleases(ctx context.Context, scope simplerelease.SearchScope, filter simplerelease.SearchFilter) ([]*simplerelease.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simplerelease.Release
	for _, release := range r.releases {
		if !scope.AdminAll && release.OwnerID != scope.OwnerID {
			continue
		}
		if !matches(release, filter) {
			continue
		}
		releaseCopy := *release
		result = append(result, &releaseCopy)
	}

	sortNewestFirst(result)
	return result, nil
}

func (r *Repository) CountReleases(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.releases), nil
}

func (r *Repository) ListReleasesPaged(ctx context.Context, offset, limit int) ([]*simplerelease.Release, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*simplerelease.Release, 0, len(r.releases))
	for _, release := range r.releases {
		releaseCopy := *release
		all = append(all, &releaseCopy)
	}
	sortNewestFirst(all)

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// matches evaluates the same predicates the postgres repository folds into
// its WHERE clause: case-insensitive substring on string fields, inclusive
// bounds on created-at, all ANDed, zero fields skipped.
func matches(release *simplerelease.Release, filter simplerelease.SearchFilter) bool {
	if !containsFold(release.ReleaseName, filter.ReleaseName) {
		return false
	}
	if !containsFold(release.PrimaryArtist, filter.PrimaryArtist) {
		return false
	}
	if !containsFold(release.FeaturingArtist, filter.FeaturingArtist) {
		return false
	}
	if !containsFold(release.Genre, filter.Genre) {
		return false
	}
	if !containsFold(release.Subgenre, filter.Subgenre) {
		return false
	}
	if !containsFold(release.TypeOfRelease, filter.TypeOfRelease) {
		return false
	}
	if !containsFold(release.Contributors, filter.Contributors) {
		return false
	}
	if filter.CreatedAfter != nil && release.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.CreatedBefore != nil && release.CreatedAt.After(*filter.CreatedBefore) {
		return false
	}
	return true
}

func containsFold(value, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

func sortNewestFirst(releases []*simplerelease.Release) {
	sort.Slice(releases, func(i, j int) bool {
		return releases[i].CreatedAt.After(releases[j].CreatedAt)
	})
}
