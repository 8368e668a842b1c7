package simplerelease

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease/urlresolver"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStores map[ArtifactKind]BlobStore
	resolvers  map[ArtifactKind]urlresolver.Resolver
	limits     UploadLimits
}

// rollbackUnit tracks artifact writes performed for one catalog operation
// so they can be deleted together if a later step fails.
type rollbackUnit struct {
	written []struct {
		store BlobStore
		key   string
	}
}

func (u *rollbackUnit) add(store BlobStore, key string) {
	u.written = append(u.written, struct {
		store BlobStore
		key   string
	}{store, key})
}

// discard deletes every artifact written in this unit. Delete is
// idempotent on all backends, so discard can run even after a partial
// cleanup. Failures are logged, not returned: the original error is what
// the caller reports.
func (u *rollbackUnit) discard(ctx context.Context) {
	for _, w := range u.written {
		if err := w.store.Delete(ctx, w.key); err != nil {
			slog.Error("failed to roll back artifact write", "key", w.key, "err", err)
		}
	}
}

func (s *service) CreateRelease(ctx context.Context, req CreateReleaseRequest) (*Release, error) {
	if err := ValidateArtifact(req.CoverArt, ArtifactCoverArt, s.limits.MaxCoverArtSize, s.limits.AllowedImageExtensions); err != nil {
		return nil, err
	}
	if err := ValidateArtifact(req.Audio, ArtifactAudio, s.limits.MaxAudioSize, s.limits.AllowedAudioExtensions); err != nil {
		return nil, err
	}

	var unit rollbackUnit

	coverKey, err := s.writeArtifact(ctx, ArtifactCoverArt, req.CoverArt, &unit)
	if err != nil {
		unit.discard(ctx)
		return nil, err
	}
	audioKey, err := s.writeArtifact(ctx, ArtifactAudio, req.Audio, &unit)
	if err != nil {
		unit.discard(ctx)
		return nil, err
	}

	now := time.Now().UTC()
	release := &Release{
		ID:              uuid.New(),
		OwnerID:         req.OwnerID,
		ReleaseName:     req.Metadata.ReleaseName,
		ReleaseVersion:  req.Metadata.ReleaseVersion,
		PrimaryArtist:   req.Metadata.PrimaryArtist,
		FeaturingArtist: req.Metadata.FeaturingArtist,
		Roles:           req.Metadata.Roles,
		Contributors:    req.Metadata.Contributors,
		Genre:           req.Metadata.Genre,
		Subgenre:        req.Metadata.Subgenre,
		TypeOfRelease:   req.Metadata.TypeOfRelease,
		CoverArtKey:     coverKey,
		AudioKey:        audioKey,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repository.CreateRelease(ctx, release); err != nil {
		unit.discard(ctx)
		slog.Error("failed to persist release, artifacts rolled back",
			"release_id", release.ID, "owner_id", release.OwnerID, "err", err)
		return nil, &ReleaseError{ReleaseID: release.ID, Op: "create", Err: err}
	}

	s.resolveURLs(release)
	return release, nil
}

func (s *service) GetRelease(ctx context.Context, ownerID string, id uuid.UUID) (*Release, error) {
	release, err := s.repository.GetRelease(ctx, id)
	if err != nil {
		return nil, err
	}
	if release.OwnerID != ownerID {
		return nil, ErrReleaseNotFound
	}
	s.resolveURLs(release)
	return release, nil
}

func (s *service) ListReleasesByOwner(ctx context.Context, ownerID string) ([]*Release, error) {
	releases, err := s.repository.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, r := range releases {
		s.resolveURLs(r)
	}
	return releases, nil
}

func (s *service) SearchReleases(ctx context.Context, scope SearchScope, filter SearchFilter) ([]*Release, error) {
	releases, err := s.repository.SearchReleases(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	for _, r := range releases {
		s.resolveURLs(r)
	}
	return releases, nil
}

func (s *service) ListReleasesPaged(ctx context.Context, page, pageSize int) (*PagedResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total, err := s.repository.CountReleases(ctx)
	if err != nil {
		return nil, err
	}

	items, err := s.repository.ListReleasesPaged(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	for _, r := range items {
		s.resolveURLs(r)
	}

	return &PagedResult{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *service) UpdateRelease(ctx context.Context, req UpdateReleaseRequest) error {
	release, err := s.repository.GetRelease(ctx, req.ReleaseID)
	if err != nil {
		return err
	}
	if release.OwnerID != req.OwnerID {
		// Same answer as a missing release: owners cannot probe for other
		// users' release ids.
		return ErrReleaseNotFound
	}
	if release.Status.Terminal() {
		return ErrReleaseLocked
	}

	if req.CoverArt != nil {
		if err := ValidateArtifact(req.CoverArt, ArtifactCoverArt, s.limits.MaxCoverArtSize, s.limits.AllowedImageExtensions); err != nil {
			return err
		}
	}
	if req.Audio != nil {
		if err := ValidateArtifact(req.Audio, ArtifactAudio, s.limits.MaxAudioSize, s.limits.AllowedAudioExtensions); err != nil {
			return err
		}
	}

	// Replacement files written here are rolled back if the operation
	// fails. The files they replace are deliberately retained either way.
	var unit rollbackUnit

	if req.CoverArt != nil {
		key, err := s.writeArtifact(ctx, ArtifactCoverArt, req.CoverArt, &unit)
		if err != nil {
			unit.discard(ctx)
			return err
		}
		release.CoverArtKey = key
	}
	if req.Audio != nil {
		key, err := s.writeArtifact(ctx, ArtifactAudio, req.Audio, &unit)
		if err != nil {
			unit.discard(ctx)
			return err
		}
		release.AudioKey = key
	}

	release.ReleaseName = req.Metadata.ReleaseName
	release.ReleaseVersion = req.Metadata.ReleaseVersion
	release.PrimaryArtist = req.Metadata.PrimaryArtist
	release.FeaturingArtist = req.Metadata.FeaturingArtist
	release.Roles = req.Metadata.Roles
	release.Contributors = req.Metadata.Contributors
	release.Genre = req.Metadata.Genre
	release.Subgenre = req.Metadata.Subgenre
	release.TypeOfRelease = req.Metadata.TypeOfRelease
	release.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateRelease(ctx, release); err != nil {
		unit.discard(ctx)
		slog.Error("failed to persist release update, new artifacts rolled back",
			"release_id", release.ID, "owner_id", release.OwnerID, "err", err)
		return &ReleaseError{ReleaseID: release.ID, Op: "update", Err: err}
	}

	return nil
}

func (s *service) SetReleaseStatus(ctx context.Context, req SetStatusRequest) error {
	if !req.Status.Valid() {
		return ErrInvalidStatus
	}

	release, err := s.repository.GetRelease(ctx, req.ReleaseID)
	if err != nil {
		return err
	}

	// Unguarded by intent: this is the admin override that sets terminal
	// states and may also move a release back out of one.
	release.Status = req.Status
	if req.RejectReason != "" {
		release.RejectReason = req.RejectReason
	}
	release.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateRelease(ctx, release); err != nil {
		slog.Error("failed to persist status change",
			"release_id", release.ID, "status", req.Status, "err", err)
		return &ReleaseError{ReleaseID: release.ID, Op: "set_status", Err: err}
	}

	return nil
}

func (s *service) writeArtifact(ctx context.Context, kind ArtifactKind, artifact *Artifact, unit *rollbackUnit) (string, error) {
	store := s.blobStores[kind]
	key, err := store.Write(ctx, bytes.NewReader(artifact.Data), artifact.FileName)
	if err != nil {
		slog.Error("artifact write failed", "kind", kind, "file_name", artifact.FileName, "err", err)
		return "", err
	}
	unit.add(store, key)
	return key, nil
}

func (s *service) resolveURLs(release *Release) {
	if r := s.resolvers[ArtifactCoverArt]; r != nil {
		release.CoverArtURL = r.Resolve(release.CoverArtKey)
	}
	if r := s.resolvers[ArtifactAudio]; r != nil {
		release.AudioURL = r.Resolve(release.AudioKey)
	}
}
