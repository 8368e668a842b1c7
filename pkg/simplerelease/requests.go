package simplerelease

import "github.com/google/uuid"

// Request/Response DTOs

// ReleaseMetadata carries the caller-supplied descriptive fields of a
// release. Required-field enforcement happens at the transport boundary.
type ReleaseMetadata struct {
	ReleaseName     string
	ReleaseVersion  string
	PrimaryArtist   string
	FeaturingArtist string
	Roles           string
	Contributors    string
	Genre           string
	Subgenre        string
	TypeOfRelease   string
}

// CreateReleaseRequest contains parameters for submitting a new release.
// Both artifacts are required.
type CreateReleaseRequest struct {
	OwnerID  string
	Metadata ReleaseMetadata
	CoverArt *Artifact
	Audio    *Artifact
}

// UpdateReleaseRequest contains parameters for an owner edit of a pending
// release. A nil CoverArt or Audio keeps the existing artifact; metadata is
// replaced in full, not merged.
type UpdateReleaseRequest struct {
	OwnerID   string
	ReleaseID uuid.UUID
	Metadata  ReleaseMetadata
	CoverArt  *Artifact
	Audio     *Artifact
}

// SetStatusRequest contains parameters for an admin review decision.
// RejectReason is stored only when non-empty.
type SetStatusRequest struct {
	ReleaseID    uuid.UUID
	Status       ReleaseStatus
	RejectReason string
}
