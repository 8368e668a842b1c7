package simplerelease

import (
	"time"

	"github.com/google/uuid"
)

// ReleaseStatus is the domain type for release lifecycle states.
type ReleaseStatus string

// Release status constants (typed).
const (
	StatusPending  ReleaseStatus = "pending"
	StatusApproved ReleaseStatus = "approved"
	StatusRejected ReleaseStatus = "rejected"
)

// Valid reports whether s is one of the known lifecycle states.
func (s ReleaseStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s blocks further owner edits.
func (s ReleaseStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ArtifactKind identifies which of the two release artifacts is being handled.
type ArtifactKind string

// Artifact kind constants (typed).
const (
	ArtifactCoverArt ArtifactKind = "cover_art"
	ArtifactAudio    ArtifactKind = "audio"
)

// ExpectedMediaCategory returns the top-level MIME category an artifact of
// this kind must sniff as ("image" or "audio").
func (k ArtifactKind) ExpectedMediaCategory() string {
	if k == ArtifactCoverArt {
		return "image"
	}
	return "audio"
}

// Release represents one musical work submission: its metadata, the storage
// keys of its two artifacts, and its review lifecycle state.
//
// CoverArtKey and AudioKey are opaque blob-store keys and are what gets
// persisted; CoverArtURL and AudioURL are computed by the service layer on
// the way out and never stored.
type Release struct {
	ID      uuid.UUID `json:"id"`
	OwnerID string    `json:"owner_id"`

	ReleaseName     string `json:"release_name"`
	ReleaseVersion  string `json:"release_version,omitempty"`
	PrimaryArtist   string `json:"primary_artist"`
	FeaturingArtist string `json:"featuring_artist,omitempty"`
	Roles           string `json:"roles,omitempty"`
	Contributors    string `json:"contributors,omitempty"`
	Genre           string `json:"genre,omitempty"`
	Subgenre        string `json:"subgenre,omitempty"`
	TypeOfRelease   string `json:"type_of_release,omitempty"`

	CoverArtKey string `json:"-"`
	AudioKey    string `json:"-"`

	CoverArtURL string `json:"cover_art_url,omitempty"`
	AudioURL    string `json:"audio_url,omitempty"`

	Status       ReleaseStatus `json:"status"`
	RejectReason string        `json:"reject_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Artifact is an uploaded file as it reaches the core: a readable byte
// stream plus the declared filename and length from the multipart form.
// Transport decoding happens upstream.
type Artifact struct {
	FileName string
	Size     int64
	Data     []byte
}

// SearchScope restricts a search to one owner's releases or spans the
// whole catalog (admin review).
type SearchScope struct {
	OwnerID string
	// AdminAll ignores OwnerID and searches across all owners.
	AdminAll bool
}

// OwnerScope scopes a search to a single owner's releases.
func OwnerScope(ownerID string) SearchScope { return SearchScope{OwnerID: ownerID} }

// AdminScope spans all owners.
func AdminScope() SearchScope { return SearchScope{AdminAll: true} }

// SearchFilter carries the optional predicates of a catalog search. Every
// set string field is a case-insensitive substring match against the
// corresponding stored field; CreatedAfter/CreatedBefore are inclusive
// bounds on creation time. All present predicates combine with AND; a zero
// field imposes no constraint.
type SearchFilter struct {
	ReleaseName     string     `json:"release_name,omitempty"`
	PrimaryArtist   string     `json:"primary_artist,omitempty"`
	FeaturingArtist string     `json:"featuring_artist,omitempty"`
	Genre           string     `json:"genre,omitempty"`
	Subgenre        string     `json:"subgenre,omitempty"`
	TypeOfRelease   string     `json:"type_of_release,omitempty"`
	Contributors    string     `json:"contributors,omitempty"`
	CreatedAfter    *time.Time `json:"created_after,omitempty"`
	CreatedBefore   *time.Time `json:"created_before,omitempty"`
}

// PagedResult is one page of an admin-wide listing, newest first.
type PagedResult struct {
	Items      []*Release `json:"items"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalCount int        `json:"total_count"`
	TotalPages int        `json:"total_pages"`
}

// DefaultPageSize is used when a paged listing is requested with a page
// size below 1.
const DefaultPageSize = 20
