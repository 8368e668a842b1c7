package simplerelease

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrReleaseNotFound indicates a release does not exist or is not owned
	// by the caller. The two cases are deliberately collapsed so that owner
	// operations never reveal whether another user's release exists.
	ErrReleaseNotFound = errors.New("release not found")

	// ErrReleaseLocked indicates an owner edit was attempted on a release
	// in a terminal review state (approved or rejected).
	ErrReleaseLocked = errors.New("release is no longer editable")

	// ErrInvalidArtifact indicates an uploaded artifact failed validation.
	ErrInvalidArtifact = errors.New("invalid artifact")

	// ErrInvalidStatus indicates an unknown release status value.
	ErrInvalidStatus = errors.New("invalid release status")
)

// ValidationError reports why an uploaded artifact was rejected. It wraps
// ErrInvalidArtifact so callers can branch with errors.Is.
type ValidationError struct {
	Kind   ArtifactKind
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArtifact
}

// ReleaseError represents an error related to a catalog operation
type ReleaseError struct {
	ReleaseID uuid.UUID
	Op        string
	Err       error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("release operation %s failed for release %s: %v", e.Op, e.ReleaseID, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
