package simplerelease

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateArtifact checks an uploaded artifact against the configured
// limits for its kind. Checks run in a fixed order and the first failure
// wins: presence, declared size, filename extension, sniffed content type.
//
// The content check inspects the artifact's leading bytes and requires the
// detected media type's top-level category to match the kind (image/* for
// cover art, audio/* for audio), so renaming a file does not get it past
// the extension whitelist. The function is pure: no side effects, no
// partial state.
func ValidateArtifact(artifact *Artifact, kind ArtifactKind, maxSize int64, allowedExts []string) error {
	label := artifactLabel(kind)

	if artifact == nil || artifact.Size == 0 || len(artifact.Data) == 0 {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf("%s is required", label)}
	}
	if artifact.Size > maxSize {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf("%s file is too large", label)}
	}

	ext := strings.ToLower(filepath.Ext(artifact.FileName))
	if !extAllowed(ext, allowedExts) {
		return &ValidationError{Kind: kind, Reason: fmt.Sprintf("invalid %s file type", label)}
	}

	category := sniffMediaCategory(artifact.Data)
	if category != kind.ExpectedMediaCategory() {
		if kind == ArtifactCoverArt {
			return &ValidationError{Kind: kind, Reason: "cover art file is not a valid image"}
		}
		return &ValidationError{Kind: kind, Reason: "audio file is not a valid audio file"}
	}

	return nil
}

func artifactLabel(kind ArtifactKind) string {
	if kind == ArtifactCoverArt {
		return "cover art"
	}
	return "audio"
}

func extAllowed(ext string, allowed []string) bool {
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// sniffMediaCategory detects the media type of the leading bytes and
// returns its top-level category ("image", "audio", ...). The stdlib sniff
// table covers jpeg/png and wave/mpeg audio; FLAC and raw MPEG frame
// headers are not in that table, so they are matched explicitly to keep
// the default allowed-extension set sniffable.
func sniffMediaCategory(data []byte) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}

	detected := http.DetectContentType(head)
	if idx := strings.Index(detected, "/"); idx > 0 && detected != "application/octet-stream" {
		return detected[:idx]
	}

	switch {
	case bytes.HasPrefix(head, []byte("fLaC")):
		return "audio"
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		// MPEG audio frame sync without an ID3 tag.
		return "audio"
	}

	return "application"
}
