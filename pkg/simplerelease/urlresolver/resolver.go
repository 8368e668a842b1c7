// Package urlresolver translates internal blob-store keys into externally
// addressable URLs.
package urlresolver

import "strings"

// Resolver maps an internal storage location to a URL clients can fetch.
type Resolver interface {
	Resolve(key string) string
}

// Static joins keys with a fixed base URL, stripping a configured storage
// root prefix first. The transform is deterministic and never fails; an
// empty key resolves to itself.
type Static struct {
	baseURL     string
	storageRoot string
}

// NewStatic creates a Static resolver. baseURL is the external prefix
// (e.g. "https://cdn.example.com/media"); storageRoot, if non-empty, is
// removed from the front of keys before joining.
func NewStatic(baseURL, storageRoot string) *Static {
	return &Static{
		baseURL:     strings.TrimRight(baseURL, "/"),
		storageRoot: storageRoot,
	}
}

func (s *Static) Resolve(key string) string {
	if key == "" {
		return ""
	}

	// Normalize separators before comparing against the root prefix so
	// keys produced on Windows resolve the same way.
	normalized := strings.ReplaceAll(key, "\\", "/")
	if s.storageRoot != "" {
		root := strings.TrimRight(strings.ReplaceAll(s.storageRoot, "\\", "/"), "/")
		normalized = strings.TrimPrefix(normalized, root)
	}
	normalized = strings.TrimLeft(normalized, "/")

	if s.baseURL == "" {
		return normalized
	}
	return s.baseURL + "/" + normalized
}
