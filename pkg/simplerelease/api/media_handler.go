package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// MediaHandler serves stored artifacts back over HTTP. It is the target of
// the URLs the catalog hands out when MediaBaseURL points at this service
// rather than a CDN.
type MediaHandler struct {
	coverStore  simplerelease.BlobStore
	audioStore  simplerelease.BlobStore
	coverPrefix string
	audioPrefix string
}

// NewMediaHandler creates a new media handler. The prefixes are the
// storage key prefixes the backends write under (empty for backends that
// write bare names); the URL resolver strips them from outgoing URLs, so
// they must be re-applied here before the store is asked for the object.
func NewMediaHandler(coverStore, audioStore simplerelease.BlobStore, coverPrefix, audioPrefix string) *MediaHandler {
	return &MediaHandler{
		coverStore:  coverStore,
		audioStore:  audioStore,
		coverPrefix: coverPrefix,
		audioPrefix: audioPrefix,
	}
}

// Routes returns the routes for stored media
func (h *MediaHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/coverart/{key}", h.serve(h.coverStore, h.coverPrefix))
	r.Get("/audio/{key}", h.serve(h.audioStore, h.audioPrefix))

	return r
}

func (h *MediaHandler) serve(store simplerelease.BlobStore, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if prefix != "" {
			key = prefix + "/" + key
		}

		rc, err := store.Open(r.Context(), key)
		if err != nil {
			slog.Warn("media not found", "key", key, "err", err)
			http.NotFound(w, r)
			return
		}
		defer rc.Close()

		if _, err := io.Copy(w, rc); err != nil {
			slog.Error("failed to stream media", "key", key, "err", err)
		}
	}
}
