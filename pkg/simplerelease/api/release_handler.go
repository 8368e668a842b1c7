// Package api exposes the release catalog over HTTP. Authentication is
// handled upstream by the identity collaborator; handlers trust the
// X-Owner-ID and X-Admin headers it sets.
package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/tendant/simple-release/pkg/simplerelease"
)

// ReleaseHandler handles HTTP requests for the release catalog
type ReleaseHandler struct {
	service     simplerelease.Service
	maxBodySize int64
}

// NewReleaseHandler creates a new release handler. maxBodySize caps the
// whole multipart body, above the per-artifact limits.
func NewReleaseHandler(service simplerelease.Service, maxBodySize int64) *ReleaseHandler {
	return &ReleaseHandler{service: service, maxBodySize: maxBodySize}
}

// Routes returns the routes for releases
func (h *ReleaseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/releases", func(r chi.Router) {
		r.Use(requireOwner)
		r.Post("/", h.CreateRelease)
		r.Get("/", h.ListOwnerReleases)
		r.Get("/search", h.SearchOwnerReleases)
		r.Put("/{id}", h.UpdateRelease)
	})

	r.Route("/admin/releases", func(r chi.Router) {
		r.Use(requireAdmin)
		r.Get("/", h.AdminListReleasesPaged)
		r.Get("/search", h.AdminSearchReleases)
		r.Put("/{id}/status", h.AdminSetReleaseStatus)
	})

	return r
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusUpdateRequest is the request body for an admin review decision
type StatusUpdateRequest struct {
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
}

func (h *ReleaseHandler) CreateRelease(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFrom(r)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	cover, err := formArtifact(r, "cover_art")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "cover art is required")
		return
	}
	audio, err := formArtifact(r, "audio_file")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "audio file is required")
		return
	}

	release, err := h.service.CreateRelease(r.Context(), simplerelease.CreateReleaseRequest{
		OwnerID:  ownerID,
		Metadata: metadataFromForm(r),
		CoverArt: cover,
		Audio:    audio,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, release)
}

func (h *ReleaseHandler) ListOwnerReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.service.ListReleasesByOwner(r.Context(), ownerFrom(r))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, releases)
}

func (h *ReleaseHandler) SearchOwnerReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.service.SearchReleases(r.Context(),
		simplerelease.OwnerScope(ownerFrom(r)), filterFromQuery(r))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, releases)
}

func (h *ReleaseHandler) UpdateRelease(w http.ResponseWriter, r *http.Request) {
	releaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid release id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid multipart form")
		return
	}

	// Both artifacts are optional on update; a missing part keeps the
	// stored artifact. A part that was supplied but could not be read is
	// a client error, not an omission.
	cover, err := optionalFormArtifact(r, "cover_art")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid cover art upload")
		return
	}
	audio, err := optionalFormArtifact(r, "audio_file")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid audio upload")
		return
	}

	err = h.service.UpdateRelease(r.Context(), simplerelease.UpdateReleaseRequest{
		OwnerID:   ownerFrom(r),
		ReleaseID: releaseID,
		Metadata:  metadataFromForm(r),
		CoverArt:  cover,
		Audio:     audio,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusNoContent)
	render.NoContent(w, r)
}

func (h *ReleaseHandler) AdminSearchReleases(w http.ResponseWriter, r *http.Request) {
	releases, err := h.service.SearchReleases(r.Context(),
		simplerelease.AdminScope(), filterFromQuery(r))
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, releases)
}

func (h *ReleaseHandler) AdminListReleasesPaged(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.service.ListReleasesPaged(r.Context(), page, pageSize)
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func (h *ReleaseHandler) AdminSetReleaseStatus(w http.ResponseWriter, r *http.Request) {
	releaseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid release id")
		return
	}

	var req StatusUpdateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.service.SetReleaseStatus(r.Context(), simplerelease.SetStatusRequest{
		ReleaseID:    releaseID,
		Status:       simplerelease.ReleaseStatus(req.Status),
		RejectReason: req.RejectReason,
	})
	if err != nil {
		h.renderServiceError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// renderServiceError maps the service error taxonomy onto HTTP statuses.
// Expected outcomes log at warn; storage and unknown failures log at error
// with the request id for correlation.
func (h *ReleaseHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())

	switch {
	case errors.Is(err, simplerelease.ErrInvalidArtifact), errors.Is(err, simplerelease.ErrInvalidStatus):
		slog.Warn("request rejected", "request_id", reqID, "err", err)
		renderError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, simplerelease.ErrReleaseNotFound):
		slog.Warn("release not found", "request_id", reqID, "err", err)
		renderError(w, r, http.StatusNotFound, "release not found")
	case errors.Is(err, simplerelease.ErrReleaseLocked):
		slog.Warn("release locked", "request_id", reqID, "err", err)
		renderError(w, r, http.StatusConflict, "release is no longer editable")
	default:
		slog.Error("release operation failed", "request_id", reqID, "err", err)
		renderError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

func metadataFromForm(r *http.Request) simplerelease.ReleaseMetadata {
	return simplerelease.ReleaseMetadata{
		ReleaseName:     r.FormValue("release_name"),
		ReleaseVersion:  r.FormValue("release_version"),
		PrimaryArtist:   r.FormValue("primary_artist"),
		FeaturingArtist: r.FormValue("featuring_artist"),
		Roles:           r.FormValue("roles"),
		Contributors:    r.FormValue("contributors"),
		Genre:           r.FormValue("genre"),
		Subgenre:        r.FormValue("subgenre"),
		TypeOfRelease:   r.FormValue("type_of_release"),
	}
}

func formArtifact(r *http.Request, field string) (*simplerelease.Artifact, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &simplerelease.Artifact{
		FileName: header.Filename,
		Size:     header.Size,
		Data:     data,
	}, nil
}

// optionalFormArtifact reads a form file the caller may omit. An absent
// part returns nil; any other read failure is surfaced.
func optionalFormArtifact(r *http.Request, field string) (*simplerelease.Artifact, error) {
	artifact, err := formArtifact(r, field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return artifact, err
}

func filterFromQuery(r *http.Request) simplerelease.SearchFilter {
	q := r.URL.Query()

	filter := simplerelease.SearchFilter{
		ReleaseName:     q.Get("release_name"),
		PrimaryArtist:   q.Get("primary_artist"),
		FeaturingArtist: q.Get("featuring_artist"),
		Genre:           q.Get("genre"),
		Subgenre:        q.Get("subgenre"),
		TypeOfRelease:   q.Get("type_of_release"),
		Contributors:    q.Get("contributors"),
	}
	if t, err := time.Parse(time.RFC3339, q.Get("created_after")); err == nil {
		filter.CreatedAfter = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("created_before")); err == nil {
		filter.CreatedBefore = &t
	}

	return filter
}
