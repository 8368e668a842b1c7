package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-release/pkg/simplerelease"
	"github.com/tendant/simple-release/pkg/simplerelease/api"
	memoryrepo "github.com/tendant/simple-release/pkg/simplerelease/repo/memory"
	memorystorage "github.com/tendant/simple-release/pkg/simplerelease/storage/memory"
	"github.com/tendant/simple-release/pkg/simplerelease/urlresolver"
)

func jpegBytes() []byte {
	return append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 64)...)
}

func mp3Bytes() []byte {
	return append([]byte("ID3"), make([]byte, 64)...)
}

func setupServer(t *testing.T) *httptest.Server {
	repo := memoryrepo.New()
	coverStore := memorystorage.New()
	audioStore := memorystorage.New()

	svc, err := simplerelease.New(
		simplerelease.WithRepository(repo),
		simplerelease.WithBlobStore(simplerelease.ArtifactCoverArt, coverStore),
		simplerelease.WithBlobStore(simplerelease.ArtifactAudio, audioStore),
		simplerelease.WithURLResolver(simplerelease.ArtifactCoverArt, urlresolver.NewStatic("/media/coverart", "")),
		simplerelease.WithURLResolver(simplerelease.ArtifactAudio, urlresolver.NewStatic("/media/audio", "")),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/api", api.NewReleaseHandler(svc, 110*1000*1000).Routes())
	r.Mount("/media", api.NewMediaHandler(coverStore, audioStore, "", "").Routes())

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func uploadRequest(t *testing.T, url, owner, coverName string, coverData []byte, audioName string, audioData []byte) *http.Request {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	require.NoError(t, mw.WriteField("release_name", "Midnight Drive"))
	require.NoError(t, mw.WriteField("primary_artist", "The Headlights"))
	require.NoError(t, mw.WriteField("genre", "Synthwave"))

	cw, err := mw.CreateFormFile("cover_art", coverName)
	require.NoError(t, err)
	_, err = cw.Write(coverData)
	require.NoError(t, err)

	aw, err := mw.CreateFormFile("audio_file", audioName)
	require.NoError(t, err)
	_, err = aw.Write(audioData)
	require.NoError(t, err)

	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, url+"/api/releases/", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(api.HeaderOwnerID, owner)
	return req
}

func TestCreateReleaseEndpoint(t *testing.T) {
	server := setupServer(t)

	t.Run("successful upload", func(t *testing.T) {
		req := uploadRequest(t, server.URL, "artist-1", "cover.jpg", jpegBytes(), "track.mp3", mp3Bytes())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var release simplerelease.Release
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&release))
		assert.Equal(t, simplerelease.StatusPending, release.Status)
		assert.NotEmpty(t, release.CoverArtURL)
		assert.NotEmpty(t, release.AudioURL)

		// The resolved URL serves the stored bytes back.
		mediaResp, err := http.Get(server.URL + release.CoverArtURL)
		require.NoError(t, err)
		defer mediaResp.Body.Close()
		require.Equal(t, http.StatusOK, mediaResp.StatusCode)
		data, err := io.ReadAll(mediaResp.Body)
		require.NoError(t, err)
		assert.Equal(t, jpegBytes(), data)
	})

	t.Run("spoofed audio rejected", func(t *testing.T) {
		req := uploadRequest(t, server.URL, "artist-1", "cover.jpg", jpegBytes(), "track.mp3", jpegBytes())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing identity header", func(t *testing.T) {
		req := uploadRequest(t, server.URL, "", "cover.jpg", jpegBytes(), "track.mp3", mp3Bytes())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

// prefixedStore mimics a backend that namespaces keys, like the shared-
// bucket s3 backend does.
type prefixedStore struct {
	objects map[string][]byte
}

func (s *prefixedStore) Write(ctx context.Context, r io.Reader, fileName string) (string, error) {
	return "", errors.New("read-only store")
}

func (s *prefixedStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found: " + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *prefixedStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func TestMediaHandlerPrefixedKeys(t *testing.T) {
	store := &prefixedStore{objects: map[string][]byte{
		"coverart/abc.jpg": []byte("image bytes"),
		"audio/abc.mp3":    []byte("audio bytes"),
	}}

	server := httptest.NewServer(api.NewMediaHandler(store, store, "coverart", "audio").Routes())
	t.Cleanup(server.Close)

	t.Run("prefix is re-applied before the store lookup", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/coverart/abc.jpg")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("image bytes"), data)
	})

	t.Run("audio prefix routes to the audio namespace", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/audio/abc.mp3")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("audio bytes"), data)
	})

	t.Run("unknown name is a 404", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/coverart/missing.jpg")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestUpdateReleaseEndpoint(t *testing.T) {
	server := setupServer(t)

	req := uploadRequest(t, server.URL, "artist-1", "cover.jpg", jpegBytes(), "track.mp3", mp3Bytes())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var release simplerelease.Release
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&release))
	resp.Body.Close()

	t.Run("metadata-only update keeps stored artifacts", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("release_name", "Midnight Drive (Deluxe)"))
		require.NoError(t, mw.WriteField("primary_artist", "The Headlights"))
		require.NoError(t, mw.Close())

		updateReq, _ := http.NewRequest(http.MethodPut,
			server.URL+"/api/releases/"+release.ID.String(), &body)
		updateReq.Header.Set("Content-Type", mw.FormDataContentType())
		updateReq.Header.Set(api.HeaderOwnerID, "artist-1")

		resp, err := http.DefaultClient.Do(updateReq)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		listReq, _ := http.NewRequest(http.MethodGet, server.URL+"/api/releases/", nil)
		listReq.Header.Set(api.HeaderOwnerID, "artist-1")
		listResp, err := http.DefaultClient.Do(listReq)
		require.NoError(t, err)
		defer listResp.Body.Close()

		var releases []*simplerelease.Release
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&releases))
		require.Len(t, releases, 1)
		assert.Equal(t, "Midnight Drive (Deluxe)", releases[0].ReleaseName)
		assert.Equal(t, release.CoverArtURL, releases[0].CoverArtURL)
		assert.Equal(t, release.AudioURL, releases[0].AudioURL)
	})
}

func TestAdminEndpoints(t *testing.T) {
	server := setupServer(t)

	// Seed one release through the public endpoint.
	req := uploadRequest(t, server.URL, "artist-1", "cover.jpg", jpegBytes(), "track.mp3", mp3Bytes())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var release simplerelease.Release
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&release))
	resp.Body.Close()

	t.Run("paged listing requires admin", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/admin/releases/")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("paged listing", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/admin/releases/", nil)
		req.Header.Set(api.HeaderAdmin, "true")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result simplerelease.PagedResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, 1, result.TotalCount)
		assert.Equal(t, 1, result.TotalPages)
		assert.Equal(t, simplerelease.DefaultPageSize, result.PageSize)
	})

	t.Run("status update", func(t *testing.T) {
		body, _ := json.Marshal(api.StatusUpdateRequest{Status: "rejected", RejectReason: "low bitrate"})
		req, _ := http.NewRequest(http.MethodPut,
			server.URL+"/api/admin/releases/"+release.ID.String()+"/status", bytes.NewReader(body))
		req.Header.Set(api.HeaderAdmin, "true")
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("owner edit now conflicts", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("release_name", "Renamed"))
		require.NoError(t, mw.Close())

		req, _ := http.NewRequest(http.MethodPut,
			server.URL+"/api/releases/"+release.ID.String(), &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set(api.HeaderOwnerID, "artist-1")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}
