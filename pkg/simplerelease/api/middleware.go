package api

import (
	"net/http"
)

// Identity headers set by the upstream identity collaborator after it
// authenticates the caller. This service never sees credentials.
const (
	HeaderOwnerID = "X-Owner-ID"
	HeaderAdmin   = "X-Admin"
)

func ownerFrom(r *http.Request) string {
	return r.Header.Get(HeaderOwnerID)
}

// requireOwner rejects requests that arrive without an authenticated
// principal id.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ownerFrom(r) == "" {
			renderError(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects requests without the admin role claim.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderAdmin) != "true" {
			renderError(w, r, http.StatusForbidden, "administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
