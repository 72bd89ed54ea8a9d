package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authMiddleware validates the configured API token. If token is empty, all
// requests pass through. Otherwise requests must carry either
// "Authorization: Bearer <token>" or "X-API-Key: <token>".
func authMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tokenMatches(presentedToken(r), token) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="chorus"`)
			http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func presentedToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.Header.Get("X-API-Key")
}

func tokenMatches(got, want string) bool {
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
