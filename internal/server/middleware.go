package server

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const ownerKey ctxKey = iota

// RequireOwner reads the authenticated subject from the X-User header set
// by the fronting auth layer. Authentication itself is not this service's
// concern; an absent subject is rejected.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get("X-User"))
		if owner == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing X-User header"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey).(string)
	return owner
}
