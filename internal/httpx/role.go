package httpx

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"

	"eventsite/internal/domains"
)

// RequireRole must run after Protected.
func RequireRole(roles ...domains.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !slices.Contains(roles, p.Role) {
				Error(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
