package middleware

import (
	"net/http"
	"strconv"

	"github.com/vapeshop/catalog-server/internal/audit"
)

// Audit records every mutating request made by an authenticated caller,
// together with the outcome. idParam names the path wildcard holding the
// resource id. It must wrap a routed handler so the pattern is known.
func Audit(logger *audit.Logger, resourceType, idParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			rw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			actor := "anonymous"
			if claims := ClaimsFromContext(r.Context()); claims != nil {
				actor = claims.Email
			}

			status := audit.StatusSuccess
			if rw.statusCode() >= 400 {
				status = audit.StatusFailure
			}

			action := r.Method + " " + r.URL.Path
			if r.Pattern != "" {
				action = r.Pattern
			}
			logger.LogRequest(r, actor, action, resourceType, r.PathValue(idParam), status,
				map[string]string{"status_code": strconv.Itoa(rw.statusCode())})
		})
	}
}
