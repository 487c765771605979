package middleware

import (
	"net/http"
)

// DefaultMaxBodySize bounds request bodies when no limit is configured.
// Product images travel inline as base64, hence the generous size.
const DefaultMaxBodySize int64 = 10 << 20

// RequestSize wraps the body with http.MaxBytesReader. Handlers see a
// *http.MaxBytesError from the decoder once the limit is crossed.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
