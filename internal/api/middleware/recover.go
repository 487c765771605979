package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/vapeshop/catalog-server/internal/api/problem"
)

// Recoverer turns a handler panic into a 500 problem response and logs the
// stack through the request logger.
func Recoverer(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				LoggerFromContext(r.Context()).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Msg("handler panic")

				problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError,
					"Internal Server Error", fmt.Errorf("panic: %v", rec), env)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
