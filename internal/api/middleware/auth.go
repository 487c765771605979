package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vapeshop/catalog-server/internal/api/problem"
	"github.com/vapeshop/catalog-server/internal/auth"
)

type contextKeyAuth string

const (
	claimsKey    contextKeyAuth = "claims"
	authErrorKey contextKeyAuth = "auth_error"
)

// authFailure records why a presented token was not accepted.
type authFailure struct {
	title string
	err   error
}

// Authenticate validates an optional bearer token. Requests without a usable
// token continue anonymously so public routes still answer; the rejection is
// kept in the context and reported by RequireAuth.
func Authenticate(manager *auth.JWTManager, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := auth.TokenFromHeader(header)
			if err != nil {
				next.ServeHTTP(w, withAuthFailure(r, "Invalid authorization format", err))
				return
			}

			claims, err := manager.Validate(token)
			if err != nil {
				title := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					title = "Token expired"
				}
				next.ServeHTTP(w, withAuthFailure(r, title, err))
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func withAuthFailure(r *http.Request, title string, err error) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authErrorKey, authFailure{title: title, err: err}))
}

// RequireAuth rejects anonymous requests with 401. A rejected token is
// reported with its own title.
func RequireAuth(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ClaimsFromContext(r.Context()) == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="vapeshop"`)
				if failure, ok := r.Context().Value(authErrorKey).(authFailure); ok {
					problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, failure.title, failure.err, env)
					return
				}
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", auth.ErrMissingToken, env)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole answers 401 for anonymous callers and 403 for callers that
// lack role.
func RequireRole(role, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return RequireAuth(env)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ClaimsFromContext(r.Context()).HasRole(role) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient permissions", nil, env)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func ContextWithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if ctx == nil {
		return nil
	}
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
