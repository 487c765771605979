package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/users"
)

const contentType = "application/problem+json"

const (
	TypeValidation   = "https://vapeshop.dev/problems/validation-error"
	TypeNotFound     = "https://vapeshop.dev/problems/not-found"
	TypeConflict     = "https://vapeshop.dev/problems/conflict"
	TypeUnauthorized = "https://vapeshop.dev/problems/unauthorized"
	TypeForbidden    = "https://vapeshop.dev/problems/forbidden"
	TypeRateLimited  = "https://vapeshop.dev/problems/rate-limit-exceeded"
	TypeTooLarge     = "https://vapeshop.dev/problems/payload-too-large"
	TypeServerError  = "https://vapeshop.dev/problems/server-error"
)

type ProblemDetails struct {
	Type     string              `json:"type"`
	Title    string              `json:"title"`
	Status   int                 `json:"status"`
	Detail   string              `json:"detail,omitempty"`
	Instance string              `json:"instance,omitempty"`
	TraceID  string              `json:"traceId,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithErrors(errs map[string][]string) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write renders a problem document carrying the active trace id. Server
// errors never expose err.Error() outside development and test environments.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	problem := ProblemDetails{
		Type:   typ,
		Title:  title,
		Status: status,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if problem.Detail == "" && err != nil {
		if env == "development" || env == "test" || status < 500 {
			problem.Detail = err.Error()
		} else {
			problem.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		if problem.Instance == "" {
			problem.Instance = r.URL.Path
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			problem.TraceID = sc.TraceID().String()
		}
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("type", typ).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(title)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}

// Classify maps a domain error to its HTTP status, problem type and title.
func Classify(err error) (int, string, string) {
	var verr catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, TypeValidation, "One or more validation errors occurred."
	case errors.Is(err, catalog.ErrDuplicate):
		return http.StatusBadRequest, TypeValidation, "Duplicate value."
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, TypeNotFound, "Not Found"
	case errors.Is(err, catalog.ErrConflict):
		return http.StatusConflict, TypeConflict, "Conflict"
	case errors.Is(err, users.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized, TypeUnauthorized, "Unauthorized"
	default:
		return http.StatusInternalServerError, TypeServerError, "Internal Server Error"
	}
}

// WriteError classifies err and writes the matching problem. Validation
// failures carry a field-keyed errors map.
func WriteError(w http.ResponseWriter, r *http.Request, err error, env string) {
	status, typ, title := Classify(err)

	var opts []Option
	var verr catalog.ValidationError
	if errors.As(err, &verr) {
		opts = append(opts, WithErrors(map[string][]string{verr.Field: {verr.Message}}))
	}
	Write(w, r, status, typ, title, err, env, opts...)
}
