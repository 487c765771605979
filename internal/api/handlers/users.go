package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vapeshop/catalog-server/internal/api/middleware"
	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/users"
	"github.com/vapeshop/catalog-server/internal/metrics"
)

type UserService interface {
	Register(ctx context.Context, params users.RegisterParams) (*users.AuthResult, error)
	Login(ctx context.Context, params users.LoginParams) (*users.AuthResult, error)
	Me(ctx context.Context, userID string) (*users.User, error)
	CreateRole(ctx context.Context, name string) (*users.Role, error)
	AssignRole(ctx context.Context, params users.RoleAssignment) error
	RemoveRole(ctx context.Context, params users.RoleAssignment) error
}

type UsersHandler struct {
	Service UserService
	Env     string
}

func NewUsersHandler(service UserService, env string) *UsersHandler {
	return &UsersHandler{Service: service, Env: env}
}

func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body users.RegisterParams
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	result, err := h.Service.Register(r.Context(), body)
	metrics.RecordAuthEvent("register", err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body users.LoginParams
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	result, err := h.Service.Login(r.Context(), body)
	metrics.RecordAuthEvent("login", err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, r, auth.ErrMissingToken, h.Env)
		return
	}
	user, err := h.Service.Me(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// CreateRole accepts either {"name": "..."} or a bare JSON string.
func (h *UsersHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		var body struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			writeError(w, r, catalog.Invalid("name", "is required"), h.Env)
			return
		}
		name = body.Name
	}

	role, err := h.Service.CreateRole(r.Context(), name)
	metrics.RecordAuthEvent("role_create", err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, role)
}

func (h *UsersHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	h.roleChange(w, r, "role_assign", h.Service.AssignRole)
}

func (h *UsersHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	h.roleChange(w, r, "role_remove", h.Service.RemoveRole)
}

func (h *UsersHandler) roleChange(w http.ResponseWriter, r *http.Request, event string, op func(context.Context, users.RoleAssignment) error) {
	var body users.RoleAssignment
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	err := op(r.Context(), body)
	metrics.RecordAuthEvent(event, err)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
