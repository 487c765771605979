package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vapeshop/catalog-server/internal/api/middleware"
	"github.com/vapeshop/catalog-server/internal/api/problem"
	"github.com/vapeshop/catalog-server/internal/auth"
	"github.com/vapeshop/catalog-server/internal/domain/catalog"
	"github.com/vapeshop/catalog-server/internal/domain/users"
)

func TestUsersHandlerRegisterAndLogin(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	h := NewUsersHandler(stubUsers{
		registerFn: func(params users.RegisterParams) (*users.AuthResult, error) {
			if params.Email == "taken@example.com" {
				return nil, users.ErrEmailTaken
			}
			return &users.AuthResult{Token: "tok-" + params.FirstName, Expiration: expires}, nil
		},
		loginFn: func(params users.LoginParams) (*users.AuthResult, error) {
			if params.Password != "Secret123!" {
				return nil, users.ErrInvalidCredentials
			}
			return &users.AuthResult{Token: "tok", Expiration: expires}, nil
		},
	}, "test")

	res := httptest.NewRecorder()
	h.Register(res, newRequest(http.MethodPost, "/api/users/register",
		`{"email":"a@example.com","password":"Secret123!","firstName":"Ann","lastName":"Lee"}`))
	require.Equal(t, http.StatusOK, res.Code)
	var result users.AuthResult
	require.NoError(t, json.NewDecoder(res.Body).Decode(&result))
	require.Equal(t, "tok-Ann", result.Token)
	require.True(t, expires.Equal(result.Expiration))

	res = httptest.NewRecorder()
	h.Register(res, newRequest(http.MethodPost, "/api/users/register", `{"email":"taken@example.com","password":"x"}`))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, decodeProblem(t, res).Errors, "email")

	res = httptest.NewRecorder()
	h.Login(res, newRequest(http.MethodPost, "/api/users/login", `{"email":"a@example.com","password":"wrong"}`))
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, problem.TypeUnauthorized, decodeProblem(t, res).Type)

	res = httptest.NewRecorder()
	h.Login(res, newRequest(http.MethodPost, "/api/users/login", `{"email":"a@example.com","password":"Secret123!"}`))
	require.Equal(t, http.StatusOK, res.Code)
}

func TestUsersHandlerMe(t *testing.T) {
	h := NewUsersHandler(stubUsers{
		meFn: func(userID string) (*users.User, error) {
			return &users.User{ID: userID, Email: "a@example.com", Roles: []string{auth.RoleUser}}, nil
		},
	}, "test")

	res := httptest.NewRecorder()
	h.Me(res, newRequest(http.MethodGet, "/api/users/me", ""))
	require.Equal(t, http.StatusUnauthorized, res.Code)

	req := newRequest(http.MethodGet, "/api/users/me", "")
	claims := &auth.Claims{Email: "a@example.com"}
	claims.Subject = "01HZX3ABCDEF"
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))

	res = httptest.NewRecorder()
	h.Me(res, req)
	require.Equal(t, http.StatusOK, res.Code)
	body := res.Body.String()
	require.Contains(t, body, `"id":"01HZX3ABCDEF"`)
	require.NotContains(t, strings.ToLower(body), "password")
}

func TestUsersHandlerCreateRoleAcceptsBothShapes(t *testing.T) {
	var names []string
	h := NewUsersHandler(stubUsers{
		createRoleFn: func(name string) (*users.Role, error) {
			names = append(names, name)
			if name == "" {
				return nil, catalog.Invalid("name", "is required")
			}
			return &users.Role{ID: int64(len(names)), Name: name}, nil
		},
	}, "test")

	for _, body := range []string{`"Manager"`, `{"name":"Support"}`} {
		res := httptest.NewRecorder()
		h.CreateRole(res, newRequest(http.MethodPost, "/api/roles", body))
		require.Equal(t, http.StatusOK, res.Code, body)
	}
	require.Equal(t, []string{"Manager", "Support"}, names)

	res := httptest.NewRecorder()
	h.CreateRole(res, newRequest(http.MethodPost, "/api/roles", `42`))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, decodeProblem(t, res).Errors, "name")
}

func TestUsersHandlerRoleAssignment(t *testing.T) {
	var assigned, removed users.RoleAssignment
	h := NewUsersHandler(stubUsers{
		assignFn: func(params users.RoleAssignment) error {
			assigned = params
			if params.RoleName == "Ghost" {
				return users.ErrRoleNotFound
			}
			return nil
		},
		removeFn: func(params users.RoleAssignment) error {
			removed = params
			return users.ErrUserNotFound
		},
	}, "test")

	res := httptest.NewRecorder()
	h.AssignRole(res, newRequest(http.MethodPost, "/api/roles/assign", `{"userId":"u1","roleName":"Admin"}`))
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, users.RoleAssignment{UserID: "u1", RoleName: "Admin"}, assigned)

	res = httptest.NewRecorder()
	h.AssignRole(res, newRequest(http.MethodPost, "/api/roles/assign", `{"userId":"u1","roleName":"Ghost"}`))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, decodeProblem(t, res).Errors, "roleName")

	res = httptest.NewRecorder()
	h.RemoveRole(res, newRequest(http.MethodPost, "/api/roles/remove", `{"userId":"u9","roleName":"Admin"}`))
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, "u9", removed.UserID)
}
