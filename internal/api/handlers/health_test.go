package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubStore struct {
	pingErr error
	version int64
	dirty   bool
	migErr  error
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

func (s stubStore) MigrationStatus(context.Context) (int64, bool, error) {
	return s.version, s.dirty, s.migErr
}

func TestHealthChecker(t *testing.T) {
	tests := []struct {
		name       string
		store      Store
		wantStatus int
		wantHealth string
		failing    string
	}{
		{name: "healthy", store: stubStore{version: 2}, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "database down", store: stubStore{pingErr: errors.New("refused"), migErr: errors.New("refused")},
			wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy", failing: "database"},
		{name: "dirty migrations", store: stubStore{version: 2, dirty: true},
			wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy", failing: "migrations"},
		{name: "no store", store: nil, wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy", failing: "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.store, "1.2.3", "abc123")
			res := httptest.NewRecorder()
			h.Health().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantStatus, res.Code)
			var payload HealthCheck
			require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
			require.Equal(t, tt.wantHealth, payload.Status)
			require.Equal(t, "1.2.3", payload.Version)
			require.Equal(t, "abc123", payload.GitCommit)
			if tt.failing != "" {
				require.Equal(t, "fail", payload.Checks[tt.failing].Status)
			}
		})
	}
}

func TestLivenessAndReadiness(t *testing.T) {
	down := NewHealthChecker(stubStore{pingErr: errors.New("refused")}, "", "")

	res := httptest.NewRecorder()
	down.Liveness().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	down.Readiness().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, res.Code)

	up := NewHealthChecker(stubStore{version: 2}, "", "")
	res = httptest.NewRecorder()
	up.Readiness().ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"status":"ready"}`, res.Body.String())
}
