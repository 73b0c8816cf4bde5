package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(repo Repository) *chi.Mux {
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	NewHandler(service).RegisterRoutes(r)
	return r
}

func authenticate(t *testing.T, router http.Handler, email, password string) (*httptest.ResponseRecorder, authResponse) {
	t.Helper()

	raw, err := json.Marshal(map[string]string{
		"email_address": email,
		"password":      password,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/basic_auth/authenticate", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp authResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestAuthenticate_Success(t *testing.T) {
	repo := newMockRepository()
	repo.addUser("user@example.com", "hunter2", "salty", domain.LogonTypeBasic, domain.AccountStatusActive)

	rec, resp := authenticate(t, newTestHandler(repo), "user@example.com", "hunter2")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, authResponse{Status: 1, Error: ""}, resp)
	assert.JSONEq(t, `{"status":1,"error":""}`, rec.Body.String())
}

func TestAuthenticate_RejectionsAreHTTPOK(t *testing.T) {
	repo := newMockRepository()
	repo.addUser("basic@example.com", "hunter2", "salty", domain.LogonTypeBasic, domain.AccountStatusActive)
	repo.addUser("mfa@example.com", "hunter2", "salty", domain.LogonTypeMultiFactor, domain.AccountStatusActive)
	repo.addUser("gone@example.com", "hunter2", "salty", domain.LogonTypeBasic, domain.AccountStatusDisabled)
	router := newTestHandler(repo)

	tests := []struct {
		name      string
		email     string
		password  string
		wantError string
	}{
		{"unknown user", "nobody@example.com", "hunter2", "Username/password don't match"},
		{"wrong password", "basic@example.com", "nope", "Username/password don't match"},
		{"wrong logon type", "mfa@example.com", "hunter2", "Incorrect logon type"},
		{"inactive account", "gone@example.com", "hunter2", "Account is not active"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := authenticate(t, router, tt.email, tt.password)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 0, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestAuthenticate_StorageFailureIs500(t *testing.T) {
	repo := newMockRepository()
	repo.queryErr = assert.AnError

	rec, resp := authenticate(t, newTestHandler(repo), "user@example.com", "hunter2")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestAuthenticate_InvalidBody(t *testing.T) {
	router := newTestHandler(newMockRepository())

	req := httptest.NewRequest(http.MethodPost, "/basic_auth/authenticate",
		bytes.NewReader([]byte(`{"email_address":"not-an-email","password":"x"}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
