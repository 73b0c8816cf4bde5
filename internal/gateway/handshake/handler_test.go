package handshake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/mharte/caseflow/internal/gateway/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAuthenticator implements Authenticator for testing.
type mockAuthenticator struct {
	result AuthResult
	err    error
}

func (m *mockAuthenticator) AuthenticateBasic(_ context.Context, _, _ string) (AuthResult, error) {
	return m.result, m.err
}

func newTestRouter(auth Authenticator, sessions *session.Store) *chi.Mux {
	r := chi.NewRouter()
	NewHandler(auth, sessions).RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var tokenPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

func TestBasicAuthenticate_Success(t *testing.T) {
	sessions := session.NewStore()
	router := newTestRouter(&mockAuthenticator{result: AuthResult{OK: true}}, sessions)

	rec := postJSON(t, router, "/handshake/basic_authenticate", map[string]string{
		"email_address": "user@example.com",
		"password":      "hunter2",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int    `json:"status"`
		Token  string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Status)
	assert.Regexp(t, tokenPattern, resp.Token)

	assert.True(t, sessions.IsValid("user@example.com", resp.Token))
}

func TestBasicAuthenticate_RejectedCredentials(t *testing.T) {
	sessions := session.NewStore()
	router := newTestRouter(&mockAuthenticator{
		result: AuthResult{OK: false, Reason: "Username/password don't match"},
	}, sessions)

	rec := postJSON(t, router, "/handshake/basic_authenticate", map[string]string{
		"email_address": "user@example.com",
		"password":      "wrong",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status int    `json:"status"`
		Error  string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "Username/password don't match", resp.Error)
	assert.False(t, sessions.Has("user@example.com"))
}

func TestBasicAuthenticate_AccountsUnreachable(t *testing.T) {
	router := newTestRouter(&mockAuthenticator{err: errors.New("connection refused")}, session.NewStore())

	rec := postJSON(t, router, "/handshake/basic_authenticate", map[string]string{
		"email_address": "user@example.com",
		"password":      "hunter2",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestBasicAuthenticate_SecondLogonReplacesSession(t *testing.T) {
	sessions := session.NewStore()
	router := newTestRouter(&mockAuthenticator{result: AuthResult{OK: true}}, sessions)

	first := postJSON(t, router, "/handshake/basic_authenticate", map[string]string{
		"email_address": "user@example.com",
		"password":      "hunter2",
	})
	second := postJSON(t, router, "/handshake/basic_authenticate", map[string]string{
		"email_address": "user@example.com",
		"password":      "hunter2",
	})

	var firstResp, secondResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstResp))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondResp))

	assert.False(t, sessions.IsValid("user@example.com", firstResp.Token))
	assert.True(t, sessions.IsValid("user@example.com", secondResp.Token))
}

func TestIsTokenValid(t *testing.T) {
	sessions := session.NewStore()
	sessions.Add("user@example.com", "0123456789abcdef0123456789abcdef", 0)
	router := newTestRouter(&mockAuthenticator{}, sessions)

	rec := postJSON(t, router, "/handshake/is_token_valid", map[string]string{
		"email_address": "user@example.com",
		"token":         "0123456789abcdef0123456789abcdef",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TokenValid, resp.Status)

	rec = postJSON(t, router, "/handshake/is_token_valid", map[string]string{
		"email_address": "user@example.com",
		"token":         "ffffffffffffffffffffffffffffffff",
	})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, TokenInvalid, resp.Status)
}

func TestLogout(t *testing.T) {
	sessions := session.NewStore()
	sessions.Add("user@example.com", "0123456789abcdef0123456789abcdef", 0)
	router := newTestRouter(&mockAuthenticator{}, sessions)

	rec := postJSON(t, router, "/handshake/logout", map[string]string{
		"email_address": "user@example.com",
		"token":         "0123456789abcdef0123456789abcdef",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.False(t, sessions.Has("user@example.com"))

	// Logging out again with the stale token is still OK.
	rec = postJSON(t, router, "/handshake/logout", map[string]string{
		"email_address": "user@example.com",
		"token":         "0123456789abcdef0123456789abcdef",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout_WrongTokenKeepsSession(t *testing.T) {
	sessions := session.NewStore()
	sessions.Add("user@example.com", "0123456789abcdef0123456789abcdef", 0)
	router := newTestRouter(&mockAuthenticator{}, sessions)

	rec := postJSON(t, router, "/handshake/logout", map[string]string{
		"email_address": "user@example.com",
		"token":         "ffffffffffffffffffffffffffffffff",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, sessions.Has("user@example.com"), "a wrong token must not end the session")
}
