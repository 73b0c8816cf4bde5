// Package handshake implements the gateway's session handshake endpoints:
// logon against the accounts service, logout and token validation.
package handshake

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/mharte/caseflow/internal/gateway/session"
	"github.com/mharte/caseflow/internal/pkg/ctxlog"
	"github.com/mharte/caseflow/internal/pkg/httputil"
)

// Token validity verdicts.
const (
	TokenValid   = "VALID"
	TokenInvalid = "INVALID"
)

// Authenticator gives a verdict on a credential pair.
type Authenticator interface {
	AuthenticateBasic(ctx context.Context, emailAddress, password string) (AuthResult, error)
}

// Handler handles HTTP requests for the handshake endpoints.
type Handler struct {
	accounts  Authenticator
	sessions  *session.Store
	validator *validator.Validate
}

// NewHandler creates a new handshake handler.
func NewHandler(accounts Authenticator, sessions *session.Store) *Handler {
	return &Handler{
		accounts:  accounts,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the handshake routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/handshake", func(r chi.Router) {
		r.Post("/basic_authenticate", h.BasicAuthenticate)
		r.Post("/logout", h.Logout)
		r.Post("/is_token_valid", h.IsTokenValid)
	})
}

// BasicAuthenticateRequest represents a logon request body.
type BasicAuthenticateRequest struct {
	EmailAddress string `json:"email_address" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
}

// BasicAuthenticate handles POST /handshake/basic_authenticate.
//
// On success the response carries an opaque 32-character hex session
// token. Logging on again replaces any previous session for the address.
func (h *Handler) BasicAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req BasicAuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	logger := ctxlog.FromContext(r.Context())

	verdict, err := h.accounts.AuthenticateBasic(r.Context(), req.EmailAddress, req.Password)
	if err != nil {
		logger.Error("accounts service unreachable", "error", err)
		httputil.InternalError(w)
		return
	}

	if !verdict.OK {
		httputil.StatusError(w, http.StatusOK, verdict.Reason)
		return
	}

	token := newSessionToken()
	h.sessions.Add(req.EmailAddress, token, domain.LogonTypeBasic)

	logger.Info("user logged in", "email_address", req.EmailAddress)
	httputil.JSON(w, http.StatusOK, httputil.StatusResponse{Status: 1, Token: token})
}

// SessionRequest identifies a session by address and token.
type SessionRequest struct {
	EmailAddress string `json:"email_address" validate:"required,email"`
	Token        string `json:"token" validate:"required,len=32,hexadecimal"`
}

// Logout handles POST /handshake/logout.
//
// Logout is idempotent: an unknown or stale session is not an error, the
// response is OK either way.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	if h.sessions.IsValid(req.EmailAddress, req.Token) {
		h.sessions.Delete(req.EmailAddress)
		ctxlog.FromContext(r.Context()).Info("user logged out", "email_address", req.EmailAddress)
	}

	httputil.Text(w, http.StatusOK, "OK")
}

// IsTokenValid handles POST /handshake/is_token_valid.
func (h *Handler) IsTokenValid(w http.ResponseWriter, r *http.Request) {
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	verdict := TokenInvalid
	if h.sessions.IsValid(req.EmailAddress, req.Token) {
		verdict = TokenValid
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"status": verdict})
}

// newSessionToken mints an opaque session token: a v4 uuid as 32 hex
// characters.
func newSessionToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
