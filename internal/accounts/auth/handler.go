package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mharte/caseflow/internal/pkg/ctxlog"
	"github.com/mharte/caseflow/internal/pkg/httputil"
)

// Handler handles HTTP requests for basic authentication.
type Handler struct {
	service   *Service
	validator *validator.Validate
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterRoutes registers the authentication routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/basic_auth/authenticate", h.Authenticate)
}

// AuthenticateRequest represents the body of an authentication request.
type AuthenticateRequest struct {
	EmailAddress string `json:"email_address" validate:"required,email"`
	Password     string `json:"password" validate:"required"`
}

// authResponse is the authentication wire envelope. The error key is
// always present, empty on success.
type authResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Authenticate handles POST /basic_auth/authenticate.
//
// A rejected credential pair is a success HTTP code with a zero status;
// only storage failures surface as HTTP 500.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.JSON(w, http.StatusBadRequest, authResponse{Status: 0, Error: "invalid json"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.JSON(w, http.StatusBadRequest, authResponse{Status: 0, Error: "invalid request body"})
		return
	}

	err := h.service.AuthenticateBasic(r.Context(), req.EmailAddress, req.Password)
	if err == nil {
		httputil.JSON(w, http.StatusOK, authResponse{Status: 1, Error: ""})
		return
	}

	if isAuthOutcome(err) {
		httputil.JSON(w, http.StatusOK, authResponse{Status: 0, Error: err.Error()})
		return
	}

	ctxlog.FromContext(r.Context()).Error("authentication failed", "error", err)
	httputil.JSON(w, http.StatusInternalServerError, authResponse{Status: 0, Error: "Internal server error"})
}

func isAuthOutcome(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrIncorrectLogonType) ||
		errors.Is(err, ErrAccountNotActive) ||
		errors.Is(err, ErrMissingAuthDetails)
}
