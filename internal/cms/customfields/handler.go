package customfields

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mharte/caseflow/internal/domain"
	"github.com/mharte/caseflow/internal/pkg/ctxlog"
	"github.com/mharte/caseflow/internal/pkg/httputil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Handler handles HTTP requests for the custom fields module.
type Handler struct {
	service   *Service
	validator *validator.Validate
	titler    cases.Caser
}

// NewHandler creates a new custom fields handler.
func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(),
		titler:    cases.Title(language.English),
	}
}

// RegisterAdminRoutes registers the custom field administration routes.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/testcase_custom_fields", func(r chi.Router) {
		r.Get("/", h.GetAllCustomFields)
		r.Post("/", h.AddCustomField)
		r.Patch("/{field_id}/move/{direction}", h.MoveCustomField)
	})
}

// RegisterProjectRoutes registers the per-project custom field reads.
func (h *Handler) RegisterProjectRoutes(r chi.Router) {
	r.Get("/projects/{project_id}/testcase_custom_fields", h.GetProjectCustomFields)
}

// AddCustomFieldRequest represents the request body for adding a custom
// field.
type AddCustomFieldRequest struct {
	FieldName            string   `json:"field_name" validate:"required,min=1,max=255"`
	Description          string   `json:"description"`
	SystemName           string   `json:"system_name" validate:"required,min=1,max=255"`
	FieldType            string   `json:"field_type" validate:"required,oneof=Checkbox Date Dropdown Integer String Text Url User"`
	Enabled              bool     `json:"enabled"`
	IsRequired           bool     `json:"is_required"`
	DefaultValue         string   `json:"default_value"`
	AppliesToAllProjects bool     `json:"applies_to_all_projects"`
	Projects             []string `json:"projects"`
}

// AddCustomField handles POST /testcase_custom_fields.
func (h *Handler) AddCustomField(w http.ResponseWriter, r *http.Request) {
	var req AddCustomFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	// Duplicate entries in the projects list are rejected before any
	// database call.
	if hasDuplicates(req.Projects) {
		httputil.StatusError(w, http.StatusBadRequest, "Duplicate projects")
		return
	}

	_, err := h.service.AddField(r.Context(), AddFieldInput{
		FieldName:            req.FieldName,
		Description:          req.Description,
		SystemName:           req.SystemName,
		FieldType:            domain.FieldType(req.FieldType),
		Enabled:              req.Enabled,
		IsRequired:           req.IsRequired,
		DefaultValue:         req.DefaultValue,
		AppliesToAllProjects: req.AppliesToAllProjects,
		Projects:             req.Projects,
	})
	if err != nil {
		h.handleAddError(w, r, err)
		return
	}

	httputil.StatusOK(w)
}

func (h *Handler) handleAddError(w http.ResponseWriter, r *http.Request, err error) {
	var projectErr *ProjectInvalidError

	switch {
	case errors.Is(err, ErrDuplicateFieldName):
		// Duplicates are negative outcomes, not errors: HTTP 200.
		httputil.StatusError(w, http.StatusOK, "Duplicate field_name")
	case errors.Is(err, ErrDuplicateSystemName):
		httputil.StatusError(w, http.StatusOK, "Duplicate system_name")
	case errors.Is(err, ErrUnknownFieldType):
		httputil.StatusError(w, http.StatusBadRequest, "Unknown field_type")
	case errors.As(err, &projectErr):
		httputil.StatusError(w, http.StatusBadRequest, projectErr.Error())
	default:
		ctxlog.FromContext(r.Context()).Error("add custom field failed", "error", err)
		httputil.InternalError(w)
	}
}

// MoveCustomField handles PATCH /testcase_custom_fields/{field_id}/move/{direction}.
//
// A rejected move (unknown id, out-of-range target, gap) is reported with
// a success HTTP code and a zero status: "nothing to do" is distinguishable
// from "broken".
func (h *Handler) MoveCustomField(w http.ResponseWriter, r *http.Request) {
	fieldID, err := strconv.ParseInt(chi.URLParam(r, "field_id"), 10, 64)
	if err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "Invalid field id")
		return
	}

	direction := MoveDirection(chi.URLParam(r, "direction"))
	if !direction.IsValid() {
		httputil.StatusError(w, http.StatusBadRequest, "Invalid direction. Must be 'up' or 'down'.")
		return
	}

	if err := h.service.MoveField(r.Context(), fieldID, direction); err != nil {
		if errors.Is(err, ErrFieldNotFound) || errors.Is(err, ErrInvalidMove) {
			httputil.StatusError(w, http.StatusOK, "Invalid field or move operation")
			return
		}
		ctxlog.FromContext(r.Context()).Error("move custom field failed",
			"field_id", fieldID,
			"direction", direction,
			"error", err,
		)
		httputil.InternalError(w)
		return
	}

	httputil.StatusOK(w)
}

// customFieldEntry is the wire representation of one custom field.
type customFieldEntry struct {
	domain.CustomField
	DisplayName string `json:"display_name"`
}

// GetAllCustomFields handles GET /testcase_custom_fields.
func (h *Handler) GetAllCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.service.ListAllFields(r.Context())
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("list custom fields failed", "error", err)
		httputil.InternalError(w)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"custom_fields": h.toEntries(fields),
	})
}

// GetProjectCustomFields handles GET /projects/{project_id}/testcase_custom_fields.
func (h *Handler) GetProjectCustomFields(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "project_id"), 10, 64)
	if err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	fields, err := h.service.ListFieldsForProject(r.Context(), projectID)
	if err != nil {
		ctxlog.FromContext(r.Context()).Error("list project custom fields failed",
			"project_id", projectID,
			"error", err,
		)
		httputil.InternalError(w)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"custom_fields": h.toEntries(fields),
	})
}

func (h *Handler) toEntries(fields []domain.CustomField) []customFieldEntry {
	entries := make([]customFieldEntry, 0, len(fields))
	for _, field := range fields {
		entries = append(entries, customFieldEntry{
			CustomField: field,
			DisplayName: h.titler.String(strings.ReplaceAll(field.SystemName, "_", " ")),
		})
	}
	return entries
}

func hasDuplicates(names []string) bool {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return true
		}
		seen[name] = struct{}{}
	}
	return false
}
