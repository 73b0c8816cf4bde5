package projects

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mharte/caseflow/internal/pkg/httputil"
)

// Handler handles HTTP requests for the project catalog.
type Handler struct {
	repo Repository
}

// NewHandler creates a new projects handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes registers project catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/projects", h.ListProjects)
	r.Get("/projects/{project_id}", h.GetProject)
}

// ListProjects handles GET /projects.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListProjects(r.Context())
	if err != nil {
		httputil.InternalError(w)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"projects": list})
}

// GetProject handles GET /projects/{project_id}.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "project_id"), 10, 64)
	if err != nil {
		httputil.StatusError(w, http.StatusBadRequest, "Invalid project id")
		return
	}

	project, err := h.repo.GetProjectByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			httputil.StatusError(w, http.StatusNotFound, "Project not found")
			return
		}
		httputil.InternalError(w)
		return
	}
	httputil.JSON(w, http.StatusOK, project)
}
