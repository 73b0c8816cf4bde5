package health

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mharte/caseflow/internal/pkg/ctxlog"
	"github.com/mharte/caseflow/internal/pkg/httputil"
)

// Overall statuses reported by the health endpoint.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
)

// Issue describes one degraded component in a health report.
type Issue struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Details   string `json:"details"`
}

// Response is the health endpoint wire format.
// Issues is null when the service is healthy and non-empty otherwise.
type Response struct {
	Status        string            `json:"status"`
	Dependencies  map[string]string `json:"dependencies"`
	Issues        []Issue           `json:"issues"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Version       string            `json:"version"`
}

// Handler serves health reports and maintenance-mode administration.
type Handler struct {
	state *State
}

// NewHandler creates a health handler over the given state.
func NewHandler(state *State) *Handler {
	return &Handler{state: state}
}

// RegisterRoutes registers the public health route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
}

// RegisterAdminRoutes registers operator maintenance controls.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/maintenance/enter", h.EnterMaintenance)
	r.Post("/maintenance/exit", h.ExitMaintenance)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	snap := h.state.Snapshot()
	httputil.JSON(w, http.StatusOK, BuildResponse(snap, time.Now()))
}

// BuildResponse projects a state snapshot into the health wire format.
//
// status is healthy exactly when there are no issues; critical when any
// issue is fully degraded; degraded otherwise.
func BuildResponse(snap Snapshot, now time.Time) Response {
	var issues []Issue

	if snap.DatabaseEnabled && snap.DatabaseHealth != DegradationNone {
		issues = append(issues, Issue{
			Component: "database",
			Status:    string(snap.DatabaseHealth),
			Details:   snap.DatabaseDetail,
		})
	}
	if snap.ServiceHealth != DegradationNone {
		issues = append(issues, Issue{
			Component: "service",
			Status:    string(snap.ServiceHealth),
			Details:   snap.ServiceDetail,
		})
	}

	status := StatusHealthy
	if len(issues) > 0 {
		status = StatusDegraded
		for _, issue := range issues {
			if issue.Status == string(DegradationFull) {
				status = StatusCritical
				break
			}
		}
	}

	dependencies := map[string]string{
		"service": string(snap.ServiceHealth),
	}
	if snap.DatabaseEnabled {
		dependencies["database"] = string(snap.DatabaseHealth)
	}

	uptime := int64(now.Sub(snap.StartupTime).Seconds())
	if uptime < 0 {
		uptime = 0
	}

	return Response{
		Status:        status,
		Dependencies:  dependencies,
		Issues:        issues,
		UptimeSeconds: uptime,
		Version:       snap.Version,
	}
}

// EnterMaintenance handles POST /maintenance/enter. The flag is sticky:
// gated writes are refused until an operator exits maintenance.
func (h *Handler) EnterMaintenance(w http.ResponseWriter, r *http.Request) {
	h.state.EnterMaintenance("Maintenance mode requested by operator")
	ctxlog.FromContext(r.Context()).Warn("maintenance mode entered")
	httputil.StatusOK(w)
}

// ExitMaintenance handles POST /maintenance/exit.
func (h *Handler) ExitMaintenance(w http.ResponseWriter, r *http.Request) {
	h.state.ExitMaintenance()
	ctxlog.FromContext(r.Context()).Info("maintenance mode exited")
	httputil.StatusOK(w)
}
