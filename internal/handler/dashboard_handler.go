package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/service"
)

// DashboardHandler serves the signed-in seller and admin dashboard.
type DashboardHandler struct {
	projects *service.ProjectService
	stats    *service.StatsService
	logger   zerolog.Logger
}

// DashboardConfig contains the services behind the dashboard.
type DashboardConfig struct {
	ProjectService *service.ProjectService
	StatsService   *service.StatsService
	Logger         zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(cfg DashboardConfig) *DashboardHandler {
	return &DashboardHandler{
		projects: cfg.ProjectService,
		stats:    cfg.StatsService,
		logger:   cfg.Logger.With().Str("handler", "dashboard").Logger(),
	}
}

// RegisterRoutes registers dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard/projects", h.handleProjects)
	r.Get("/api/dashboard/stats", h.handleStats)
}

// handleProjects lists every project for admins and the caller's own otherwise.
func (h *DashboardHandler) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.ListDashboard(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(projects))
}

func (h *DashboardHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
