package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/service"
)

// SettingHandler serves site settings.
type SettingHandler struct {
	settings *service.SettingService
	logger   zerolog.Logger
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(settings *service.SettingService, logger zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		settings: settings,
		logger:   logger.With().Str("handler", "setting").Logger(),
	}
}

// RegisterRoutes registers settings routes.
func (h *SettingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/settings", h.handleGet)
	r.Put("/api/settings", h.handleUpdate)
}

func (h *SettingHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.All(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if values == nil {
		values = map[string]string{}
	}
	writeJSON(w, http.StatusOK, values)
}

func (h *SettingHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var values map[string]string
	if err := decodeJSON(w, r, &values); err != nil {
		writeBadRequest(w, "settings must be a JSON object of string values")
		return
	}

	if err := h.settings.UpsertMany(r.Context(), session, values); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Settings updated successfully"})
}
