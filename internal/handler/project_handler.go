package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/service"
)

// ProjectHandler serves the public catalog, search and project writes.
type ProjectHandler struct {
	projects *service.ProjectService
	logger   zerolog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		logger:   logger.With().Str("handler", "project").Logger(),
	}
}

// RegisterRoutes registers project and search routes.
func (h *ProjectHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/categories", h.handleCategories)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Delete("/{id}", h.handleDelete)
		r.Get("/{id}/related", h.handleRelated)
		r.Post("/{id}/checkout", h.handleCheckout)
	})
	r.Get("/api/search", h.handleSearch)
}

// projectRequest is the JSON body for create and update. Price is accepted
// as either a number or a numeric string.
type projectRequest struct {
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	LongDescription string               `json:"longDescription"`
	ImageURL        string               `json:"imageUrl"`
	Price           json.RawMessage      `json:"price"`
	Category        string               `json:"category"`
	Technologies    string               `json:"technologies"`
	DemoURL         string               `json:"demoUrl"`
	SourceURL       string               `json:"sourceUrl"`
	Status          domain.ProjectStatus `json:"status"`
	Featured        *bool                `json:"featured"`
}

func (req projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Title:           req.Title,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		ImageURL:        req.ImageURL,
		Price:           rawPrice(req.Price),
		Category:        req.Category,
		Technologies:    req.Technologies,
		DemoURL:         req.DemoURL,
		SourceURL:       req.SourceURL,
		Status:          req.Status,
		Featured:        req.Featured,
	}
}

// rawPrice returns the textual form of a JSON number or string.
func rawPrice(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return text
		}
		return s
	}
	return text
}

type checkoutResponse struct {
	Message   string `json:"message"`
	ProjectID string `json:"projectId"`
}

func (h *ProjectHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	projects, err := h.projects.ListPublic(r.Context(), query.Get("category"), query.Get("featured") == "true")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(projects))
}

func (h *ProjectHandler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.projects.Categories(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(categories))
}

func (h *ProjectHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	project, err := h.projects.Get(r.Context(), session, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) handleRelated(w http.ResponseWriter, r *http.Request) {
	related, err := h.projects.Related(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(related))
}

func (h *ProjectHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.Checkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, checkoutResponse{
		Message:   "Checkout is not available yet; we will contact you to complete the purchase",
		ProjectID: project.ID,
	})
}

func (h *ProjectHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	project, err := h.projects.Create(r.Context(), session, req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req projectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	project, err := h.projects.Update(r.Context(), session, chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if err := h.projects.Delete(r.Context(), session, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Project deleted successfully"})
}

func (h *ProjectHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	results, err := h.projects.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(results))
}
