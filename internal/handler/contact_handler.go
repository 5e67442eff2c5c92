package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/service"
)

// ContactHandler serves the contact inbox and custom project requests.
type ContactHandler struct {
	messages  *service.MessageService
	inquiries *service.InquiryService
	logger    zerolog.Logger
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(messages *service.MessageService, inquiries *service.InquiryService, logger zerolog.Logger) *ContactHandler {
	return &ContactHandler{
		messages:  messages,
		inquiries: inquiries,
		logger:    logger.With().Str("handler", "contact").Logger(),
	}
}

// RegisterRoutes registers contact and custom project routes.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/contact", func(r chi.Router) {
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Put("/{id}", h.handleMarkRead)
		r.Delete("/{id}", h.handleDelete)
	})
	r.Post("/api/custom-project", h.handleCustomProject)
}

type submitResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type markReadRequest struct {
	IsRead *bool `json:"isRead"`
}

func (h *ContactHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req service.SubmitMessageInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	msg, err := h.messages.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Message: "Message sent successfully", ID: msg.ID})
}

func (h *ContactHandler) handleList(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(msgs))
}

func (h *ContactHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		writeError(w, r, h.logger, domain.ErrUnauthorized)
		return
	}

	var req markReadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.IsRead == nil {
		writeError(w, r, h.logger, domain.Invalid("isRead", "isRead is required"))
		return
	}

	msg, err := h.messages.MarkRead(r.Context(), session, chi.URLParam(r, "id"), *req.IsRead)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *ContactHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Delete(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Message deleted successfully"})
}

func (h *ContactHandler) handleCustomProject(w http.ResponseWriter, r *http.Request) {
	var req domain.CustomProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	if err := h.inquiries.Submit(r.Context(), req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Custom project request received successfully"})
}
