package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/service"
)

// UserHandler serves account management for admins.
type UserHandler struct {
	accounts *service.AccountService
	logger   zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *service.AccountService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		accounts: accounts,
		logger:   logger.With().Str("handler", "user").Logger(),
	}
}

// RegisterRoutes registers account routes.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Delete("/{id}", h.handleDelete)
	})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context(), auth.SessionFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(accounts))
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req service.CreateAccountInput
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	account, err := h.accounts.Create(r.Context(), auth.SessionFromContext(r.Context()), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Delete(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
