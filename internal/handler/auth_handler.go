package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/service"
)

// AuthHandler serves login, logout and session status.
type AuthHandler struct {
	accounts *service.AccountService
	codec    *auth.SessionCodec
	logger   zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService, codec *auth.SessionCodec, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		codec:    codec,
		logger:   logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the session endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/admin", h.handleLogin)
	r.Delete("/api/admin", h.handleLogout)
	r.Get("/api/admin", h.handleStatus)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	auth.Status
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	account, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	session, err := h.codec.Issue(w, account)
	if err != nil {
		h.logger.Error().Err(err).Str("account_id", account.ID).Msg("failed to issue session")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Login failed"})
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		Status:  auth.StatusOf(session),
	})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.codec.Clear(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.StatusOf(auth.SessionFromContext(r.Context())))
}
