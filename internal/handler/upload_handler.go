package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/service"
)

// uploadField is the multipart form field carrying the image.
const uploadField = "file"

// multipartOverhead allows for boundaries and part headers on top of the image.
const multipartOverhead = 64 << 10

// UploadHandler accepts project images.
type UploadHandler struct {
	uploads *service.UploadService
	logger  zerolog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploads *service.UploadService, logger zerolog.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		logger:  logger.With().Str("handler", "upload").Logger(),
	}
}

// RegisterRoutes registers the upload route.
func (h *UploadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/upload", h.handleUpload)
}

// handleUpload streams the "file" part of a multipart body to the upload
// service without buffering the whole form.
func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	var part *multipart.Part
	defer func() {
		if part != nil {
			part.Close()
		}
	}()

	result, err := h.uploads.UploadFrom(r.Context(), auth.SessionFromContext(r.Context()), func() (io.Reader, error) {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxSize()+multipartOverhead)
		p, err := filePart(r)
		if err != nil {
			return nil, err
		}
		part = p
		return p, nil
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// filePart skips to the upload field of a multipart body.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.Invalid(uploadField, "expected a multipart/form-data body")
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.Invalid(uploadField, "No file uploaded")
		}
		if err != nil {
			return nil, domain.Invalid(uploadField, "malformed multipart body")
		}
		if part.FormName() == uploadField {
			return part, nil
		}
		part.Close()
	}
}
