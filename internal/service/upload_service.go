package service

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/metrics"
	"github.com/prn-tf/projecthub/internal/pkg/crypto"
	"github.com/prn-tf/projecthub/internal/storage"
)

// DefaultMaxUploadSize is the image size limit when none is configured.
const DefaultMaxUploadSize = 5 << 20

// imageTypes maps accepted content types to file extensions.
var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// UploadService stores project images and returns their public URL.
type UploadService struct {
	backend storage.Backend
	maxSize int64
	guard   *auth.Guard
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewUploadService creates a new UploadService.
func NewUploadService(
	backend storage.Backend,
	maxSize int64,
	guard *auth.Guard,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *UploadService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &UploadService{
		backend: backend,
		maxSize: maxSize,
		guard:   guard,
		metrics: m,
		logger:  logger.With().Str("service", "upload").Logger(),
	}
}

// MaxSize returns the upload size limit in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// UploadResult describes a stored image.
type UploadResult struct {
	ImageURL    string `json:"imageUrl"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Upload stores an image read from r for a signed-in caller.
func (s *UploadService) Upload(ctx context.Context, session *auth.Session, r io.Reader) (*UploadResult, error) {
	return s.UploadFrom(ctx, session, func() (io.Reader, error) { return r, nil })
}

// UploadFrom stores an image for a signed-in caller. open is called only
// once the caller is authorized, so an anonymous request body is never read.
// The content type is sniffed from the bytes rather than trusted from the
// client. Identical images share one object.
func (s *UploadService) UploadFrom(ctx context.Context, session *auth.Session, open func() (io.Reader, error)) (*UploadResult, error) {
	if err := s.guard.Check(session, auth.RequireSession()); err != nil {
		return nil, err
	}

	r, err := open()
	if err != nil {
		return nil, err
	}

	hr := crypto.NewHashReader(io.LimitReader(r, s.maxSize+1))
	data, err := io.ReadAll(hr)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read upload")
		return nil, domain.Invalid("file", "Failed to read uploaded file")
	}
	if hr.Size() > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, domain.Invalid("file", "No file uploaded")
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedFileType
	}

	key := storage.ComputeDefaultKey(hr.SHA256(), ext)

	exists, err := s.backend.Exists(ctx, key)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to check upload existence")
		return nil, internalError(err)
	}
	if !exists {
		if err := s.backend.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to store upload")
			return nil, internalError(err)
		}
	}

	s.metrics.RecordUpload(int64(len(data)))
	s.logger.Info().
		Str("key", key).
		Int64("size", int64(len(data))).
		Str("content_type", contentType).
		Bool("deduplicated", exists).
		Str("account_id", session.AccountID).
		Msg("image uploaded")

	return &UploadResult{
		ImageURL:    s.backend.URL(key),
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
	}, nil
}
