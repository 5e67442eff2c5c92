package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/domain"
)

// InquiryService forwards custom project requests to the admin by mail.
// Requests are not persisted.
type InquiryService struct {
	notify dispatcher
	logger zerolog.Logger
}

// NewInquiryService creates a new InquiryService.
func NewInquiryService(notifier Notifier, logger zerolog.Logger) *InquiryService {
	logger = logger.With().Str("service", "inquiry").Logger()
	return &InquiryService{
		notify: newDispatcher(notifier, logger),
		logger: logger,
	}
}

// Submit validates a request and mails it in the background.
func (s *InquiryService) Submit(ctx context.Context, input domain.CustomProjectRequest) error {
	req := &domain.CustomProjectRequest{
		Name:            plainText(input.Name),
		Email:           strings.TrimSpace(input.Email),
		Phone:           plainText(input.Phone),
		ProjectType:     plainText(input.ProjectType),
		Budget:          plainText(input.Budget),
		Timeline:        plainText(input.Timeline),
		Description:     plainText(input.Description),
		Features:        plainText(input.Features),
		References:      plainText(input.References),
		AdditionalNotes: plainText(input.AdditionalNotes),
	}
	if err := req.Validate(); err != nil {
		return err
	}

	s.logger.Info().Str("project_type", req.ProjectType).Msg("custom project request received")

	s.notify.dispatch(ctx, "custom_project", func(ctx context.Context, n Notifier) error {
		return n.CustomProjectRequested(ctx, req)
	})
	return nil
}
