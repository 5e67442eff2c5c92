package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/domain"
	"github.com/prn-tf/projecthub/internal/repository"
)

// MessageService handles the contact form inbox.
type MessageService struct {
	messageRepo repository.MessageRepository
	guard       *auth.Guard
	notify      dispatcher
	logger      zerolog.Logger
}

// NewMessageService creates a new MessageService. notifier may be nil.
func NewMessageService(
	messageRepo repository.MessageRepository,
	guard *auth.Guard,
	notifier Notifier,
	logger zerolog.Logger,
) *MessageService {
	logger = logger.With().Str("service", "message").Logger()
	return &MessageService{
		messageRepo: messageRepo,
		guard:       guard,
		notify:      newDispatcher(notifier, logger),
		logger:      logger,
	}
}

// SubmitMessageInput is a contact form submission.
type SubmitMessageInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Submit validates and stores a visitor's message, then notifies the admin
// in the background. Nothing is stored when validation fails.
func (s *MessageService) Submit(ctx context.Context, input SubmitMessageInput) (*domain.ContactMessage, error) {
	msg := domain.NewContactMessage(
		plainText(input.Name),
		strings.TrimSpace(input.Email),
		plainText(input.Subject),
		plainText(input.Message),
	)
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		s.logger.Error().Err(err).Msg("failed to store contact message")
		return nil, internalError(err)
	}

	s.logger.Info().Str("message_id", msg.ID).Msg("contact message received")

	s.notify.dispatch(ctx, "contact", func(ctx context.Context, n Notifier) error {
		return n.ContactReceived(ctx, msg)
	})
	return msg, nil
}

// List returns every message, newest first. Admin only.
func (s *MessageService) List(ctx context.Context, session *auth.Session) ([]*domain.ContactMessage, error) {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.List(ctx, 0)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list messages")
		return nil, internalError(err)
	}
	return messages, nil
}

// MarkRead sets the read flag and returns the updated message. Admin only.
func (s *MessageService) MarkRead(ctx context.Context, session *auth.Session, id string, isRead bool) (*domain.ContactMessage, error) {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return nil, err
	}

	if err := s.messageRepo.SetRead(ctx, id, isRead); err != nil {
		return nil, s.storeErr(err, id, "failed to update message")
	}

	msg, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err, id, "failed to reload message")
	}
	return msg, nil
}

// Delete removes a message. Admin only.
func (s *MessageService) Delete(ctx context.Context, session *auth.Session, id string) error {
	if err := s.guard.Check(session, auth.RequireAdmin()); err != nil {
		return err
	}
	if err := s.messageRepo.Delete(ctx, id); err != nil {
		return s.storeErr(err, id, "failed to delete message")
	}
	s.logger.Info().Str("message_id", id).Msg("message deleted")
	return nil
}

func (s *MessageService) storeErr(err error, id, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	s.logger.Error().Err(err).Str("message_id", id).Msg(msg)
	return internalError(err)
}
